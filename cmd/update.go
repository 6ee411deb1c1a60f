package cmd

import (
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Moe-Sakura/anime-search-api/color"
	"github.com/Moe-Sakura/anime-search-api/rules"
	"github.com/Moe-Sakura/anime-search-api/style"
)

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.SetOut(os.Stdout)

	updateCmd.Flags().BoolP("force", "f", false, "Resynchronize even when the upstream commit is unchanged")
}

// updateCmd synchronizes the local rule directory with the upstream repository.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Synchronize rule definitions from the upstream repository",
	Run: func(cmd *cobra.Command, args []string) {
		store := lo.Must(rules.Load())
		result, err := rules.NewUpdater(store).Update(lo.Must(cmd.Flags().GetBool("force")))
		handleErr(err)

		if result.UpToDate {
			cmd.Printf("%s %s\n", style.Fg(color.Green)("up to date at"), style.Bold(result.Commit))
			return
		}

		cmd.Printf("%s %s\n", style.Faint("commit"), style.Bold(result.Commit))
		cmd.Printf("%s %d  %s %d  %s %d\n",
			style.Fg(color.Green)("added"), result.Added,
			style.Fg(color.Yellow)("updated"), result.Updated,
			style.Fg(color.Red)("failed"), result.Failed,
		)
		for _, detail := range result.Details {
			cmd.Println(style.Fg(color.Red)(detail))
		}
	},
}
