package cmd

import (
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Moe-Sakura/anime-search-api/color"
	"github.com/Moe-Sakura/anime-search-api/rules"
	"github.com/Moe-Sakura/anime-search-api/style"
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.SetOut(os.Stdout)

	rulesCmd.Flags().BoolP("names", "n", false, "Print only rule names, one per line")
}

// rulesCmd lists the locally loaded rules, optionally filtered by a fuzzy query.
var rulesCmd = &cobra.Command{
	Use:   "rules [query]",
	Short: "List the loaded rule definitions",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := lo.Must(rules.Load())

		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		matched := store.Find(query)
		if len(matched) == 0 {
			cmd.Println(style.Faint("no rules matched"))
			return
		}

		namesOnly := lo.Must(cmd.Flags().GetBool("names"))
		for _, rule := range matched {
			if namesOnly {
				cmd.Println(rule.Name)
				continue
			}

			cmd.Printf("%s %s", style.Bold(rule.Name), style.Faint("v"+rule.Version))
			if len(rule.Tags) > 0 {
				cmd.Printf(" %s", style.Fg(color.Blue)(strings.Join(rule.Tags, ",")))
			}
			cmd.Println()
		}
	},
}
