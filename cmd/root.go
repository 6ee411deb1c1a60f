// Package cmd implements the command-line interface for the search server.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/cobra"

	"github.com/Moe-Sakura/anime-search-api/constant"
	"github.com/Moe-Sakura/anime-search-api/log"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")
}

// rootCmd defines the entry point. Running without a subcommand starts the server.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "A concurrent rule-driven anime search API server",
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		serveCmd.Run(serveCmd, args)
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	cc.Init(&cc.Config{
		RootCmd:       rootCmd,
		Headings:      cc.HiCyan + cc.Bold + cc.Underline,
		Commands:      cc.HiYellow + cc.Bold,
		Example:       cc.Italic,
		ExecName:      cc.Bold,
		Flags:         cc.Bold,
		FlagsDataType: cc.Italic + cc.HiBlue,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintln(os.Stderr, strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
