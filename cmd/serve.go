package cmd

import (
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Moe-Sakura/anime-search-api/bangumi"
	"github.com/Moe-Sakura/anime-search-api/engine"
	"github.com/Moe-Sakura/anime-search-api/key"
	"github.com/Moe-Sakura/anime-search-api/log"
	"github.com/Moe-Sakura/anime-search-api/network"
	"github.com/Moe-Sakura/anime-search-api/rules"
	"github.com/Moe-Sakura/anime-search-api/search"
	"github.com/Moe-Sakura/anime-search-api/server"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on")
	lo.Must0(viper.BindPFlag(key.ServerPort, serveCmd.Flags().Lookup("port")))
}

// serveCmd assembles the search stack and serves it over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search API server",
	Run: func(cmd *cobra.Command, args []string) {
		store := lo.Must(rules.Load())
		updater := rules.NewUpdater(store)

		if viper.GetBool(key.RulesAutoUpdate) {
			if _, err := updater.Update(false); err != nil {
				log.Warnf("initial rule sync failed: %s", err)
			}
		}

		if schedule := viper.GetString(key.RulesUpdateSchedule); schedule != "" {
			scheduler := cron.New()
			_, err := scheduler.AddFunc(schedule, func() {
				if _, err := updater.Update(false); err != nil {
					log.Warnf("scheduled rule sync failed: %s", err)
				}
			})
			handleErr(err)
			scheduler.Start()
			log.Infof("rule sync scheduled: %s", schedule)
		}

		orchestrator := search.New(engine.New(network.New(network.ConfigFromViper())))
		srv := server.New(store, updater, orchestrator, bangumi.New())

		handleErr(srv.Listen(viper.GetInt(key.ServerPort)))
	},
}
