// Package main is the entry point for the anime search API server.
package main

import (
	"github.com/samber/lo"

	"github.com/Moe-Sakura/anime-search-api/cmd"
	"github.com/Moe-Sakura/anime-search-api/config"
	"github.com/Moe-Sakura/anime-search-api/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
