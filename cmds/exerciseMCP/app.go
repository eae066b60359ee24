package main

import (
	"flag"

	"starklings/config"
	"starklings/exercise"
	mcpserver "starklings/mcp-server"
	"starklings/scarb"
	"starklings/service"
	"starklings/shared"

	"github.com/rs/zerolog/log"
)

func main() {
	configFile := flag.String("config", "", "configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error().Err(err).Msg("Load config failed")
		return
	}
	err = shared.SetLogLevel(cfg.LogLevel)
	if err != nil {
		log.Error().Err(err).Msg("Set log level failed")
		return
	}
	list, err := exercise.LoadList(cfg.InfoFile)
	if err != nil {
		log.Error().Err(err).Str("info", cfg.InfoFile).Msg("Load exercise list failed")
		return
	}
	svc := service.NewExerciseService(list, scarb.NewBackend(cfg.Backend.Commands, cfg.Backend.Dir))
	s, err := mcpserver.NewServer(svc)
	if err != nil {
		log.Error().Err(err).Msg("Create server failed")
		return
	}
	err = s.Run()
	if err != nil {
		log.Error().Err(err).Msg("Run server failed")
		return
	}
	log.Info().Msg("Run server success")
}
