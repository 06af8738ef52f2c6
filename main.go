package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/catmaikl/cosatkaclickmserv-sub000/game"
	"github.com/catmaikl/cosatkaclickmserv-sub000/logging"
	"github.com/catmaikl/cosatkaclickmserv-sub000/nats"
	"github.com/catmaikl/cosatkaclickmserv-sub000/rest"
	"github.com/catmaikl/cosatkaclickmserv-sub000/util"
	"github.com/catmaikl/cosatkaclickmserv-sub000/ws"
)

var mainLogger = log.With().Str("logger_name", "main::main").Logger()

func main() {
	var configFile = flag.String("config", "", "server config YAML file")
	flag.Parse()

	logLevel, err := zerolog.ParseLevel(util.Environment.GetLogLevel())
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = *logging.GetZeroLogger("cardroom", os.Stdout)

	config := util.DefaultServerConfig()
	if *configFile != "" {
		config, err = util.ReadServerConfig(*configFile)
		if err != nil {
			mainLogger.Fatal().Msgf("Unable to read config file: %v", err)
		}
	}

	var store game.BalanceStore
	persistMethod := util.Environment.GetPersistMethod()
	switch persistMethod {
	case "memory":
		store = game.NewMemoryBalanceTracker()
	case "redis":
		redisAddr := fmt.Sprintf("%s:%d", util.Environment.GetRedisHost(), util.Environment.GetRedisPort())
		store = game.NewRedisBalanceTracker(redisAddr, util.Environment.GetRedisPW(), util.Environment.GetRedisDB())
	default:
		mainLogger.Fatal().Msgf("Invalid persist method [%s]", persistMethod)
	}

	var publisher game.ResultPublisher
	if natsURL := util.Environment.GetNatsURL(); natsURL != "" {
		p, err := nats.NewResultPublisher(natsURL)
		if err != nil {
			mainLogger.Fatal().Msgf("Unable to connect to NATS: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	manager := game.NewManager(config, store, publisher)

	go func() {
		if err := rest.RunRestServer(util.Environment.GetRestListenAddr(), manager); err != nil {
			mainLogger.Fatal().Msgf("REST server failed: %v", err)
		}
	}()

	wsServer := ws.NewServer(manager)
	http.HandleFunc("/ws", wsServer.ServeWS)

	wsAddr := util.Environment.GetWsListenAddr()
	mainLogger.Info().Msgf("Game server listening on %s", wsAddr)
	if err := http.ListenAndServe(wsAddr, nil); err != nil {
		mainLogger.Fatal().Msgf("Server failed: %v", err)
	}
}
