package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type cardRoomEnvironment struct {
	PersistMethod  string
	RedisHost      string
	RedisPort      string
	RedisPW        string
	RedisDB        string
	NatsURL        string
	TurnTimeout    string
	WsListenAddr   string
	RestListenAddr string
	LogLevel       string
}

// Environment is a helper object for accessing environment variables.
var Environment = &cardRoomEnvironment{
	PersistMethod:  "PERSIST_METHOD",
	RedisHost:      "REDIS_HOST",
	RedisPort:      "REDIS_PORT",
	RedisPW:        "REDIS_PW",
	RedisDB:        "REDIS_DB",
	NatsURL:        "NATS_URL",
	TurnTimeout:    "TURN_TIMEOUT",
	WsListenAddr:   "WS_LISTEN_ADDR",
	RestListenAddr: "REST_LISTEN_ADDR",
	LogLevel:       "LOG_LEVEL",
}

func (c *cardRoomEnvironment) GetPersistMethod() string {
	method := os.Getenv(c.PersistMethod)
	if method == "" {
		return "memory"
	}
	return method
}

func (c *cardRoomEnvironment) GetRedisHost() string {
	host := os.Getenv(c.RedisHost)
	if host == "" {
		msg := fmt.Sprintf("%s is not defined", c.RedisHost)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return host
}

func (c *cardRoomEnvironment) GetRedisPort() int {
	portStr := os.Getenv(c.RedisPort)
	if portStr == "" {
		msg := fmt.Sprintf("%s is not defined", c.RedisPort)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	portNum, err := strconv.Atoi(portStr)
	if err != nil {
		msg := fmt.Sprintf("Invalid Redis port %s", portStr)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return portNum
}

func (c *cardRoomEnvironment) GetRedisPW() string {
	return os.Getenv(c.RedisPW)
}

func (c *cardRoomEnvironment) GetRedisDB() int {
	dbStr := os.Getenv(c.RedisDB)
	if dbStr == "" {
		return 0
	}
	dbNum, err := strconv.Atoi(dbStr)
	if err != nil {
		msg := fmt.Sprintf("Invalid Redis db %s", dbStr)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return dbNum
}

func (c *cardRoomEnvironment) GetNatsURL() string {
	return os.Getenv(c.NatsURL)
}

func (c *cardRoomEnvironment) GetTurnTimeout() int {
	s := os.Getenv(c.TurnTimeout)
	if s == "" {
		return 30
	}
	timeoutSec, err := strconv.Atoi(s)
	if err != nil {
		msg := fmt.Sprintf("Invalid integer [%s] for turn timeout value", s)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return timeoutSec
}

func (c *cardRoomEnvironment) GetWsListenAddr() string {
	addr := os.Getenv(c.WsListenAddr)
	if addr == "" {
		return ":8080"
	}
	return addr
}

func (c *cardRoomEnvironment) GetRestListenAddr() string {
	addr := os.Getenv(c.RestListenAddr)
	if addr == "" {
		return ":8081"
	}
	return addr
}

func (c *cardRoomEnvironment) GetLogLevel() string {
	level := os.Getenv(c.LogLevel)
	if level == "" {
		return "info"
	}
	return level
}
