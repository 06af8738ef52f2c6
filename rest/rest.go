package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/catmaikl/cosatkaclickmserv-sub000/game"
)

var restLogger = log.With().Str("logger_name", "rest::rest").Logger()

// RunRestServer serves the internal observability endpoints: liveness, the
// room directory, recently resolved hands, and prometheus metrics. It does
// not carry any gameplay traffic.
func RunRestServer(addr string, manager *game.Manager) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": manager.RoomDirectory()})
	})
	r.GET("/hands/recent", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"hands": manager.RecentHandResults()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	restLogger.Info().Msgf("REST server listening on %s", addr)
	return r.Run(addr)
}
