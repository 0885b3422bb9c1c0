package http

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/coderoom/internal/adapters/signal"
	"github.com/dkeye/coderoom/internal/app/orch"
	"github.com/dkeye/coderoom/internal/config"
	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/metrics"
)

const clientTokenKey = "client_token"

// ClientTokenMiddleware gives every browser a stable token kept in the
// session cookie. It only correlates connections in logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

// roomParam extracts the room from a catch-all path parameter, tolerating
// a trailing slash.
func roomParam(c *gin.Context, key string) domain.RoomName {
	return domain.RoomName(strings.Trim(c.Param(key), "/"))
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, ctl *signal.SignalWSController, m *metrics.Metrics) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("CodeRoomSessions", store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": o.Rooms.Count()})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")

	// GET /api/rooms — live rooms by name
	api.GET("/rooms", func(c *gin.Context) {
		rooms := o.Rooms.List()
		slices.SortFunc(rooms, func(a, b core.RoomInfo) int { return cmp.Compare(a.Name, b.Name) })
		c.JSON(http.StatusOK, gin.H{"rooms": rooms})
	})

	// GET /api/rooms/:name/members — roster of a live room
	api.GET("/rooms/:name/members", func(c *gin.Context) {
		room, ok := o.Rooms.Lookup(domain.RoomName(c.Param("name")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, room.MembersSnapshot())
	})

	// DELETE /api/rooms/:name/members/:id — close a connection; its
	// disconnect is announced as usual
	api.DELETE("/rooms/:name/members/:id", func(c *gin.Context) {
		room := domain.RoomName(c.Param("name"))
		sid := domain.ConnectionID(c.Param("id"))
		if !o.Kick(room, sid) {
			c.JSON(http.StatusNotFound, gin.H{"error": "connection not found"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	// GET /ws/quiz/{room}/
	r.GET("/ws/quiz/*room", func(c *gin.Context) {
		room := roomParam(c, "room")
		if room == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room name is required"})
			return
		}
		ctl.HandleSignal(ctx, c, room)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")
	return r
}
