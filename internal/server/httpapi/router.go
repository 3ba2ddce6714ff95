package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/devlink/internal/logging"
	"github.com/dmitrijs2005/devlink/internal/server/config"
	"github.com/dmitrijs2005/devlink/internal/server/posts"
	"github.com/dmitrijs2005/devlink/internal/server/users"
)

// NewRouter builds the gin engine with middleware and all routes attached.
func NewRouter(cfg *config.Config, logger logging.Logger, us *users.Service, ps *posts.Service) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg)))

	h := NewHandler(us, ps, logger)
	gate := AuthRequired([]byte(cfg.SecretKey), logger)

	r.GET("/", h.Ping)

	api := r.Group("/api")
	{
		api.POST("/users", h.Register)
		api.POST("/login", h.Login)
		api.GET("/auth", gate, h.Me)
		api.POST("/posts", gate, h.CreatePost)
	}

	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	c.MaxAge = 12 * time.Hour

	if cfg.CORSAllowedOrigins == "*" {
		c.AllowAllOrigins = true
		return c
	}

	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	c.AllowOrigins = origins
	return c
}
