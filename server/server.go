// Package server exposes rule search, rule management and metadata
// passthrough over HTTP.
package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"

	"github.com/Moe-Sakura/anime-search-api/bangumi"
	"github.com/Moe-Sakura/anime-search-api/constant"
	"github.com/Moe-Sakura/anime-search-api/key"
	"github.com/Moe-Sakura/anime-search-api/log"
	"github.com/Moe-Sakura/anime-search-api/rules"
	"github.com/Moe-Sakura/anime-search-api/search"
)

// Server wires the HTTP surface onto the search stack.
type Server struct {
	app          *fiber.App
	store        *rules.Store
	updater      *rules.Updater
	orchestrator *search.Orchestrator
	bangumi      *bangumi.Client
}

// New assembles the fiber application with its middleware and routes.
func New(store *rules.Store, updater *rules.Updater, orchestrator *search.Orchestrator, metadata *bangumi.Client) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               constant.App,
			DisableStartupMessage: true,
		}),
		store:        store,
		updater:      updater,
		orchestrator: orchestrator,
		bangumi:      metadata,
	}

	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: viper.GetString(key.ServerCORS),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	s.app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please slow down",
			})
		},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/", s.handleInfo)
	s.app.Get("/health", s.handleHealth)

	s.app.Post("/api", s.handleSearch)
	s.app.Get("/rules", s.handleRules)
	s.app.Get("/update", s.handleUpdate)

	meta := s.app.Group("/bangumi")
	meta.Get("/calendar", s.handleCalendar)
	meta.Get("/subject/:id", s.handleSubject)
	meta.Get("/search", s.handleMetaSearch)
}

// Listen serves on the given port until the process exits.
func (s *Server) Listen(port int) error {
	log.Infof("listening on :%d", port)
	return s.app.Listen(fmt.Sprintf(":%d", port))
}

// App exposes the underlying fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
