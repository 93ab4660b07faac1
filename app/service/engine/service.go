// Package engine exposes the interview flow over HTTP.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quartz/app/config"
	"quartz/app/service/interview"
	"quartz/app/service/roster"
	"quartz/app/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/samber/do"
)

const shutdownTimeout = 5 * time.Second

type Service struct {
	cfg          *config.Config
	store        storage.Store
	rosterSvc    *roster.Service
	interviewSvc *interview.Service

	app *fiber.App
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg:          do.MustInvoke[*config.Config](di),
		store:        do.MustInvoke[storage.Store](di),
		rosterSvc:    do.MustInvoke[*roster.Service](di),
		interviewSvc: do.MustInvoke[*interview.Service](di),
	}

	app := fiber.New(fiber.Config{
		AppName:               "quartz",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/", s.handleInfo)
	app.Get("/health", s.handleHealth)
	app.Get("/data", s.handleData)
	app.Get("/agents", s.handleListAgents)
	app.Get("/agent/:name", s.handleAgentDetails)
	app.Post("/create_session", s.handleCreateSession)
	app.Get("/sessions", s.handleListSessions)
	app.Get("/sessions/:id", s.handleGetSession)
	app.Post("/sessions/:id/messages", s.handleAddMessage)
	app.Post("/initialize_session", s.handleInitializeNewSession)
	app.Post("/initialize_session/:id", s.handleInitializeSession)
	app.Post("/chat_with_ai", s.handleChat)
	app.Get("/conversation_analysis/:id", s.handleAnalysis)

	s.app = app
	return s, nil
}

// App exposes the fiber app for tests.
func (s *Service) App() *fiber.App {
	return s.app
}

func (s *Service) Run(ctx context.Context) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	go func() {
		<-ctx.Done()
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			slog.Error("HTTP server shutdown failed", "error", err)
		}
	}()

	slog.Info("HTTP server listening", "addr", addr)

	if err := s.app.Listen(addr); err != nil {
		slog.Error("HTTP server stopped", "error", err)
	}
}
