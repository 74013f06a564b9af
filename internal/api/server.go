// Package api is the quizgen HTTP API.
package api

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/abhisek/quizgen/internal/health"
	"github.com/abhisek/quizgen/internal/questiongen"
	"github.com/abhisek/quizgen/internal/store"
)

// Deps are the services behind the handlers.
type Deps struct {
	Generator questiongen.Generator
	Questions store.QuestionRepo
	Health    *health.Monitor

	// Provider and Model are recorded with each stored batch.
	Provider string
	Model    string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server wires handlers, middleware and dependencies into a fiber app.
type Server struct {
	app  *fiber.App
	cfg  Config
	deps Deps
}

// New builds a Server. Generator, Questions and Health are required.
func New(deps Deps, cfg Config) (*Server, error) {
	if deps.Generator == nil || deps.Questions == nil || deps.Health == nil {
		return nil, errors.New("api: generator, question store and health monitor are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	app := fiber.New(fiber.Config{
		AppName:               "quizgen",
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	s := &Server{app: app, cfg: cfg, deps: deps}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	s.app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(s.cfg.CORSOrigins, ","),
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept",
		ExposeHeaders: "Content-Disposition",
	}))

	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)

	generate := []fiber.Handler{}
	if s.cfg.GenerateLimit > 0 {
		generate = append(generate, limiter.New(limiter.Config{
			Max:        s.cfg.GenerateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return detail(c, fiber.StatusTooManyRequests, "Too many generation requests. Please try again later.")
			},
		}))
	}
	generate = append(generate, s.handleGenerate)
	api.Post("/generate-questions", generate...)

	api.Post("/validate-questions", s.handleValidate)
	api.Get("/export/:format", s.handleExport)
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on cfg.Addr until ctx is done, then shuts down.
func (s *Server) Listen(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		log.Printf("quizgen API listening on %s", s.cfg.Addr)
		errc <- s.app.Listen(s.cfg.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}
