// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root — the one place where storage,
// services, handlers, and middleware get wired together. main.go stays
// minimal (read config, call New, call Start), and every other package
// receives its dependencies instead of constructing them.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/handler"
	"github.com/sakif/taskboard/internal/middleware"
	"github.com/sakif/taskboard/internal/repository"
	"github.com/sakif/taskboard/internal/repository/jsonfile"
	sqliteRepo "github.com/sakif/taskboard/internal/repository/sqlite"
	"github.com/sakif/taskboard/internal/service"
)

// Storage driver names accepted in Config.StorageDriver.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config holds server configuration, loaded from the environment by main.
type Config struct {
	Port          int
	JWTSecret     string
	StorageDriver string // "json" (flat-file documents) or "sqlite"
	DataDir       string // document directory for the json driver
	DBPath        string // database file for the sqlite driver
}

// Server owns the router and, through closer, whatever storage resources the
// selected driver holds open. Start releases them on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	closer io.Closer // nil for drivers with nothing to release
}

// repositories groups the three storage interfaces a driver must provide.
// Both drivers implement all three on a single DB value; bundling them keeps
// openStorage's return signature readable.
type repositories struct {
	users repository.UserRepository
	tasks repository.TaskRepository
	posts repository.PostRepository
}

// New assembles the full dependency chain:
//
//	storage driver → repositories → services → handlers → routes
//
// Each layer receives only interfaces from the layer below it. The handlers
// never see a repository; the services never see HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	repos, closer, err := openStorage(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		closer: closer,
	}

	if err := s.setupRoutes(repos); err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStorage selects and opens the configured storage driver. The returned
// io.Closer is nil for the json driver — its store opens and closes files
// per operation, so there is nothing held open between requests.
func openStorage(cfg Config, logger *slog.Logger) (repositories, io.Closer, error) {
	switch cfg.StorageDriver {
	case DriverJSON, "":
		db, err := jsonfile.New(cfg.DataDir)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("json driver: %w", err)
		}
		logger.Info("storage ready",
			slog.String("driver", DriverJSON),
			slog.String("dir", cfg.DataDir),
		)
		return repositories{users: db, tasks: db, posts: db}, nil, nil

	case DriverSQLite:
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("sqlite driver: %w", err)
		}
		logger.Info("storage ready",
			slog.String("driver", DriverSQLite),
			slog.String("path", cfg.DBPath),
		)
		return repositories{users: db, tasks: db, posts: db}, db, nil

	default:
		return repositories{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// setupRoutes configures middleware, builds the service and handler layers,
// and declares every route.
//
// ROUTE STRUCTURE:
//
//	GET    /health                  → liveness check (no auth)
//	POST   /api/auth/register       → create account (no auth)
//	POST   /api/auth/login          → issue JWT (no auth)
//	POST   /api/auth/logout         → acknowledge logout
//	GET    /api/auth/me             → current user profile
//	GET    /api/tasks               → list own tasks
//	POST   /api/tasks               → create task
//	GET    /api/tasks/{id}          → get own task
//	PUT    /api/tasks/{id}          → partial update of own task
//	DELETE /api/tasks/{id}          → delete own task
//	GET    /api/posts               → list all posts with comment counts
//	POST   /api/posts               → create post
//	GET    /api/posts/{id}          → post with its comment thread
//	POST   /api/posts/{id}/comments → comment on a post
//
// Middleware order matters: RequestID first so every later stage (including
// the logger) sees the ID, Recoverer before the handlers so a panic becomes
// a 500 instead of a dead connection.
func (s *Server) setupRoutes(repos repositories) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Unknown routes answer JSON, like everything else on this server.
	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.NotFound)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(repos.users, tokens, passwords, s.logger)
	taskService := service.NewTaskService(repos.tasks, s.logger)
	forumService := service.NewForumService(repos.posts, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)
	forumHandler := handler.NewForumHandler(forumService, s.logger)

	s.router.Get("/health", handler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public: the only two endpoints reachable without a token.
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Everything else requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authService))

			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/auth/me", authHandler.HandleMe)

			r.Get("/tasks", taskHandler.HandleList)
			r.Post("/tasks", taskHandler.HandleCreate)
			r.Get("/tasks/{id}", taskHandler.HandleGet)
			r.Put("/tasks/{id}", taskHandler.HandleUpdate)
			r.Delete("/tasks/{id}", taskHandler.HandleDelete)

			r.Get("/posts", forumHandler.HandleListPosts)
			r.Post("/posts", forumHandler.HandleCreatePost)
			r.Get("/posts/{id}", forumHandler.HandleGetPost)
			r.Post("/posts/{id}/comments", forumHandler.HandleCreateComment)
		})
	})

	return nil
}

// Router exposes the configured router so tests can mount the whole
// application behind httptest.Server without going through Start.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds to finish, and release storage resources.
func (s *Server) Start() error {
	defer func() {
		if s.closer != nil {
			if err := s.closer.Close(); err != nil {
				s.logger.Error("closing storage", slog.String("error", err.Error()))
			}
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
