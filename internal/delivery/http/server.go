package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/transit-favorites/internal/config"
	"github.com/transit-favorites/internal/delivery/http/handler"
	"github.com/transit-favorites/internal/delivery/http/middleware"
	"github.com/transit-favorites/internal/pkg/errors"
	"github.com/transit-favorites/internal/pkg/utils"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	favoriteHandler *handler.FavoriteHandler
	savedHandler    *handler.SavedLocationHandler
	healthHandler   *handler.HealthHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	favoriteHandler *handler.FavoriteHandler,
	savedHandler *handler.SavedLocationHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Transit Favorites",
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
		// WriteTimeout не задаём: SSE поток живёт долго
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		favoriteHandler: favoriteHandler,
		savedHandler:    savedHandler,
		healthHandler:   healthHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - доступ к fiber.App (тесты)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		// сжатие буферизует ответ и ломает SSE
		Next: func(c *fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/watch")
		},
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", s.healthHandler.Health)

	// Favorite routes
	favorites := api.Group("/favorites/:kind/:network")
	favorites.Get("/", s.favoriteHandler.GetFavorite)
	favorites.Put("/", s.favoriteHandler.PutFavorite)
	favorites.Delete("/", s.favoriteHandler.DeleteFavorite)
	favorites.Get("/count", s.favoriteHandler.CountFavorites)
	favorites.Get("/watch", s.favoriteHandler.WatchFavorite)

	networks := api.Group("/networks/:network")
	networks.Get("/favorites", s.favoriteHandler.ListFavorites)

	// Saved locations routes
	networks.Get("/saved", s.savedHandler.ListSaved)
	networks.Post("/saved", s.savedHandler.RecordUse)
	networks.Post("/saved/lookup", s.savedHandler.FindSaved)
	networks.Delete("/saved/:uid", s.savedHandler.RemoveSaved)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			logger.Debug("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", e.Code),
				zap.Error(err),
			)
			code := errors.CodeInvalidRequest
			if e.Code >= fiber.StatusInternalServerError {
				code = errors.CodeInternal
			}
			return c.Status(e.Code).JSON(utils.ErrorResponse{
				Error: errors.New(code, e.Message, e.Code),
			})
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}
