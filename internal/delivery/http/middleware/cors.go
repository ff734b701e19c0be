package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS - middleware для настройки Cross-Origin Resource Sharing.
// Пустой allowOrigins - разрешены все источники (без credentials).
func CORS(allowOrigins string) fiber.Handler {
	if allowOrigins == "" {
		return cors.New(cors.Config{
			AllowOrigins:  "*",
			AllowMethods:  "GET,PUT,DELETE,OPTIONS",
			AllowHeaders:  "Content-Type,Accept,Last-Event-ID," + RequestIDHeader,
			ExposeHeaders: RequestIDHeader,
		})
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Accept,Last-Event-ID," + RequestIDHeader,
		ExposeHeaders:    RequestIDHeader,
		AllowCredentials: true,
	})
}
