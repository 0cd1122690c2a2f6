package routes

import (
	"github.com/Radennn1/tutoring-backend/internal/config"
	"github.com/Radennn1/tutoring-backend/internal/handlers"
	"github.com/Radennn1/tutoring-backend/internal/identity"
	"github.com/Radennn1/tutoring-backend/internal/middleware"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, svc *Services, verifier identity.Verifier) error {
	authHandler := handlers.NewAuthHandler()
	sessionHandler := handlers.NewSessionHandler(svc.Sessions)
	walletHandler := handlers.NewWalletHandler(svc.Settlement)
	eventsHandler := handlers.NewSessionEventsHandler(verifier, svc.Sessions, svc.Hub)
	authRequired := middleware.AuthRequired(verifier)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	app.Get("/me", authRequired, authHandler.Me)

	// Websocket clients authenticate with ?token= since browsers cannot set
	// headers on the upgrade request.
	app.Get("/sessions/:id/events", eventsHandler.WebSocketAuth, websocket.New(eventsHandler.HandleWebSocket))

	app.Post("/sessions/ready", authRequired, sessionHandler.Ready)
	app.Post("/sessions/start", authRequired, sessionHandler.Start)
	app.Post("/sessions/end", authRequired, sessionHandler.End)
	app.Post("/sessions", authRequired, sessionHandler.Create)
	app.Get("/sessions", authRequired, sessionHandler.List)
	app.Get("/sessions/:id", authRequired, sessionHandler.Get)

	app.Get("/wallet", authRequired, walletHandler.Get)

	return registerDocsRoutes(app, cfg)
}
