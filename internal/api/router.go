package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/anahisv/whisperbox-be/internal/api/handlers"
	"github.com/anahisv/whisperbox-be/internal/auth"
	"github.com/anahisv/whisperbox-be/internal/services"
	"github.com/anahisv/whisperbox-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(corsOrigin string, hub *websocket.Hub, accountService services.AccountServiceProvider, messageService services.MessageServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accountService)
	messageHandler := handlers.NewMessageHandler(messageService, hub)
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/signup", accountHandler.Signup)
		r.Get("/is-username-unique", accountHandler.CheckUsername)
		r.Post("/verify-code", accountHandler.VerifyCode)
		r.Post("/signin", accountHandler.SignIn)
		r.Post("/send-messages", messageHandler.Send)

		// Session-guarded endpoints
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Get("/accept-messages", accountHandler.GetAcceptMessages)
			r.Post("/accept-messages", accountHandler.SetAcceptMessages)
			r.Get("/get-messages", messageHandler.List)
			r.Delete("/delete-message/{messageId}", messageHandler.Delete)
			r.Get("/ws", wsHandler.Serve)
		})
	})

	return r
}
