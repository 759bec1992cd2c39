package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/obinna-dev/drivesage/internal/api/handlers"
	appMiddleware "github.com/obinna-dev/drivesage/internal/api/middlewares"
	"github.com/obinna-dev/drivesage/internal/config"
	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/core/analyzer"
	"github.com/obinna-dev/drivesage/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, dbClient core.DbClient, conversations *services.ConversationService, documents *services.DocumentService, an *analyzer.Analyzer) *Server {
	authHandler := handlers.NewAuthHandler(dbClient)
	docHandler := handlers.NewDocumentHandler(documents, an)
	chatHandler := handlers.NewChatHandler(conversations)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware)
			protected.Post("/google/token", authHandler.ConnectGoogle)

			protected.Get("/documents", docHandler.GetDocuments)
			protected.Post("/documents/sync", docHandler.SyncDocuments)
			protected.Post("/documents/analyze", docHandler.AnalyzeAll)
			protected.Post("/documents/{document_id}/analyze", docHandler.AnalyzeDocument)

			protected.Post("/chat/message", chatHandler.SendMessage)
			protected.Get("/chat/sessions", chatHandler.GetSessions)
			protected.Get("/chat/sessions/{session_id}/messages", chatHandler.GetSessionMessages)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
