package api

import (
	"context"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/reelchat/reelchat/internal/config"
	"github.com/reelchat/reelchat/internal/database"
	"github.com/reelchat/reelchat/internal/server"
	"go.uber.org/zap"
)

// ChatApp is the HTTP surface of the messaging core: the read API for
// history and conversations, plus the websocket entrypoint.
type ChatApp struct {
	log            *zap.SugaredLogger
	db             database.ChatRepository
	cs             *server.ChatServer
	httpServer     *http.Server
	signingKey     []byte
	allowedOrigins []string
}

func NewChatApp(mux *http.ServeMux, logger *zap.SugaredLogger, cs *server.ChatServer,
	db database.ChatRepository, cfg *config.Config) *ChatApp {
	app := &ChatApp{
		log:            logger,
		db:             db,
		cs:             cs,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /healthz", app.healthCheck)
	mux.HandleFunc("GET /api/messages", app.authMiddleware(app.getMessages))
	mux.HandleFunc("GET /api/conversations", app.authMiddleware(app.getConversations))
	mux.HandleFunc("PUT /api/messages/read", app.authMiddleware(app.markRead))
	mux.HandleFunc("GET /api/messages/unread", app.authMiddleware(app.getUnreadCount))
	mux.HandleFunc("GET /api/chat/eligibility", app.authMiddleware(app.getEligibility))
	mux.HandleFunc("GET /ws", app.serveWs)

	handler := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	)(app.errorHandler(mux))

	app.httpServer = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: handler,
	}

	return app
}

func (s *ChatApp) Start() error {
	s.log.Infow("starting http server", "addr", s.httpServer.Addr)

	return s.httpServer.ListenAndServe()
}

func (s *ChatApp) Shutdown(ctx context.Context) error {
	s.cs.Shutdown()

	return s.httpServer.Shutdown(ctx)
}
