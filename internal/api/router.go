package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/auth"
	"github.com/parkfind/backend/internal/middleware"
)

// Router holds all handlers and creates the chi router
type Router struct {
	authHandler         *AuthHandler
	followHandler       *FollowHandler
	commentHandler      *CommentHandler
	discoveryHandler    *DiscoveryHandler
	notificationHandler *NotificationHandler
	pushHandler         *PushHandler
	wsHandler           *WSHandler
	healthHandler       *HealthHandler
	jwtManager          *auth.JWTManager
	logger              *zap.Logger
}

// NewRouter creates a new router
func NewRouter(
	authHandler *AuthHandler,
	followHandler *FollowHandler,
	commentHandler *CommentHandler,
	discoveryHandler *DiscoveryHandler,
	notificationHandler *NotificationHandler,
	pushHandler *PushHandler,
	wsHandler *WSHandler,
	healthHandler *HealthHandler,
	jwtManager *auth.JWTManager,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:         authHandler,
		followHandler:       followHandler,
		commentHandler:      commentHandler,
		discoveryHandler:    discoveryHandler,
		notificationHandler: notificationHandler,
		pushHandler:         pushHandler,
		wsHandler:           wsHandler,
		healthHandler:       healthHandler,
		jwtManager:          jwtManager,
		logger:              logger,
	}
}

// Setup configures and returns the chi router
func (rt *Router) Setup() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware())
	r.Use(chimiddleware.Compress(5))

	r.Get("/health", rt.healthHandler.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", rt.authHandler.Register)
		r.Post("/login", rt.authHandler.Login)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.jwtManager))

			r.Route("/follows", func(r chi.Router) {
				r.Post("/", rt.followHandler.Follow)
				r.Delete("/{userID}", rt.followHandler.Unfollow)
			})

			r.Post("/posts/{postID}/comments", rt.commentHandler.AddComment)

			r.Post("/discoveries", rt.discoveryHandler.ReportFind)
			r.Post("/parks/updates", rt.discoveryHandler.RecordParkUpdate)

			r.Route("/notifications", func(r chi.Router) {
				r.Post("/list", rt.notificationHandler.List)
				r.Post("/read", rt.notificationHandler.MarkRead)
				r.Post("/read-all", rt.notificationHandler.MarkAllRead)
				r.Get("/unread-count", rt.notificationHandler.UnreadCount)
			})

			r.Route("/push", func(r chi.Router) {
				r.Post("/subscriptions", rt.pushHandler.Subscribe)
				r.Delete("/subscriptions", rt.pushHandler.Unsubscribe)
				r.Get("/vapid-key", rt.pushHandler.VAPIDKey)
				r.Post("/tokens", rt.pushHandler.RegisterToken)
			})

			r.Get("/ws", rt.wsHandler.Connect)
		})
	})

	return r
}
