package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"subscription-service/internal/usecase"
)

// Server wires the subscription API routes to the use cases.
type Server struct {
	subUC  usecase.SubscriptionUseCase
	planUC usecase.PlanUseCase
	tokens *TokenManager
	prefix string
	log    *zerolog.Logger
}

func NewServer(
	subUC usecase.SubscriptionUseCase,
	planUC usecase.PlanUseCase,
	tokens *TokenManager,
	prefix string,
	logger *zerolog.Logger,
) *Server {
	if prefix == "" {
		prefix = "/api/v1"
	}
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		subUC:  subUC,
		planUC: planUC,
		tokens: tokens,
		prefix: prefix,
		log:    &l,
	}
}

// Router builds the chi router with middleware and all API routes mounted
// under the configured prefix. Health and metrics stay unprefixed.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route(s.prefix, func(r chi.Router) {
		// Subscription creation is the only gated operation; the remaining
		// routes are public in the current surface.
		r.With(s.tokens.RequireAuth).Post("/subscriptions", subscriptionCreateHandler(s.subUC, s.log))

		r.Get("/subscriptions/history/{userID}", subscriptionHistoryHandler(s.subUC, s.log))
		r.Get("/subscriptions/{userID}", subscriptionGetHandler(s.subUC, s.log))
		r.Put("/subscriptions/{userID}", subscriptionUpdateHandler(s.subUC, s.log))
		r.Delete("/subscriptions/{userID}", subscriptionCancelHandler(s.subUC, s.log))

		r.Get("/plans", plansListHandler(s.planUC, s.log))
		r.Post("/plans", plansCreateHandler(s.planUC, s.log))

		r.Post("/createtoken", tokenCreateHandler(s.tokens, s.log))
	})

	return r
}
