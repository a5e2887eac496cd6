package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	analyticsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/analytics"
	favoritessvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/favorites"
	matchessvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/matches"
	notifysvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/notify"
	swipesvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/swipes"
	userssvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/users"
	"github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/handlers"
)

type Dependencies struct {
	Tokens           TokenParser
	UserService      *userssvc.Service
	SwipeService     *swipesvc.Service
	MatchService     *matchessvc.Service
	FavoriteService  *favoritessvc.Service
	NotifyService    *notifysvc.Service
	AnalyticsService *analyticsvc.Service
	HealthChecks     map[string]handlers.Pinger
	Logger           *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	meHandler := handlers.NewMeHandler(deps.UserService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	favoritesHandler := handlers.NewFavoritesHandler(deps.FavoriteService)
	devicesHandler := handlers.NewDevicesHandler(deps.NotifyService)
	eventsHandler := handlers.NewEventsHandler(deps.AnalyticsService)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(AuthMiddleware(deps.Tokens, deps.UserService, deps.Logger))

		v1.Get("/me", meHandler.Handle)
		v1.Patch("/me", meHandler.Update)

		v1.Post("/swipes", swipeHandler.Handle)
		v1.Get("/matches", matchesHandler.Handle)

		v1.Get("/favorites", favoritesHandler.List)
		v1.Post("/favorites", favoritesHandler.Add)
		v1.Delete("/favorites/{target_type}/{target_id}", favoritesHandler.Remove)

		v1.Post("/devices", devicesHandler.Register)
		v1.Post("/events", eventsHandler.Batch)
	})
}
