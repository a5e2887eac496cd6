package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Geraxi/tenant-mvp-sub001/internal/config"
	"github.com/Geraxi/tenant-mvp-sub001/internal/infra/push"
	"github.com/Geraxi/tenant-mvp-sub001/internal/jobs/cleanup"
	pgrepo "github.com/Geraxi/tenant-mvp-sub001/internal/repo/postgres"
	redrepo "github.com/Geraxi/tenant-mvp-sub001/internal/repo/redis"
	analyticsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/analytics"
	authsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/auth"
	favoritessvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/favorites"
	matchessvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/matches"
	notifysvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/notify"
	ratesvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/rate"
	swipesvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/swipes"
	userssvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/users"
	"github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
	cleanupJob *cleanup.Job
	jobsCtx    context.Context
	stopJobs   context.CancelFunc
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, premium burst limiting disabled", zap.Error(err))
	} else {
		redisClient = c
	}

	userRepo := pgrepo.NewUserRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	listingRepo := pgrepo.NewListingRepo(pool)
	favoriteRepo := pgrepo.NewFavoriteRepo(pool)
	deviceRepo := pgrepo.NewUserDeviceRepo(pool)
	eventRepo := pgrepo.NewEventRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, 0)
	userService := userssvc.NewService(userRepo, userssvc.Config{
		FreeSwipeLimit: cfg.Limits.FreeSwipes,
	})
	analyticsService := analyticsvc.NewService(eventRepo, log, analyticsvc.Config{
		MaxBatchSize: 100,
	})
	notifyService := notifysvc.NewService(deviceRepo, newPushSender(ctx, cfg.Push, log), log)
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		MatchStore: matchRepo,
	}, matchessvc.Config{
		MaxListLimit: cfg.Matching.ListLimit,
	})
	favoritesService := favoritessvc.NewService(favoriteRepo, listingRepo)

	// A nil limiter must stay an untyped nil so the swipe service skips it.
	var limiter swipesvc.RateLimiter
	if redisClient != nil {
		burst := ratesvc.NewLimiter(
			redrepo.NewRateRepo(redisClient),
			cfg.Limits.PremiumRatePerMinute,
			cfg.Limits.PremiumRatePer10Seconds,
		)
		limiter = burst
		userService.AttachBurstView(burst)
	}

	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Tx:          pgrepo.NewTxRunner(pool),
		Users:       userRepo,
		Swipes:      swipeRepo,
		Listings:    listingRepo,
		Matches:     matchRepo,
		RateLimiter: limiter,
		Notifier:    notifyService,
		Events:      analyticsService,
		Logger:      log,
	}, swipesvc.Config{
		FreeSwipeLimit: cfg.Limits.FreeSwipes,
		NotifyTimeout:  cfg.Matching.NotifyTimeout,
	})

	checks := map[string]handlers.Pinger{
		"postgres": nil,
		"redis":    nil,
	}
	if pool != nil {
		checks["postgres"] = pool
	}
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
	}

	RegisterRoutes(r, Dependencies{
		Tokens:           jwtManager,
		UserService:      userService,
		SwipeService:     swipeService,
		MatchService:     matchesService,
		FavoriteService:  favoritesService,
		NotifyService:    notifyService,
		AnalyticsService: analyticsService,
		HealthChecks:     checks,
		Logger:           log,
	})

	var cleanupJob *cleanup.Job
	if pool != nil {
		cleanupJob = cleanup.New(log)
		cleanupJob.Attach("user_devices", cleanup.PrunerFunc(deviceRepo.DeleteStale), cfg.Cleanup.DeviceRetention)
		cleanupJob.Attach("events", eventRepo, cfg.Cleanup.EventRetention)
	}
	jobsCtx, stopJobs := context.WithCancel(context.WithoutCancel(ctx))

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
		cleanupJob: cleanupJob,
		jobsCtx:    jobsCtx,
		stopJobs:   stopJobs,
	}, nil
}

func (a *App) Run() error {
	if a.cleanupJob != nil {
		go a.cleanupJob.Loop(a.jobsCtx, a.cfg.Cleanup.Interval)
	}

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	a.stopJobs()
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

// newPushSender falls back to the logging sender when FCM is off or cannot start.
func newPushSender(ctx context.Context, cfg config.PushConfig, log *zap.Logger) push.Sender {
	if !cfg.Enabled {
		return push.NewNoopSender(log)
	}

	sender, err := push.NewFCMSender(ctx, push.FCMConfig{
		ProjectID:             cfg.ProjectID,
		CredentialsFile:       cfg.CredentialsFile,
		CredentialsJSONBase64: cfg.CredentialsJSONBase64,
	})
	if err != nil {
		log.Warn("fcm init failed, match notifications will only be logged", zap.Error(err))
		return push.NewNoopSender(log)
	}
	return sender
}

type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
