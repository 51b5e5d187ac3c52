package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"ms-restaurant/internal/admin"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/cache"
	"ms-restaurant/internal/config"
	"ms-restaurant/internal/database"
	"ms-restaurant/internal/database/migrations"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/kafka"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/menu"
	"ms-restaurant/internal/middleware"
	"ms-restaurant/internal/order"
	"ms-restaurant/internal/payment/handler"
	"ms-restaurant/internal/payment/services"
	"ms-restaurant/internal/poster"
	"ms-restaurant/internal/ratelimit"
	"ms-restaurant/internal/restaurant"
	"ms-restaurant/internal/telegram"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

const stalledOrderAge = 10 * time.Minute

func main() {
	log := logger.NewLogger("ms-restaurant")
	defer log.Close()

	log.Info("APP", "Starting restaurant service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid configuration: %v", err))
	}
	if cfg.Auth.AdminLogin == "" || cfg.Auth.AdminPasswordHash == "" {
		log.Warn("CONFIG", "ADMIN_LOGIN or ADMIN_PASSWORD_HASH not set, super-admin login disabled")
	}

	loc, err := time.LoadLocation(cfg.Server.ScheduleZone)
	if err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Unknown SCHEDULE_TIMEZONE %q: %v", cfg.Server.ScheduleZone, err))
	}

	ctx := context.Background()

	dbPath, err := database.ResolvePath(cfg.Database.Path)
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}
	bunDB, err := database.Open(ctx, dbPath)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open %s: %v", dbPath, err))
	}
	defer bunDB.Close()
	log.Info("DATABASE", fmt.Sprintf("✅ SQLite opened at %s", dbPath))

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), log)
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("MIGRATION", fmt.Sprintf("Failed to apply migrations: %v", err))
		}
		if version, err := runner.Version(); err == nil {
			log.Info("MIGRATION", fmt.Sprintf("Schema at version %d", version))
		}
	}
	store := db.New(bunDB)

	var (
		redisClient *redis.Client
		locker      cache.Locker      = cache.NewMemoryLocker()
		counter     ratelimit.Counter = ratelimit.NewMemoryCounter()
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.Connect(cfg.Redis.Addr, log)
		if err != nil {
			if cfg.RateLimit.Backend == "redis" {
				log.Fatal("REDIS", fmt.Sprintf("Redis required by RATE_LIMIT_BACKEND: %v", err))
			}
			log.Warn("REDIS", fmt.Sprintf("Redis unavailable, using in-process locks: %v", err))
		} else {
			defer redisClient.Close()
			locker = cache.NewRedisLocker(redisClient)
			if cfg.RateLimit.Backend == "redis" {
				counter = ratelimit.NewRedisCounter(redisClient)
			}
		}
	}
	log.Info("RATE_LIMIT", fmt.Sprintf("Using %s rate limit backend", cfg.RateLimit.Backend))

	var events order.EventPublisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled {
		topics := kafka.Topics{OrderCreated: cfg.Kafka.Topics.OrderCreated, OrderStatus: cfg.Kafka.Topics.OrderStatus}
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, []string{topics.OrderCreated, topics.OrderStatus}, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, topics, log)
		defer producer.Close()
		events = producer
		log.Info("KAFKA", "Kafka producer initialized successfully")
	} else {
		log.Info("KAFKA", "Kafka disabled, order events are dropped")
	}

	pos := poster.NewClient(cfg.Providers.PosterBaseURL, log)
	notifier := telegram.NewNotifier(store, telegram.NewClient(cfg.Providers.TelegramBaseURL), log)
	authService := auth.NewService(cfg.Auth, store, log)

	orderService := order.NewService(store, pos, services.NewPlumService(log), notifier, events, locker, log)
	orderService.PaymentBaseURL = cfg.Providers.PaymentBaseURL
	menuService := menu.NewService(store, pos, log)
	restaurantService := restaurant.NewService(store, authService, loc, log)
	adminService := admin.NewService(store, authService, orderService, log)

	if n, err := orderService.ReportStalled(ctx, stalledOrderAge); err != nil {
		log.Warn("ORDER", fmt.Sprintf("Stalled order check failed: %v", err))
	} else if n > 0 {
		log.Warn("ORDER", fmt.Sprintf("%d orders stopped mid-creation and need a retry", n))
	}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	window := cfg.RateLimit.Window
	publicLimit := ratelimit.Limit(counter, ratelimit.Rule{
		Scope:  "public",
		Limit:  cfg.RateLimit.Public,
		Window: window,
		Skip:   func(r *http.Request) bool { return auth.IsAdmin(r.Context()) },
	}, log)
	public := func(next http.Handler) http.Handler { return authService.OptionalAdmin(publicLimit(next)) }
	loginLimit := ratelimit.Limit(counter, ratelimit.Rule{Scope: "login", Limit: cfg.RateLimit.Login, Window: window}, log)
	registerLimit := ratelimit.Limit(counter, ratelimit.Rule{Scope: "register", Limit: cfg.RateLimit.Signup, Window: window}, log)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})

	(&auth.Handler{Service: authService}).Routes(r, loginLimit)
	log.Info("ROUTER", "Admin session routes registered under /api/login, /api/logout, /api/me")

	(&restaurant.Handler{Service: restaurantService, Logger: log}).Routes(r, authService.RequireAdmin, public)
	log.Info("ROUTER", "Restaurant routes registered under /api/restaurants")

	(&menu.Handler{Service: menuService, Logger: log}).Routes(r, authService.RequireAdmin, public)
	log.Info("ROUTER", "Menu routes registered")

	(&order.Handler{Service: orderService, Logger: log}).Routes(r, authService.RequireAdmin, authService.RequireClient)
	log.Info("ROUTER", "Order routes registered under /api/orders and /api/admin")

	(&admin.Handler{Service: adminService, Logger: log}).Routes(r, admin.Middleware{
		Admin:      authService.RequireAdmin,
		Client:     authService.RequireClient,
		Public:     public,
		Register:   registerLimit,
		Login:      loginLimit,
		Permission: authService.RequirePermission,
	})
	log.Info("ROUTER", "Directory and content routes registered")

	tg := &telegram.Handler{Notifier: notifier, Logger: log}
	r.Group(func(r chi.Router) {
		r.Use(authService.RequireAdmin)
		r.Get("/api/integrations/telegram", tg.GetSettings)
		r.Patch("/api/integrations/telegram", tg.UpdateSettings)
		r.Post("/api/integrations/telegram/test", tg.SendTest)
	})

	payments := handler.NewRouter(handler.NewPlumHandler(orderService, store, log))
	r.With(authService.RequireClient).Post("/api/orders/{id}/payment/confirm", payments.ServeHTTP)
	r.With(authService.RequireAdmin).Get("/api/integrations/plum", payments.ServeHTTP)
	r.With(authService.RequireAdmin).Patch("/api/integrations/plum", payments.ServeHTTP)
	log.Info("ROUTER", "Integration routes registered under /api/integrations")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Restaurant service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Restaurant service shutdown complete")
	}
}
