package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/auth"
	"github.com/ahmedharby13/Evouqe-Project/internal/cache"
	"github.com/ahmedharby13/Evouqe-Project/internal/config"
	"github.com/ahmedharby13/Evouqe-Project/internal/events"
	h "github.com/ahmedharby13/Evouqe-Project/internal/http"
	"github.com/ahmedharby13/Evouqe-Project/internal/identity"
	"github.com/ahmedharby13/Evouqe-Project/internal/mail"
	"github.com/ahmedharby13/Evouqe-Project/internal/media"
	"github.com/ahmedharby13/Evouqe-Project/internal/payment"
	"github.com/ahmedharby13/Evouqe-Project/internal/repository"
	"github.com/ahmedharby13/Evouqe-Project/internal/service"
	"github.com/ahmedharby13/Evouqe-Project/pkg/circuitbreaker"
	"github.com/ahmedharby13/Evouqe-Project/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const maxJSONBodySize = 1 << 20

func main() {
	if err := run(); err != nil {
		slog.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	// Incoming traceparent headers become the request span, so logs carry
	// the caller's trace id.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	ctx := context.Background()

	db, err := repository.ConnectMongoDB(ctx, repository.MongoOptions{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		MaxPoolSize:    uint64(cfg.MongoMaxPoolSize),
		MinPoolSize:    uint64(cfg.MongoMinPoolSize),
		ConnectTimeout: cfg.MongoConnectTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Client().Disconnect(dctx); err != nil {
			log.Error("mongo disconnect failed", "error", err)
		}
	}()
	log.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	if err := repository.RunMigrations(db); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Cache is optional; every read falls back to Mongo
		log.Warn("redis ping failed, running with a cold cache", "addr", cfg.RedisAddr, "error", err)
	}
	redisCache := cache.NewRedisCache(redisClient)

	breakers := circuitbreaker.DefaultSettings()
	stripe := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.Currency, circuitbreaker.New("stripe", breakers, log))
	images, err := media.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret,
		circuitbreaker.New("cloudinary", breakers, log))
	if err != nil {
		return err
	}
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom,
		circuitbreaker.New("smtp", breakers, log))
	google := identity.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	var publisher service.EventPublisher = events.Nop{}
	if cfg.KafkaEnabled() {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, circuitbreaker.New("kafka", breakers, log), log)
		defer kp.Close()
		publisher = kp
		log.Info("publishing order events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	accounts := repository.NewAccountRepository(db)
	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.CSRFTokenTTL)

	accountService := service.NewAccountService(accounts, mailer, google, tokens, cfg.FrontendURL, log)
	catalogService := service.NewCatalogService(products, accounts, images, redisCache, log)
	cartService := service.NewCartService(accounts, products, redisCache, log)
	orderService := service.NewOrderService(orders, products, cartService, catalogService, stripe, publisher,
		service.OrderConfig{DeliveryFee: cfg.DeliveryFee, FrontendURL: cfg.FrontendURL}, log)

	if cfg.AdminEmail != "" {
		if err := accountService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	router := h.NewRouter(h.RouterConfig{
		AllowedOrigins:     cfg.AllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: maxJSONBodySize,
	}, h.Handlers{
		Users:    h.NewUserHandler(accountService, tokens),
		Products: h.NewProductHandler(catalogService, cfg.MaxRequestBodySize),
		Cart:     h.NewCartHandler(cartService),
		Orders:   h.NewOrdersHandler(orderService),
	}, tokens, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	log.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}

	log.Info("server exited")
	return nil
}
