package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"lms-backend/internal/auth"
	"lms-backend/internal/config"
	domainCourse "lms-backend/internal/domain/course"
	domainUser "lms-backend/internal/domain/user"
	"lms-backend/internal/events"
	"lms-backend/internal/infrastructure/database/memory"
	"lms-backend/internal/infrastructure/database/mongo"
	"lms-backend/internal/infrastructure/database/postgres"
	"lms-backend/internal/infrastructure/email"
	"lms-backend/internal/infrastructure/payment"
	"lms-backend/internal/infrastructure/storage"
	"lms-backend/internal/logger"
	"lms-backend/internal/routes"
	courseUsecase "lms-backend/internal/usecase/course"
	paymentUsecase "lms-backend/internal/usecase/payment"
	userUsecase "lms-backend/internal/usecase/user"
)

const startupTimeout = 30 * time.Second

// store bundles the repositories of the selected driver.
type store struct {
	users   domainUser.Repository
	courses domainCourse.Repository
	health  routes.HealthChecker
	close   func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &store{
			users:   postgres.NewUserRepository(db),
			courses: postgres.NewCourseRepository(db),
			health:  db,
			close:   func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		s, err := mongo.NewStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &store{
			users:   mongo.NewUserRepository(s),
			courses: mongo.NewCourseRepository(s),
			health:  s,
			close:   s.Close,
		}, nil

	case config.DriverMemory:
		users := memory.NewUserRepository()
		return &store{
			users:   users,
			courses: memory.NewCourseRepository(),
			health:  users,
			close:   func(context.Context) error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

func openMediaStorage(ctx context.Context, cfg *config.Config) userUsecase.MediaStorage {
	s3, err := storage.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			logger.Warn("Object storage not configured, uploads are disabled")
		} else {
			logger.Error("Failed to initialize object storage, uploads are disabled", zap.Error(err))
		}
		return storage.Disabled{}
	}
	return s3
}

func openPublisher(cfg *config.Config) (events.Publisher, func()) {
	if cfg.MQTT.Broker == "" {
		logger.Info("MQTT broker not configured, events are not published")
		return events.NoopPublisher{}, func() {}
	}

	publisher := events.NewMQTTPublisher(cfg.MQTT)
	if err := publisher.Connect(); err != nil {
		logger.Error("Failed to connect to MQTT broker, events are not published", zap.Error(err))
		return events.NoopPublisher{}, func() {}
	}
	return publisher, publisher.Disconnect
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	st, err := openStore(startCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(ctx); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	media := openMediaStorage(startCtx, cfg)
	publisher, disconnect := openPublisher(cfg)
	defer disconnect()

	issuer := auth.NewTokenIssuer(cfg.JWT.Secret)
	cookies := auth.NewCookiePolicy(cfg)

	userService := userUsecase.NewService(
		st.users,
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		issuer,
		auth.NewResetTokenGenerator(cfg.Auth.ResetTokenTTL),
		email.NewSMTPSender(cfg.SMTP),
		media,
		publisher,
		cfg,
	)
	courseService := courseUsecase.NewService(st.courses, media, publisher)
	paymentService := paymentUsecase.NewService(st.users, payment.NewRazorpayClient(cfg.Payment), publisher)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	if err := userService.StartResetSweepJob(jobCtx, cfg.Jobs.ResetSweepSpec); err != nil {
		logger.Fatal("Failed to schedule reset sweep job", zap.Error(err))
	}

	router := routes.SetupRoutes(cfg, routes.Dependencies{
		UserService:    userService,
		CourseService:  courseService,
		PaymentService: paymentService,
		Tokens:         issuer,
		Cookies:        cookies,
		Store:          st.health,
	})

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}
