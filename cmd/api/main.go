package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/course-service/internal/api/http"
	"github.com/spec-kit/course-service/internal/api/http/handlers"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/config"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/observability"
	"github.com/spec-kit/course-service/internal/persistence"
	"github.com/spec-kit/course-service/internal/repository"
	"github.com/spec-kit/course-service/internal/repository/memory"
	"github.com/spec-kit/course-service/internal/seed"
	"github.com/spec-kit/course-service/internal/service"
	"github.com/spec-kit/course-service/internal/worker"
)

type repositories struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var repos repositories
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		pool := pg.PoolHandle()
		repos = repositories{
			users:       repository.NewUserRepository(pool),
			courses:     repository.NewCourseRepository(pool),
			enrollments: repository.NewEnrollmentRepository(pool),
		}
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			users:       store.Users(),
			courses:     store.Courses(),
			enrollments: store.Enrollments(),
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var courseCache service.CourseCache
	if redis.Enabled() {
		courseCache = persistence.NewRedisCourseCache(redis.Client, cfg.Cache.CoursesTTL())
	}

	dispatcher := events.NewInMemoryDispatcher()

	var sink service.EventSink
	var forwarder *worker.EventForwarder
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		forwarder = worker.NewEventForwarder(kafkaPublisher, logger, 0)
		sink = forwarder
		go forwarder.Run(ctx)
		logger.Info("forwarding events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	notificationService := service.NewNotificationService(dispatcher, logger, sink)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   repos.users,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	courseService := service.NewCourseService(service.CourseDependencies{
		CourseRepo: repos.courses,
		Cache:      courseCache,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	enrollmentService := service.NewEnrollmentService(service.EnrollmentDependencies{
		CourseRepo:     repos.courses,
		EnrollmentRepo: repos.enrollments,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)

	if cfg.App.SeedDemo {
		if _, err := seed.Run(ctx, seed.Dependencies{
			Auth:    authService,
			Courses: courseService,
			Users:   repos.users,
			Logger:  logger,
		}); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(*cfg, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService, enrollmentService),
		Courses:        handlers.NewCoursesHandler(courseService, enrollmentService, cfg.Uploads),
		AuthMiddleware: authMiddleware,
		Uploads:        cfg.Uploads,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	if forwarder != nil {
		<-forwarder.Done()
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Warn("kafka close", zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
