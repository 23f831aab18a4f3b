package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/spec-kit/course-service/internal/config"
	"github.com/spec-kit/course-service/internal/observability"
	"github.com/spec-kit/course-service/internal/persistence"
	"github.com/spec-kit/course-service/internal/repository"
	"github.com/spec-kit/course-service/internal/seed"
	"github.com/spec-kit/course-service/internal/service"
)

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

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if !pg.Enabled() {
		logger.Fatal("POSTGRES_DSN is required to seed")
	}

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	pool := pg.PoolHandle()
	users := repository.NewUserRepository(pool)
	courses := repository.NewCourseRepository(pool)

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	var cache service.CourseCache
	if redis.Enabled() {
		cache = persistence.NewRedisCourseCache(redis.Client, cfg.Cache.CoursesTTL())
	}

	res, err := seed.Run(ctx, seed.Dependencies{
		Auth:    service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: users, Logger: logger}),
		Courses: service.NewCourseService(service.CourseDependencies{CourseRepo: courses, Cache: cache, Logger: logger}),
		Users:   users,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("seed finished", zap.Int("courses_created", res.CoursesCreated))
}
