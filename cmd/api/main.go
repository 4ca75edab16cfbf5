package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rukundo0023/empowerhered-sub000/internal/handler"
	"github.com/rukundo0023/empowerhered-sub000/internal/repository"
	"github.com/rukundo0023/empowerhered-sub000/internal/service"
	"github.com/rukundo0023/empowerhered-sub000/pkg/cache"
	"github.com/rukundo0023/empowerhered-sub000/pkg/config"
	"github.com/rukundo0023/empowerhered-sub000/pkg/database"
	"github.com/rukundo0023/empowerhered-sub000/pkg/export"
	"github.com/rukundo0023/empowerhered-sub000/pkg/jobs"
	"github.com/rukundo0023/empowerhered-sub000/pkg/logger"
	"github.com/rukundo0023/empowerhered-sub000/pkg/mail"
	"github.com/rukundo0023/empowerhered-sub000/pkg/storage"
)

const cacheKeyPrefix = "empowerhered:"

// @title EmpowerHerEd API
// @version 1.0.0
// @description Mentorship bookings, quizzes and certificates for the EmpowerHerEd platform.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to apply schema", zap.Error(err))
		}
		logr.Info("database schema applied")
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, cacheKeyPrefix, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.PendingBookingsTTL, logr, cacheRepo != nil)

	sender, err := mail.NewSender(cfg.Mail, logr)
	if err != nil {
		logr.Fatal("failed to configure mail", zap.Error(err))
	}

	files, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare certificate storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Certificates.SignedURLSecret, cfg.Certificates.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	mentorshipRepo := repository.NewMentorshipRepository(db)
	quizRepo := repository.NewQuizRepository(db)

	notifications := service.NewNotificationService(sender, metrics, cfg.Mail.Timeout, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	bookingSvc := service.NewBookingService(bookingRepo, mentorshipRepo, userRepo, notifications, cacheSvc, metrics, validate, logr)
	mentorshipSvc := service.NewMentorshipService(mentorshipRepo, metrics, validate, logr)
	quizSvc := service.NewQuizService(quizRepo, metrics, validate, logr)
	certificateSvc := service.NewCertificateService(quizRepo, userRepo, files, signer, export.NewCertificateRenderer(""), cfg.APIPrefix, logr)

	if cfg.Reminders.Enabled {
		reminders := service.NewReminderService(mentorshipRepo, notifications, metrics, service.ReminderConfig{
			LeadTime: cfg.Reminders.LeadTime,
			Window:   cfg.Reminders.Window,
		}, logr)
		queue := jobs.NewQueue("meeting-reminders", reminders.Handle, jobs.QueueConfig{
			Workers:    cfg.Reminders.Workers,
			MaxRetries: cfg.Reminders.Retries,
			RetryDelay: 30 * time.Second,
			Logger:     logr,
			OnDrop:     reminders.Dropped,
		})
		reminders.UseQueue(queue)
		queue.Start(ctx)
		defer queue.Stop()

		scheduler := cron.New()
		if _, err := reminders.Schedule(scheduler, cfg.Reminders.Schedule); err != nil {
			logr.Fatal("invalid reminder schedule", zap.String("schedule", cfg.Reminders.Schedule), zap.Error(err))
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logr.Info("meeting reminders scheduled", zap.String("schedule", cfg.Reminders.Schedule))
	}

	r := newRouter(cfg, logr, routeDeps{
		auth:         authSvc,
		metrics:      metrics,
		db:           db,
		authH:        handler.NewAuthHandler(authSvc),
		bookingH:     handler.NewBookingHandler(bookingSvc),
		mentorshipH:  handler.NewMentorshipHandler(mentorshipSvc),
		quizH:        handler.NewQuizHandler(quizSvc, certificateSvc),
		certificateH: handler.NewCertificateHandler(certificateSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
