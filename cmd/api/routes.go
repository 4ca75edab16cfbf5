package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/rukundo0023/empowerhered-sub000/api/swagger"
	"github.com/rukundo0023/empowerhered-sub000/internal/handler"
	"github.com/rukundo0023/empowerhered-sub000/internal/middleware"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	"github.com/rukundo0023/empowerhered-sub000/internal/service"
	"github.com/rukundo0023/empowerhered-sub000/pkg/config"
	"github.com/rukundo0023/empowerhered-sub000/pkg/logger"
	corsmiddleware "github.com/rukundo0023/empowerhered-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/rukundo0023/empowerhered-sub000/pkg/middleware/requestid"
)

type routeDeps struct {
	auth         middleware.TokenValidator
	metrics      *service.MetricsService
	db           handler.Pinger
	authH        *handler.AuthHandler
	bookingH     *handler.BookingHandler
	mentorshipH  *handler.MentorshipHandler
	quizH        *handler.QuizHandler
	certificateH *handler.CertificateHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(d.metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	ops := handler.NewMetricsHandler(d.metrics, d.db)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	api := r.Group(prefix)
	authn := middleware.JWT(d.auth)

	auth := api.Group("/auth")
	auth.POST("/register", d.authH.Register)
	auth.POST("/login", d.authH.Login)
	auth.GET("/me", authn, d.authH.Me)

	mentors := api.Group("/mentors")
	mentors.POST("/bookings", d.bookingH.Submit)

	mentorOnly := middleware.RequireRoles(models.RoleMentor)
	bookings := mentors.Group("/bookings", authn)
	bookings.GET("/pending", mentorOnly, d.bookingH.ListPending)
	bookings.GET("/mine", d.bookingH.ListMine)
	bookings.PUT("/:id/accept", mentorOnly, d.bookingH.Accept)
	bookings.PUT("/:id/reject", mentorOnly, d.bookingH.Reject)
	bookings.PUT("/:id/feedback", d.bookingH.Feedback)

	mentorships := mentors.Group("/mentorships", authn)
	mentorships.GET("", middleware.RequireRoles(models.RoleMentor, models.RoleStudent), d.mentorshipH.List)
	mentorships.GET("/:id", d.mentorshipH.Get)
	mentorships.PUT("/:id/cancel", d.mentorshipH.Cancel)
	mentorships.POST("/:id/meetings", mentorOnly, d.mentorshipH.ScheduleMeeting)
	mentorships.GET("/:id/meetings", d.mentorshipH.ListMeetings)
	mentorships.POST("/:id/goals", d.mentorshipH.AddGoal)
	mentorships.PUT("/:id/progress", mentorOnly, d.mentorshipH.UpdateProgress)
	mentorships.POST("/:id/feedback", d.mentorshipH.AddFeedback)

	quizzes := api.Group("/quizzes", authn)
	quizzes.POST("", middleware.RequireRoles(models.RoleInstructor), d.quizH.Create)
	quizzes.GET("/:id", d.quizH.Get)
	quizzes.POST("/:id/submit", d.quizH.Submit)
	quizzes.GET("/:id/result", d.quizH.Result)
	quizzes.POST("/:id/certificate", d.quizH.IssueCertificate)

	api.GET("/certificates/download/:token", d.certificateH.Download)

	return r
}
