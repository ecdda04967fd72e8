package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/feedbackflow/backend/auth"
	"github.com/feedbackflow/backend/config"
	"github.com/feedbackflow/backend/db"
	"github.com/feedbackflow/backend/handlers"
	"github.com/feedbackflow/backend/logging"
	"github.com/feedbackflow/backend/repository"
	"github.com/feedbackflow/backend/services"
)

func main() {
	cfg := config.Load()

	logger, err := logging.Init("logs")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db.InitDB(cfg.DatabaseURL)
	gormDB := db.GetDB()

	surveyRepo := repository.NewSurveyRepository(gormDB)
	answerRepo := repository.NewAnswerRepository(gormDB)
	responseRepo := repository.NewResponseRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	tokenRepo := repository.NewTokenRepository(gormDB)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	mailer := services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, logger)

	resultsService := services.NewSurveyService(surveyRepo, answerRepo, logger)
	adminService := services.NewSurveyAdminService(surveyRepo, answerRepo, logger)
	responseService := services.NewResponseService(surveyRepo, answerRepo, responseRepo, logger)
	analyticsService := services.NewAnalyticsService(surveyRepo, answerRepo, responseRepo, userRepo, logger)
	exportService := services.NewExportService(resultsService, logger)
	authService := services.NewAuthService(userRepo, tokenRepo, jwtManager, mailer, cfg.ResetTokenTTL, cfg.FrontendURL, logger)
	userService := services.NewUserService(surveyRepo, answerRepo, responseRepo, logger)

	cleanup := services.NewTokenCleanup(tokenRepo, time.Hour, logger)
	cleanup.Start()
	defer cleanup.Stop()

	authMiddleware := auth.NewMiddleware(jwtManager, tokenRepo, logger)
	loginLimiter := handlers.NewRateLimiter(1, 5)
	defer loginLimiter.Stop()
	submitLimiter := handlers.NewRateLimiter(2, 10)
	defer submitLimiter.Stop()

	resultsHandler := handlers.NewResultsHandler(resultsService, logger)
	surveyHandler := handlers.NewSurveyHandler(adminService, logger)
	responseHandler := handlers.NewResponseHandler(responseService, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, logger)
	exportHandler := handlers.NewExportHandler(exportService, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	// Public auth routes.
	api.Handle("/auth/signup", loginLimiter.Limit(http.HandlerFunc(authHandler.Signup))).Methods("POST")
	api.Handle("/auth/login", loginLimiter.Limit(http.HandlerFunc(authHandler.Login))).Methods("POST")
	api.Handle("/auth/forgot-password", loginLimiter.Limit(http.HandlerFunc(authHandler.ForgotPassword))).Methods("POST")
	api.HandleFunc("/auth/reset-password", authHandler.ResetPassword).Methods("POST")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	api.Handle("/auth/me", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods("GET")

	if cfg.GoogleOauth != nil {
		google := auth.NewGoogleAuth(cfg.GoogleOauth, userRepo, jwtManager, cfg.FrontendURL, logger)
		router.HandleFunc("/auth/google/login", google.Login).Methods("GET")
		router.HandleFunc("/auth/google/callback", google.Callback).Methods("GET")
	}

	// Submission is open to anonymous respondents; identity is attached
	// when a valid token is present.
	api.Handle("/surveys/{id:[0-9]+}/responses",
		submitLimiter.Limit(authMiddleware.OptionalAuth(http.HandlerFunc(responseHandler.Submit)))).Methods("POST")

	// Participant routes. Fetching a survey with its questions is open
	// so respondents can fill it without an account.
	api.HandleFunc("/surveys/{id:[0-9]+}", surveyHandler.Get).Methods("GET")
	api.Handle("/users/me/dashboard", authMiddleware.RequireAuth(http.HandlerFunc(userHandler.Dashboard))).Methods("GET")
	api.Handle("/users/me/surveys/{id:[0-9]+}/response", authMiddleware.RequireAuth(http.HandlerFunc(userHandler.MyResponse))).Methods("GET")

	// Admin routes.
	admin := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(authMiddleware.RequireAdmin(h))
	}
	api.Handle("/surveys", admin(surveyHandler.Create)).Methods("POST")
	api.Handle("/surveys", admin(surveyHandler.List)).Methods("GET")
	api.Handle("/surveys/{id:[0-9]+}", admin(surveyHandler.Update)).Methods("PUT")
	api.Handle("/surveys/{id:[0-9]+}", admin(surveyHandler.Delete)).Methods("DELETE")
	api.Handle("/surveys/{id:[0-9]+}/activate", admin(surveyHandler.Activate)).Methods("POST")
	api.Handle("/surveys/{id:[0-9]+}/close", admin(surveyHandler.Close)).Methods("POST")
	api.Handle("/surveys/{id:[0-9]+}/results", admin(resultsHandler.GetSurveyResults)).Methods("GET")
	api.Handle("/surveys/{id:[0-9]+}/export", admin(exportHandler.ExportCSV)).Methods("GET")
	api.Handle("/analytics/trends", admin(analyticsHandler.ResponseTrends)).Methods("GET")
	api.Handle("/analytics/overview", admin(analyticsHandler.Overview)).Methods("GET")
	api.Handle("/analytics/performance", admin(analyticsHandler.SurveyPerformance)).Methods("GET")
	api.Handle("/analytics/recent", admin(analyticsHandler.RecentResponses)).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	addr := ":" + cfg.Port
	logger.Info("server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
