package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chorequest/internal/ai"
	"chorequest/internal/config"
	"chorequest/internal/database"
	"chorequest/internal/handlers"
	"chorequest/internal/leaderboard"
	"chorequest/internal/repository"
	"chorequest/internal/security"
	"chorequest/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	handlers.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)
	handlers.CompleteStep(handlers.StepDatabase)

	// Run migrations
	handlers.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")
	handlers.CompleteStep(handlers.StepMigrations)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Optional collaborators
	handlers.SetCurrentStep(handlers.StepServices)
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		log.Printf("Warning: Failed to initialize email service: %v", err)
		emailService, _ = service.NewEmailService("", "", "", "", false)
	}

	notificationService := service.NewNotificationService(
		repository.NewPushRepository(db),
		repository.NewUserRepository(db),
		cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject,
	)

	var scoreBoard service.ScoreBoard
	board, err := leaderboard.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	switch {
	case err != nil:
		log.Printf("Warning: Quiz leaderboard disabled: %v", err)
	case board == nil:
		log.Println("Quiz leaderboard disabled: REDIS_ADDR not configured")
	default:
		log.Printf("Quiz leaderboard enabled: redis=%s", cfg.RedisAddr)
		scoreBoard = board
		defer board.Close()
	}

	assistant := ai.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)

	// Initialize services
	profileTokens := security.NewProfileTokens(cfg.ProfileTokenSecret, cfg.SessionDuration)
	authService := service.NewAuthService(db, profileTokens, cfg.SessionDuration, emailService)
	familyService := service.NewFamilyService(db)
	ledgerService := service.NewLedgerService(db, rules.PointsPerCurrencyUnit, emailService, notificationService)
	taskService := service.NewTaskService(db, rules.DefaultPenalty, notificationService)
	allowanceService := service.NewAllowanceService(db, notificationService)
	petService := service.NewPetService(db, rules.Pet)
	quizService := service.NewQuizService(db, rules.Quiz, scoreBoard)
	goalService := service.NewGoalService(db)
	calendarService := service.NewCalendarService(db)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			FetchUser: handlers.GoogleUserInfo,
		},
	}

	// Initialize handlers
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	middleware := handlers.NewMiddleware(authService, csrf, security.NewRateLimiter(10, time.Minute))
	authHandler := handlers.NewAuthHandler(authService, familyService, csrf, oauthProviders, cfg.OAuthRedirectBaseURL)
	familyHandler := handlers.NewFamilyHandler(familyService)
	taskHandler := handlers.NewTaskHandler(taskService)
	rewardHandler := handlers.NewRewardHandler(ledgerService, allowanceService)
	petHandler := handlers.NewPetHandler(petService)
	quizHandler := handlers.NewQuizHandler(quizService)
	goalHandler := handlers.NewGoalHandler(goalService, calendarService)
	assistHandler := handlers.NewAssistHandler(notificationService, assistant, taskService, familyService)
	handlers.CompleteStep(handlers.StepServices)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handlers.Health)

	// Public routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/join", middleware.RateLimit(authHandler.Join))
	mux.HandleFunc("GET /api/auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /api/auth/{provider}/callback", authHandler.OAuthCallback)

	// Family session routes
	mux.HandleFunc("POST /api/auth/logout", middleware.Session(authHandler.Logout))
	mux.HandleFunc("GET /api/session", middleware.Session(authHandler.Session))
	mux.HandleFunc("POST /api/profiles/{id}/select", middleware.Session(middleware.RateLimit(authHandler.SelectProfile)))
	mux.HandleFunc("POST /api/profiles/deselect", middleware.Session(authHandler.DeselectProfile))

	// Profile routes
	mux.HandleFunc("GET /api/me", middleware.Profile(authHandler.Me))
	mux.HandleFunc("PUT /api/family", middleware.Parent(familyHandler.RenameFamily))
	mux.HandleFunc("GET /api/profiles", middleware.Profile(familyHandler.ListProfiles))
	mux.HandleFunc("POST /api/profiles", middleware.Parent(familyHandler.CreateProfile))
	mux.HandleFunc("GET /api/profiles/{id}", middleware.Profile(familyHandler.GetProfile))
	mux.HandleFunc("PUT /api/profiles/{id}", middleware.Profile(familyHandler.UpdateProfile))
	mux.HandleFunc("PUT /api/profiles/{id}/pin", middleware.Profile(familyHandler.SetPIN))
	mux.HandleFunc("DELETE /api/profiles/{id}", middleware.Parent(familyHandler.DeleteProfile))

	// Task routes
	mux.HandleFunc("GET /api/tasks", middleware.Profile(taskHandler.ListTasks))
	mux.HandleFunc("GET /api/tasks/pending", middleware.Parent(taskHandler.PendingApproval))
	mux.HandleFunc("POST /api/tasks", middleware.Parent(taskHandler.CreateTask))
	mux.HandleFunc("POST /api/tasks/extra", middleware.Profile(taskHandler.CreateExtraTask))
	mux.HandleFunc("PUT /api/tasks/{id}", middleware.Parent(taskHandler.UpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", middleware.Parent(taskHandler.DeleteTask))
	mux.HandleFunc("POST /api/tasks/{id}/submit", middleware.Profile(taskHandler.Submit))
	mux.HandleFunc("POST /api/tasks/{id}/approve", middleware.Parent(taskHandler.Approve))
	mux.HandleFunc("POST /api/tasks/{id}/reject", middleware.Parent(taskHandler.Reject))

	// Reward routes
	mux.HandleFunc("POST /api/children/{childID}/credit", middleware.Parent(rewardHandler.Credit))
	mux.HandleFunc("POST /api/children/{childID}/convert", middleware.Profile(rewardHandler.Convert))
	mux.HandleFunc("POST /api/children/{childID}/payout", middleware.Parent(rewardHandler.Payout))
	mux.HandleFunc("GET /api/payouts", middleware.Profile(rewardHandler.Payouts))
	mux.HandleFunc("GET /api/children/{childID}/allowance", middleware.Profile(rewardHandler.Allowance))
	mux.HandleFunc("PUT /api/children/{childID}/allowance", middleware.Parent(rewardHandler.UpdateAllowance))

	// Pet routes
	mux.HandleFunc("GET /api/pets", middleware.Profile(petHandler.ListPets))
	mux.HandleFunc("GET /api/children/{childID}/pet", middleware.Profile(petHandler.GetPet))
	mux.HandleFunc("POST /api/children/{childID}/pet", middleware.Profile(petHandler.Adopt))
	mux.HandleFunc("PUT /api/children/{childID}/pet", middleware.Profile(petHandler.Rename))
	mux.HandleFunc("POST /api/children/{childID}/pet/feed", middleware.Profile(petHandler.Feed))
	mux.HandleFunc("POST /api/children/{childID}/pet/play", middleware.Profile(petHandler.Play))

	// Quiz routes
	mux.HandleFunc("POST /api/quiz", middleware.Profile(quizHandler.Start))
	mux.HandleFunc("GET /api/quiz", middleware.Profile(quizHandler.Current))
	mux.HandleFunc("POST /api/quiz/answer", middleware.Profile(quizHandler.Answer))
	mux.HandleFunc("POST /api/quiz/finish", middleware.Profile(quizHandler.Finish))
	mux.HandleFunc("GET /api/quiz/results", middleware.Profile(quizHandler.Results))
	mux.HandleFunc("GET /api/quiz/leaderboard/{category}", middleware.Profile(quizHandler.Leaderboard))

	// Goal and calendar routes
	mux.HandleFunc("GET /api/goals", middleware.Profile(goalHandler.ListGoals))
	mux.HandleFunc("POST /api/children/{childID}/goals", middleware.Profile(goalHandler.CreateGoal))
	mux.HandleFunc("PUT /api/goals/{id}", middleware.Profile(goalHandler.UpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.Profile(goalHandler.DeleteGoal))
	mux.HandleFunc("GET /api/calendar", middleware.Profile(goalHandler.ListEvents))
	mux.HandleFunc("POST /api/children/{childID}/calendar", middleware.Parent(goalHandler.CreateEvent))
	mux.HandleFunc("DELETE /api/calendar/{id}", middleware.Parent(goalHandler.DeleteEvent))

	// Push and AI routes
	mux.HandleFunc("GET /api/push/key", assistHandler.PushKey)
	mux.HandleFunc("POST /api/push/subscribe", middleware.Profile(assistHandler.Subscribe))
	mux.HandleFunc("POST /api/push/unsubscribe", middleware.Profile(assistHandler.Unsubscribe))
	mux.HandleFunc("GET /api/ai/suggestions", middleware.Parent(assistHandler.Suggestions))
	mux.HandleFunc("GET /api/ai/motivation", middleware.Profile(assistHandler.Motivation))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background workers
	handlers.SetCurrentStep(handlers.StepWorkers)
	go cleanupExpiredSessions(ctx, authService)
	go processAllowances(ctx, allowanceService, cfg.AllowanceWorkerInterval)
	handlers.CompleteStep(handlers.StepWorkers)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		handlers.MarkReady()
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredSessions(); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			} else {
				log.Println("Expired sessions cleaned up")
			}
		}
	}
}

// processAllowances pays out due allowances once at startup and then on every tick
func processAllowances(ctx context.Context, allowanceService *service.AllowanceService, interval time.Duration) {
	run := func() {
		paid, err := allowanceService.ProcessDuePayouts(ctx)
		if err != nil {
			log.Printf("Error processing allowances: %v", err)
			return
		}
		if paid > 0 {
			log.Printf("Paid allowance to %d children", paid)
		}
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
