package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/Kingsley-codes/we-listen/config"
	"github.com/Kingsley-codes/we-listen/internal/application"
	"github.com/Kingsley-codes/we-listen/internal/handler"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/cache"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/events"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/mq"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/paystack"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/persistence/db"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/persistence/repository"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/push"
	"github.com/Kingsley-codes/we-listen/internal/infrastructure/registry"
	"github.com/Kingsley-codes/we-listen/internal/middleware"
	"github.com/Kingsley-codes/we-listen/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.InitGorm(&cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to init postgres: %v", err)
	}

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("failed to init redis: %v", err)
	}

	userRepo := repository.NewUserRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)
	therapistRepo := repository.NewTherapistRepository(gormDB)
	paymentRepo := repository.NewPaymentRepository(gormDB)
	referralRepo := repository.NewReferralRepository(gormDB)

	publisher := events.NewRedisPublisher(redisClient)
	sender := push.NewSender(therapistRepo, &cfg.Push)

	producer, err := mq.InitProducer(cfg)
	if err != nil {
		log.Fatalf("failed to init rocketmq producer: %v", err)
	}
	notifier := push.NewNotifier(producer, sender)

	var queue application.CreditQueue
	if producer != nil {
		queue = producer
	}

	clock := application.SystemClock{}
	ledger := application.NewCreditLedger(userRepo)
	sessionSvc := application.NewSessionService(sessionRepo, userRepo, messageRepo, publisher, notifier, clock)
	authSvc := application.NewAuthService(
		userRepo, therapistRepo, referralRepo,
		cfg.Auth.JwtSecret,
		time.Duration(cfg.Auth.ExpireH)*time.Hour,
		cfg.Session.WeeklyFreeCreditSeconds,
		clock,
	)
	gateway := paystack.NewClient(&cfg.Paystack)
	paymentSvc := application.NewPaymentService(paymentRepo, sessionRepo, ledger, gateway, queue, clock)

	consumer, err := mq.InitConsumer(cfg, sender, paymentSvc)
	if err != nil {
		log.Fatalf("failed to init rocketmq consumer: %v", err)
	}

	if cfg.Worker.Enabled {
		reconciler := worker.NewReconciler(
			sessionRepo, ledger, publisher, clock,
			time.Duration(cfg.Session.TherapistDelaySec)*time.Second,
			time.Duration(cfg.Session.UserInactiveSec)*time.Second,
			time.Duration(cfg.Worker.IntervalMS)*time.Millisecond,
		)
		go reconciler.Run(ctx)
	}
	weeklyReset := worker.NewWeeklyReset(userRepo, cfg.Session.WeeklyFreeCreditSeconds, clock)
	go weeklyReset.Run(ctx)

	router := buildRouter(cfg, redisClient, authSvc, sessionSvc, paymentSvc, userRepo, therapistRepo, gateway)

	serviceManager, err := registry.NewServiceManager(&cfg.Consul, cfg.ServerName, cfg.Port)
	if err != nil {
		log.Printf("[WARN] consul registration skipped: %v", err)
		serviceManager = nil
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}
	go func() {
		log.Printf("%s listening on :%d", cfg.ServerName, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	if serviceManager != nil {
		serviceManager.Stop()
	}
	if consumer != nil {
		if err := consumer.Shutdown(); err != nil {
			log.Printf("consumer shutdown: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func buildRouter(
	cfg *config.AppConfig,
	redisClient *redis.Client,
	authSvc *application.AuthService,
	sessionSvc *application.SessionService,
	paymentSvc *application.PaymentService,
	userRepo *repository.UserRepository,
	therapistRepo *repository.TherapistRepository,
	gateway *paystack.Client,
) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies([]string{"127.0.0.1/32"})
	if cfg.Redis.RateLimitQPS > 0 {
		r.Use(middleware.RateLimit(redisClient, cfg.Redis.RateLimitQPS))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"service":   cfg.ServerName,
			"timestamp": time.Now(),
		})
	})

	authHandler := handler.NewAuthHandler(authSvc)
	chatHandler := handler.NewChatHandler(sessionSvc)
	therapistHandler := handler.NewTherapistHandler(sessionSvc, therapistRepo)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, userRepo, gateway)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignupUser)
		auth.POST("/login", authHandler.LoginUser)
		auth.POST("/therapist/signup", authHandler.SignupTherapist)
		auth.POST("/therapist/login", authHandler.LoginTherapist)
	}

	chat := r.Group("/chat")
	chat.Use(middleware.JwtAuth(cfg.Auth.JwtSecret, "user_id"))
	{
		chat.POST("/start", chatHandler.StartSession)
		chat.GET("/session", chatHandler.GetSession)
		chat.POST("/message", chatHandler.SendMessage)
		chat.POST("/pause", chatHandler.PauseSession)
		chat.GET("/messages/:sessionId", chatHandler.GetHistory)
	}

	therapist := r.Group("/therapist")
	therapist.Use(middleware.JwtAuth(cfg.Auth.JwtSecret, "therapist_id"))
	{
		therapist.POST("/reply", therapistHandler.Reply)
		therapist.GET("/sessions", therapistHandler.ListSessions)
		therapist.GET("/messages/:sessionId", therapistHandler.GetHistory)
		therapist.POST("/subscribe", therapistHandler.Subscribe)
	}

	payments := r.Group("/payments")
	payments.POST("/webhook", paymentHandler.Webhook)
	authedPayments := payments.Group("")
	authedPayments.Use(middleware.JwtAuth(cfg.Auth.JwtSecret, "user_id"))
	{
		authedPayments.POST("/initialize", paymentHandler.Initialize)
		authedPayments.GET("/verify/:reference", paymentHandler.Verify)
	}

	return r
}
