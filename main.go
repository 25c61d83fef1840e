package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adarsh0311/shopsphere-backend/auth"
	"github.com/Adarsh0311/shopsphere-backend/config"
	"github.com/Adarsh0311/shopsphere-backend/database"
	"github.com/Adarsh0311/shopsphere-backend/notify"
	"github.com/Adarsh0311/shopsphere-backend/payment"
	"github.com/Adarsh0311/shopsphere-backend/routes"
	"github.com/Adarsh0311/shopsphere-backend/services"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}
	if err := database.Seed(db, database.AdminSeed{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	// Notification channels
	hub := notify.NewHub()
	dispatchers := notify.Multi{hub}

	var sqsClient *sqs.Client
	var snsClient *sns.Client
	if cfg.SQSOrderQueueName != "" || cfg.OrderConsumerEnabled {
		sqsClient, snsClient, err = notify.NewAWSClients(ctx, cfg.AWSRegion)
		if err != nil {
			log.Fatalf("❌ AWS setup failed: %v", err)
		}
	}
	if cfg.SQSOrderQueueName != "" {
		dispatchers = append(dispatchers, notify.NewSQSDispatcher(sqsClient, cfg.SQSOrderQueueName))
		log.Printf("📨 Order confirmations go to SQS queue %s", cfg.SQSOrderQueueName)
	}
	outbox := notify.NewOutbox(db, dispatchers, cfg.OutboxMaxAttempts)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiration)
	deps := routes.Deps{
		Tokens:  tokens,
		Users:   services.NewUserService(db, tokens),
		Catalog: services.NewCatalogService(db),
		Carts:   services.NewCartService(db),
		Checkout: services.NewCheckoutService(database.UnitOfWorkFor(cfg, db), newGateway(cfg), outbox, services.CheckoutConfig{
			Currency:        cfg.PaymentCurrency,
			MinorUnitDigits: cfg.PaymentMinorUnitDigits,
			PaymentTimeout:  cfg.PaymentTimeout,
		}),
		Orders:             services.NewOrderService(db, cfg.StrictOrderTransitions),
		Admin:              services.NewAdminService(db, cfg.LowStockThreshold),
		Outbox:             outbox,
		Hub:                hub,
		LowStockThreshold:  cfg.LowStockThreshold,
		TelrWebhookEnabled: cfg.TelrWebhookEnabled(),
		TelrWebhookSecret:  cfg.TelrWebhookKey,
		TelrSandbox:        cfg.TelrTestMode(),
	}

	// Background workers
	go outbox.Run(ctx, cfg.OutboxInterval)
	if cfg.OrderConsumerEnabled {
		consumer := notify.NewConsumer(sqsClient, snsClient, notify.ConsumerConfig{
			QueueName: cfg.SQSOrderQueueName,
			TopicARN:  cfg.SNSOrderConfirmationTopicARN,
			DLQURL:    cfg.SQSOrderDLQURL,
			WaitTime:  20,
			BatchSize: 10,
		})
		go consumer.Run(ctx)
	}

	// Gin setup
	r := gin.Default()

	// Spreadsheet imports
	r.MaxMultipartMemory = 32 << 20

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, deps)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("🚀 Server running on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Graceful shutdown failed: %v", err)
	}
}

func newGateway(cfg config.Config) payment.Gateway {
	switch cfg.PaymentProvider {
	case "telr":
		log.Println("💳 Payments via Telr hosted page")
		return payment.NewTelr(payment.TelrConfig{
			StoreID:    cfg.TelrStoreID,
			AuthKey:    cfg.TelrAuthKey,
			APIURL:     cfg.TelrAPIURL,
			TestMode:   cfg.TelrTestMode(),
			SuccessURL: cfg.TelrSuccessURL,
			FailureURL: cfg.TelrFailureURL,
			CancelURL:  cfg.TelrCancelURL,
		}, &http.Client{Timeout: cfg.PaymentTimeout})
	case "stripe":
		log.Println("💳 Payments via Stripe")
		return payment.NewStripe(cfg.StripeSecretKey)
	default:
		log.Println("🧪 Payments are simulated")
		return payment.NewSimulated()
	}
}
