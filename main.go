package main

import (
	"context"
	"log"
	"strings"

	"github.com/sellyourtackle/tackle-backend/cart"
	"github.com/sellyourtackle/tackle-backend/config"
	"github.com/sellyourtackle/tackle-backend/controllers"
	"github.com/sellyourtackle/tackle-backend/database"
	"github.com/sellyourtackle/tackle-backend/email"
	"github.com/sellyourtackle/tackle-backend/kafka"
	"github.com/sellyourtackle/tackle-backend/middleware"
	"github.com/sellyourtackle/tackle-backend/repository"
	"github.com/sellyourtackle/tackle-backend/routes"
	"github.com/sellyourtackle/tackle-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[Tackle] ❌ Failed to load config:", err)
	}

	// Connect DB
	if err := database.Connect(cfg); err != nil {
		log.Fatal("[Tackle] ❌ Failed to connect to DB:", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatal("[Tackle] ❌ Failed to migrate models:", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[Tackle] ❌ Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Redis-backed session cart
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	cartStore := cart.NewRedisStore(redisClient, cfg.CartTTL)

	// Repositories
	userRepo := repository.NewGormUserRepo(database.DB)
	productRepo := repository.NewGormProductRepo(database.DB)
	orderRepo := repository.NewGormOrderRepo(database.DB)
	webhookRepo := repository.NewGormWebhookRepo(database.DB)
	payoutRepo := repository.NewGormPayoutRepo(database.DB)

	// Stripe + Kafka setup
	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey, cfg.FrontendURL)
	orderProducer := kafka.NewOrderEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderEventsTopic)
	defer orderProducer.Close()

	// Outbound email is optional; order emails are skipped when unset.
	var sender services.EmailSender
	if smtp, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass); err != nil {
		logger.Warn("SMTP not configured, order emails disabled", zap.Error(err))
	} else {
		sender = smtp
	}

	checkoutSvc := services.NewCheckoutService(
		userRepo,
		productRepo,
		orderRepo,
		cartStore,
		stripeSvc,
		logger,
		cfg.Currency,
		cfg.CommissionRate,
		cfg.FrontendURL+"/checkout/complete",
	)
	webhookSvc := services.NewWebhookService(orderRepo, userRepo, webhookRepo, orderProducer, sender, logger, cfg.Currency)
	payoutSvc := services.NewPayoutService(payoutRepo, stripeSvc, logger, cfg.Currency)

	// Periodic payout sweep for settled sellers
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go payoutSvc.Run(sweepCtx, cfg.PayoutInterval)

	// HTTP server
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	ctrl := routes.Controllers{
		Cart:     controllers.NewCartController(cartStore, productRepo, logger),
		Checkout: controllers.NewCheckoutController(checkoutSvc, userRepo, logger),
		Webhook:  controllers.NewWebhookController(stripeSvc, webhookSvc, webhookRepo, logger),
		Orders:   controllers.NewOrderController(orderRepo, userRepo, stripeSvc, orderProducer, sender, cfg.Currency, logger),
		Products: controllers.NewProductController(productRepo, logger),
		Seller:   controllers.NewSellerController(userRepo, stripeSvc, cfg.FrontendURL, logger),
		Admin:    controllers.NewAdminController(userRepo, webhookRepo, payoutSvc, logger),
	}
	routes.Register(r, ctrl, []byte(cfg.JWTSecret), []string{cfg.FrontendURL})

	log.Println("[Tackle] ✅ Running on port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[Tackle] ❌ Server failed:", err)
	}
}
