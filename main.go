package main

import (
	"log"
	"strings"

	"pos-service/config"
	"pos-service/controllers"
	"pos-service/database"
	"pos-service/kafka"
	"pos-service/logger"
	"pos-service/models"
	"pos-service/repository"
	"pos-service/routes"
	"pos-service/sender"
	"pos-service/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[POSService] Failed to load config: ", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal("[POSService] Failed to connect to DB: ", err)
	}
	if err := db.AutoMigrate(&models.CheckoutTransaction{}, &models.TransactionLineItem{}); err != nil {
		log.Fatal("[POSService] Failed to migrate transaction models: ", err)
	}

	redisClient := database.NewRedisClient(cfg.RedisURL)

	cartStore := repository.NewRedisCartStore(redisClient, cfg.CartTTL)
	txRepo := repository.NewGormTransactionRepo(db)

	catalog := services.NewHTTPCatalogClient(cfg.CatalogBaseURL)
	staff := services.NewHTTPStaffClient(cfg.StaffBaseURL)
	gateway := services.NewMobileMoneyClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayCallbackURL)

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	receiptProducer := kafka.NewProducer(brokers, cfg.ReceiptTopic)
	defer receiptProducer.Close()

	notifier := sender.NewLogNotifier(logger.Log)

	var sms sender.SMSSender
	if smsSender, err := sender.NewHTTPSMSSender(cfg.SMSBaseURL, cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSFromNumber); err != nil {
		logger.Log.Warn("SMS sender disabled", zap.Error(err))
	} else {
		sms = smsSender
	}

	cartSvc := services.NewCartService(cartStore, catalog, logger.Log)
	checkoutSvc := services.NewCheckoutService(cartStore, txRepo, gateway, notifier, receiptProducer, sms, logger.Log)

	resultConsumer := services.NewPaymentResultConsumer(
		brokers, cfg.PaymentResultTopic, cfg.ConsumerGroupID, checkoutSvc, logger.Log)
	go resultConsumer.Start()
	defer resultConsumer.Close()

	reconciler := services.NewReconciler(txRepo, checkoutSvc, notifier, cfg.ProcessingMaxAge, logger.Log)
	reconciler.StartScheduler()
	defer reconciler.Stop()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.RequestLogger(), gin.Recovery())

	pc := controllers.NewPOSController(cartSvc, checkoutSvc, txRepo, catalog, staff, logger.Log)
	wc := controllers.NewWebhookController(resultConsumer, logger.Log)
	routes.RegisterRoutes(r, pc, wc)

	logger.Log.Info("POS service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[POSService] Server failed: ", err)
	}
}
