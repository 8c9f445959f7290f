package main

import (
	blockhandler "innkeep/internal/blocks/handler"
	blockrepository "innkeep/internal/blocks/repository"
	blockservice "innkeep/internal/blocks/service"
	blockvalidator "innkeep/internal/blocks/validator"

	"innkeep/internal/availability"
	catalogrepository "innkeep/internal/catalog/repository"
	policyrepository "innkeep/internal/policies/repository"
	"innkeep/internal/pricing"
	"innkeep/internal/refund"
	"innkeep/internal/reservations/handler"
	"innkeep/internal/reservations/repository"
	"innkeep/internal/reservations/service"
	"innkeep/internal/reservations/validator"

	"innkeep/pkg/app"
	"innkeep/pkg/audit"
	"innkeep/pkg/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Reservations service")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	auditPublisher := initAudit(cfg)
	defer func() {
		if err := auditPublisher.Close(); err != nil {
			cfg.Log.Error("Failed to close audit publisher", "error", err)
		}
	}()

	reservationService, blockService := initServices(cfg, auditPublisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		handler.NewReservationHandler(reservationService, cfg.Log),
		blockhandler.NewBlockHandler(blockService, cfg.Log),
	)
	serverApp.Run()
}

func initAudit(cfg *config.Config) audit.Publisher {
	publisher, err := audit.NewPublisher(audit.Config{
		Brokers:  cfg.AuditBrokers,
		Topic:    cfg.AuditTopic,
		DLQTopic: cfg.AuditDLQTopic,
		Source:   ServiceName,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize audit publisher", "error", err)
	}
	return publisher
}

func initServices(cfg *config.Config, auditPublisher audit.Publisher) (service.ReservationService, blockservice.BlockService) {
	catalogRepo := catalogrepository.NewMongoCatalogRepository(cfg)
	policyRepo := policyrepository.NewMongoPolicyRepository(cfg)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewReservationLockRepository(cfg)
	blockRepo := blockrepository.NewMongoBlockRepository(cfg)

	checker := availability.NewChecker(reservationRepo, blockRepo, cfg.Log)
	resolver := pricing.NewResolver(catalogRepo, cfg)
	calculator := refund.NewCalculator(catalogRepo, policyRepo, cfg.Log)

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		catalogRepo,
		checker,
		resolver,
		calculator,
		validator.NewReservationValidator(cfg.MaxStayNights, cfg.Log),
		auditPublisher,
		cfg,
	)

	blockService := blockservice.NewBlockService(
		blockRepo,
		blockvalidator.NewBlockValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Reservation services initialized", "database", cfg.MongoDatabaseName)
	return reservationService, blockService
}
