package main

import (
	"reservio/internal/reservations/events"
	"reservio/internal/reservations/handler"
	"reservio/internal/reservations/repository"
	"reservio/internal/reservations/service"
	"reservio/internal/reservations/validator"
	"reservio/pkg/app"
	"reservio/pkg/config"
	"reservio/pkg/kafka"
	kafka_config "reservio/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	var publisher events.Publisher
	if producer := initProducer(cfg); producer != nil {
		kafkaPublisher := events.NewKafkaPublisher(producer, cfg.Log)
		publisher = kafkaPublisher
		defer func() {
			// Drains in-flight event publishes before the producer closes.
			if err := kafkaPublisher.Close(); err != nil {
				cfg.Log.Warn("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	cfg.Log.Info("Starting Reservations service")
	bookingService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewMongoSlotLockRepository(cfg)
	checker := service.NewConflictChecker(bookingRepo, cfg)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		bookingValidator,
		checker,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// initProducer builds the event stream producer when enabled. The service runs
// without it: events are best effort.
func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Invalid Kafka configuration, event publishing disabled", "error", err)
		return nil
	}
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka event publishing disabled")
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, events.Topic)
	if err != nil {
		cfg.Log.Warn("Failed to create Kafka producer, event publishing disabled", "error", err)
		return nil
	}

	cfg.Log.Info("Kafka event publishing enabled", "topic", events.Topic, "brokers", kafkaCfg.Brokers)
	return producer
}
