package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads variables from a .env file
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/parking-lot/internal/cache"      // Redis-backed active rate cache
	"github.com/iliyamo/parking-lot/internal/config"     // Internal config loader
	"github.com/iliyamo/parking-lot/internal/database"   // MySQL connection helper
	"github.com/iliyamo/parking-lot/internal/handler"    // HTTP handlers
	"github.com/iliyamo/parking-lot/internal/queue"      // AMQP notification publisher and consumer
	"github.com/iliyamo/parking-lot/internal/repository" // Data access layer
	"github.com/iliyamo/parking-lot/internal/router"     // Internal router setup
	"github.com/iliyamo/parking-lot/internal/service"    // Domain services
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; a nil client means the active-rate cache
	// degrades to database reads.
	rdb := config.NewRedisClient()
	rateCache := cache.NewRateCache(rdb, cfg.RateCacheTTL)

	tickets := repository.NewTicketRepo(db)
	rates := repository.NewRateRepo(db)
	passes := repository.NewPassRepo(db)
	shifts := repository.NewShiftRepo(db)
	operators := repository.NewOperatorRepo(db)

	notifier := queue.NewPublisher(cfg.RabbitURL)
	go queue.StartNotificationConsumer(cfg.RabbitURL) // Drains the queues into the notification log

	rateSvc := service.NewRateService(rates, tickets, rateCache)
	ticketSvc := service.NewTicketService(tickets, operators, passes, rateSvc)
	passSvc := service.NewPassService(passes, tickets, notifier, cfg.PassPriceCents)
	shiftSvc := service.NewShiftService(shifts, operators, tickets)
	operatorSvc := service.NewOperatorService(operators, shifts)
	reconcileSvc := service.NewReconcileService(tickets, rateSvc)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterTickets(e, handler.NewTicketHandler(ticketSvc))
	router.RegisterRates(e, handler.NewRateHandler(rateSvc))
	router.RegisterPasses(e, handler.NewPassHandler(passSvc, cfg.PassExpiryWarnDays))
	router.RegisterOperators(e, handler.NewOperatorHandler(operatorSvc))
	router.RegisterShifts(e, handler.NewShiftHandler(shiftSvc))
	router.RegisterReconcile(e, handler.NewReconcileHandler(reconcileSvc))

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
