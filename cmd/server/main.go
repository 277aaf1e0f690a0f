package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"warehouse-backend/internal/activity"
	"warehouse-backend/internal/apperrors"
	"warehouse-backend/internal/auth"
	"warehouse-backend/internal/billing"
	"warehouse-backend/internal/config"
	"warehouse-backend/internal/database"
	"warehouse-backend/internal/export"
	"warehouse-backend/internal/ledger"
	"warehouse-backend/internal/models"
	"warehouse-backend/internal/notify"
	"warehouse-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	var ae *apperrors.Error
	if errors.As(err, &ae) {
		status := fiber.StatusInternalServerError
		switch ae.Kind {
		case apperrors.KindValidation:
			status = fiber.StatusBadRequest
		case apperrors.KindNotFound:
			status = fiber.StatusNotFound
		}
		if ae.Kind == apperrors.KindStorage {
			log.Error().Err(ae).Msg("storage failure")
		}
		return c.Status(status).JSON(fiber.Map{"error": ae.Message})
	}

	log.Error().Err(err).Msg("unexpected error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "unexpected server error",
	})
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg := config.Load()
	database.Init(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := notify.NewHub(log.Logger)

	if cfg.AMQPURL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("AMQP connection failed")
		}
		defer publisher.Close()
		go publisher.Run(ctx, hub.Subscribe("amqp", 256))
	}

	sheetSync := notify.NewSheetSync(database.DB, log.Logger)
	go sheetSync.Run(ctx, hub.Subscribe("sheets", 256))

	// Seed the sheets webhook URL from the environment on first boot.
	if cfg.SheetsWebhookURL != "" {
		var st models.Settings
		if err := database.DB.First(&st).Error; err == nil && st.SheetsWebhookURL == "" {
			st.SheetsWebhookURL = cfg.SheetsWebhookURL
			database.DB.Save(&st)
		}
	}

	ledgerSvc := ledger.NewService(database.DB, hub, log.Logger)
	billingSvc := billing.NewService(database.DB, log.Logger)

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Everything else requires a token
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Pallet ledger
	protected.Get("/pallets", ledger.ListPalletsHandler())
	protected.Get("/pallets/search", ledger.SearchPalletsHandler())
	protected.Post("/pallets", ledger.CheckInHandler(ledgerSvc))
	protected.Post("/pallets/:id/remove-pallets", ledger.RemovePalletsHandler(ledgerSvc))
	protected.Post("/pallets/:id/remove-units", ledger.RemoveUnitsHandler(ledgerSvc))
	protected.Delete("/pallets/:id", ledger.CheckOutHandler(ledgerSvc))
	protected.Get("/locations", ledger.ListLocationsHandler())
	protected.Get("/stats", ledger.StatsHandler())

	// Activity log
	protected.Get("/activity", activity.ListActivityHandler())

	// Billing
	protected.Get("/occupancy", billing.OccupancyHandler(billingSvc))
	protected.Post("/invoices/preview", billing.PreviewInvoiceHandler(billingSvc))
	protected.Get("/invoices", billing.ListInvoicesHandler(billingSvc))
	protected.Get("/invoices/:id", billing.GetInvoiceHandler(billingSvc))

	// Rate and invoice management is admin-only
	adminRoutes := protected.Group("")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Put("/rates/:customer", billing.UpsertRateHandler(billingSvc))
	adminRoutes.Get("/rates/:customer", billing.GetRateHandler(billingSvc))
	adminRoutes.Post("/invoices", billing.GenerateInvoiceHandler(billingSvc))
	adminRoutes.Put("/invoices/:id/status", billing.SetInvoiceStatusHandler(billingSvc))

	// Export & settings
	protected.Get("/export", export.ExportHandler())
	protected.Get("/settings", settings.GetSettingsHandler())
	adminRoutes.Put("/settings", settings.UpdateSettingsHandler())
	protected.Post("/sheets/test", settings.TestSheetsHandler(sheetSync))
	protected.Post("/sheets/sync", settings.SyncSheetsHandler(sheetSync))

	log.Info().Str("port", cfg.HTTPPort).Msg("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
