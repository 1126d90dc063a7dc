package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tilemart/tilemart-api/internal/application/auth"
	"github.com/tilemart/tilemart-api/internal/application/billing"
	"github.com/tilemart/tilemart-api/internal/application/payments"
	"github.com/tilemart/tilemart-api/internal/application/reports"
	"github.com/tilemart/tilemart-api/internal/application/returns"
	"github.com/tilemart/tilemart-api/internal/application/stock"
	"github.com/tilemart/tilemart-api/internal/infrastructure/imghost"
	"github.com/tilemart/tilemart-api/internal/infrastructure/pdf"
	"github.com/tilemart/tilemart-api/internal/infrastructure/postgres"
	httpiface "github.com/tilemart/tilemart-api/internal/interfaces/http"
	"github.com/tilemart/tilemart-api/pkg/config"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	pool, err := postgres.NewPool(ctx, cfg.DB)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	returnRepo := postgres.NewReturnRepository(pool)
	historyRepo := postgres.NewStockHistoryRepository(pool)
	damagedRepo := postgres.NewDamagedInventoryRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)

	ledger := stock.NewLedger(productRepo, historyRepo, damagedRepo, log)
	productUC := stock.NewProductUseCase(productRepo, historyRepo, damagedRepo, log)
	invoiceUC := billing.NewInvoiceUseCase(invoiceRepo, customerRepo, productRepo, paymentRepo, ledger, log)
	customerUC := billing.NewCustomerUseCase(customerRepo, invoiceRepo, returnRepo, log)
	paymentsUC := payments.New(paymentRepo, invoiceRepo, customerRepo, log)
	returnsUC := returns.New(returnRepo, invoiceRepo, customerRepo, productRepo, ledger, log)
	reportsUC := reports.New(reportRepo, productRepo, invoiceRepo, log)
	authUC := auth.New(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	pdfGen := pdf.NewGenerator(pdf.ShopInfo{
		Name:      cfg.Shop.Name,
		Address:   cfg.Shop.Address,
		Phone:     cfg.Shop.Phone,
		Email:     cfg.Shop.Email,
		GSTNumber: cfg.Shop.GSTNumber,
	})
	uploader := imghost.New(cfg.ImgHost)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(recover.New())
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	httpiface.Router(app, httpiface.RouterDeps{
		Products:  productUC,
		Ledger:    ledger,
		Invoices:  invoiceUC,
		Customers: customerUC,
		Payments:  paymentsUC,
		Returns:   returnsUC,
		Reports:   reportsUC,
		Auth:      authUC,
		PDF:       pdfGen,
		Uploader:  uploader,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("http server listening")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
