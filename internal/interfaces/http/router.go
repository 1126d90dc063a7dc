package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/application/auth"
	"github.com/tilemart/tilemart-api/internal/application/billing"
	"github.com/tilemart/tilemart-api/internal/application/payments"
	"github.com/tilemart/tilemart-api/internal/application/reports"
	"github.com/tilemart/tilemart-api/internal/application/returns"
	"github.com/tilemart/tilemart-api/internal/application/stock"
	"github.com/tilemart/tilemart-api/internal/infrastructure/imghost"
	"github.com/tilemart/tilemart-api/internal/infrastructure/pdf"
)

// RouterDeps carries everything the HTTP layer needs.
type RouterDeps struct {
	Products  *stock.ProductUseCase
	Ledger    *stock.Ledger
	Invoices  *billing.InvoiceUseCase
	Customers *billing.CustomerUseCase
	Payments  *payments.UseCase
	Returns   *returns.UseCase
	Reports   *reports.UseCase
	Auth      *auth.UseCase
	PDF       *pdf.Generator
	Uploader  *imghost.Client
	JWTSecret string
}

// Router mounts every route under /api. Reads are open to any authenticated
// role; mutations require admin or staff.
func Router(app *fiber.App, deps RouterDeps) {
	productHandler := NewProductHandler(deps.Products, deps.Ledger)
	damageHandler := NewDamageHandler(deps.Products, deps.Ledger)
	customerHandler := NewCustomerHandler(deps.Customers, deps.Payments, deps.Returns)
	invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.PDF)
	paymentHandler := NewPaymentHandler(deps.Payments)
	returnHandler := NewReturnHandler(deps.Returns)
	reportHandler := NewReportHandler(deps.Reports, deps.PDF)
	uploadHandler := NewUploadHandler(deps.Uploader)
	authHandler := NewAuthHandler(deps.Auth)

	api := app.Group("/api")
	api.Post("/auth/login", authHandler.Login)

	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	write := RequireRole("admin", "staff")
	adminOnly := RequireRole("admin")

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", adminOnly, authHandler.Register)

	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", write, productHandler.Create)
	products.Patch("/thresholds", write, productHandler.BulkUpdateThreshold)
	products.Get("/:id", productHandler.Get)
	products.Put("/:id", write, productHandler.Update)
	products.Delete("/:id", write, productHandler.Delete)
	products.Patch("/:id/threshold", write, productHandler.UpdateThreshold)
	products.Get("/:id/history", productHandler.History)
	products.Post("/:id/add-stock", write, productHandler.AddStock)
	products.Post("/:id/sale", write, productHandler.Sell)
	products.Post("/:id/return", write, productHandler.Return)
	products.Post("/:id/damage", write, productHandler.DamageShop)

	damage := protected.Group("/damage")
	damage.Post("/", write, damageHandler.Record)
	damage.Get("/inventory", damageHandler.ListDamaged)
	damage.Patch("/inventory/:id/status", write, damageHandler.UpdateDamagedStatus)

	protected.Get("/stock-history", damageHandler.ListHistory)

	customers := protected.Group("/customers")
	customers.Get("/", customerHandler.List)
	customers.Post("/", write, customerHandler.Create)
	customers.Get("/:id", customerHandler.Get)
	customers.Put("/:id", write, customerHandler.Update)
	customers.Delete("/:id", write, customerHandler.Delete)
	customers.Get("/:id/stats", customerHandler.Stats)
	customers.Get("/:id/invoices", customerHandler.Invoices)
	customers.Get("/:id/payments", customerHandler.PaymentHistory)
	customers.Get("/:id/credit", customerHandler.Credit)

	invoices := protected.Group("/invoices")
	invoices.Get("/", invoiceHandler.List)
	invoices.Post("/", write, invoiceHandler.Create)
	invoices.Get("/export", invoiceHandler.ExportExcel)
	invoices.Post("/migrate-values", adminOnly, invoiceHandler.MigrateValues)
	invoices.Post("/recalculate/:customerId", adminOnly, invoiceHandler.RecalculateCustomer)
	invoices.Get("/number/:number", invoiceHandler.GetByNumber)
	invoices.Get("/:id", invoiceHandler.Get)
	invoices.Put("/:id", write, invoiceHandler.Update)
	invoices.Delete("/:id", write, invoiceHandler.Delete)
	invoices.Patch("/:id/payment", write, invoiceHandler.UpdatePayment)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)

	paymentsGroup := protected.Group("/payments")
	paymentsGroup.Get("/", paymentHandler.List)
	paymentsGroup.Get("/pending", paymentHandler.Pending)
	paymentsGroup.Get("/:id", paymentHandler.Get)
	paymentsGroup.Delete("/:id", write, paymentHandler.Delete)

	returnsGroup := protected.Group("/returns")
	returnsGroup.Get("/", returnHandler.List)
	returnsGroup.Post("/", write, returnHandler.Create)
	returnsGroup.Post("/use-credit", write, returnHandler.UseCredit)
	returnsGroup.Get("/:id", returnHandler.Get)

	reportsGroup := protected.Group("/reports")
	reportsGroup.Get("/dashboard", reportHandler.Dashboard)
	reportsGroup.Get("/stock", reportHandler.Stock)
	reportsGroup.Get("/sales", reportHandler.Sales)

	protected.Post("/upload/image", write, uploadHandler.Image)
}
