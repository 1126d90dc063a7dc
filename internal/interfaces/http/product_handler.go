package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/application/dto"
	"github.com/tilemart/tilemart-api/internal/application/stock"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
)

// ProductHandler serves the product master and the per-product stock
// operations.
type ProductHandler struct {
	products *stock.ProductUseCase
	ledger   *stock.Ledger
}

// NewProductHandler builds the handler.
func NewProductHandler(products *stock.ProductUseCase, ledger *stock.Ledger) *ProductHandler {
	return &ProductHandler{products: products, ledger: ledger}
}

// Create registers a product or merges the stock into a matching one.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	result, err := h.products.Create(stock.CreateProductInput{
		Name:         in.Name,
		Type:         in.Type,
		SubType:      in.SubType,
		Size:         in.Size,
		PiecesPerBox: in.PiecesPerBox,
		Stock:        units.Quantity{Boxes: in.Stock.Boxes, Pieces: in.Stock.Pieces},
		Description:  in.Description,
		SKU:          in.SKU,
		HSNNo:        in.HSNNo,
		Brand:        in.Brand,
		Supplier:     in.Supplier,
		CostPerBox:   in.CostPerBox,
		PricePerBox:  in.PricePerBox,
		Link3D:       in.Link3D,
		Location:     in.Location,
		Images:       in.Images,
		PerformedBy:  GetUserID(c),
	})
	if err != nil {
		return fail(c, err)
	}
	status := fiber.StatusCreated
	if result.Merged {
		status = fiber.StatusOK
	}
	return ok(c, status, fiber.Map{"product": result.Product, "merged": result.Merged})
}

// List returns active products with availability, filtered and paged.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	filter := repository.ProductFilter{
		Query:       c.Query("search"),
		Type:        c.Query("type"),
		Size:        c.Query("size"),
		HSNNo:       c.Query("hsnNo"),
		Location:    c.Query("location"),
		InStockOnly: c.QueryBool("inStock"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	products, total, err := h.products.List(filter)
	if err != nil {
		return fail(c, err)
	}
	items := make([]fiber.Map, 0, len(products))
	for _, p := range products {
		available, err := p.Available()
		if err != nil {
			available = units.Available{}
		}
		items = append(items, fiber.Map{"product": p, "available": available})
	}
	return ok(c, fiber.StatusOK, fiber.Map{"products": items, "total": total})
}

// Get returns one product with its derived availability.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	available, err := product.Available()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"product": product, "available": available})
}

// Update applies a partial edit and writes the change-tracked ledger entry.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	product, err := h.products.Update(c.Params("id"), stock.UpdateProductInput{
		Name:         in.Name,
		Type:         in.Type,
		SubType:      in.SubType,
		Size:         in.Size,
		Description:  in.Description,
		SKU:          in.SKU,
		HSNNo:        in.HSNNo,
		Brand:        in.Brand,
		Supplier:     in.Supplier,
		CostPerBox:   in.CostPerBox,
		PricePerBox:  in.PricePerBox,
		Location:     in.Location,
		Link3D:       in.Link3D,
		Images:       in.Images,
		PiecesPerBox: in.PiecesPerBox,
		Stock:        quantityPtr(in.Stock),
		Sales:        quantityPtr(in.Sales),
		Damage:       quantityPtr(in.Damage),
		Returns:      quantityPtr(in.Returns),
		UpdateNotes:  in.UpdateNotes,
		PerformedBy:  GetUserID(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"product": product})
}

// Delete soft-deletes the product.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.products.SoftDelete(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "Product deleted"})
}

// AddStock records a supplier delivery.
func (h *ProductHandler) AddStock(c *fiber.Ctx) error {
	return h.mutate(c, h.ledger.AddStock)
}

// Sell records a direct counter sale.
func (h *ProductHandler) Sell(c *fiber.Ctx) error {
	return h.mutate(c, h.ledger.RecordSale)
}

// Return records goods coming back outside an invoice return.
func (h *ProductHandler) Return(c *fiber.Ctx) error {
	return h.mutate(c, h.ledger.CustomerReturn)
}

// DamageShop records breakage inside the shop.
func (h *ProductHandler) DamageShop(c *fiber.Ctx) error {
	return h.mutate(c, h.ledger.ShopDamage)
}

func (h *ProductHandler) mutate(c *fiber.Ctx, op func(string, stock.MutationInput) (*entity.Product, error)) error {
	var in dto.StockMutationRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	product, err := op(c.Params("id"), stock.MutationInput{
		Boxes:       in.Boxes,
		Pieces:      in.Pieces,
		Notes:       in.Notes,
		PerformedBy: GetUserID(c),
	})
	if err != nil {
		return fail(c, err)
	}
	available, err := product.Available()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"product": product, "available": available})
}

// History lists a product's ledger entries.
func (h *ProductHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	entries, err := h.products.History(c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"history": entries})
}

// UpdateThreshold sets the low-stock alert level on one product.
func (h *ProductHandler) UpdateThreshold(c *fiber.Ctx) error {
	var in dto.ThresholdRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	product, err := h.products.UpdateLowStockThreshold(c.Params("id"), in.Threshold)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"product": product})
}

// BulkUpdateThreshold sets the alert level on many products.
func (h *ProductHandler) BulkUpdateThreshold(c *fiber.Ctx) error {
	var in dto.BulkThresholdRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	updated, err := h.products.BulkUpdateLowStockThreshold(in.ProductIDs, in.Threshold)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"updated": updated})
}

func quantityPtr(in *dto.QuantityInput) *units.Quantity {
	if in == nil {
		return nil
	}
	return &units.Quantity{Boxes: in.Boxes, Pieces: in.Pieces}
}
