package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tilemart/tilemart-api/internal/application/dto"
	"github.com/tilemart/tilemart-api/internal/application/stock"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
)

// DamageHandler serves damage transactions, the damaged-inventory register
// and the global stock-history feed.
type DamageHandler struct {
	products *stock.ProductUseCase
	ledger   *stock.Ledger
}

// NewDamageHandler builds the handler.
func NewDamageHandler(products *stock.ProductUseCase, ledger *stock.Ledger) *DamageHandler {
	return &DamageHandler{products: products, ledger: ledger}
}

// Record applies one of the four damage scenarios.
func (h *DamageHandler) Record(c *fiber.Ctx) error {
	var in dto.DamageRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	result, err := h.ledger.RecordDamage(stock.DamageInput{
		DamageType:           in.DamageType,
		ProductID:            in.ProductID,
		DamagedQuantity:      units.Quantity{Boxes: in.DamagedQuantity.Boxes, Pieces: in.DamagedQuantity.Pieces},
		ReplacementProductID: in.ReplacementProductID,
		ReplacementQuantity:  units.Quantity{Boxes: in.ReplacementQuantity.Boxes, Pieces: in.ReplacementQuantity.Pieces},
		CustomerName:         in.CustomerName,
		DamageReason:         in.DamageReason,
		Description:          in.Description,
		PerformedBy:          GetUserID(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, fiber.Map{
		"products": result.UpdatedProducts,
		"history":  result.HistoryRecords,
	})
}

// ListDamaged returns damaged-inventory records.
func (h *DamageHandler) ListDamaged(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	records, total, err := h.products.Damaged(repository.DamagedFilter{
		ProductID:  c.Query("productId"),
		DamageType: c.Query("damageType"),
		Status:     c.Query("status"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"damaged": records, "total": total})
}

// UpdateDamagedStatus flips a record's disposition.
func (h *DamageHandler) UpdateDamagedStatus(c *fiber.Ctx) error {
	var in dto.DamagedStatusRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, err)
	}
	record, err := h.products.UpdateDamagedStatus(c.Params("id"), in.Status)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"record": record})
}

// ListHistory returns ledger entries across all products.
func (h *DamageHandler) ListHistory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err == nil {
		page.DefaultPage()
	}
	entries, total, err := h.products.AllHistory(repository.StockHistoryFilter{
		Action: c.Query("action"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"history": entries, "total": total})
}
