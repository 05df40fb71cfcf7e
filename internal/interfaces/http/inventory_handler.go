package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP de movimientos, kardex y reportes de stock (protegido).
type InventoryHandler struct {
	movements *inventory.RegisterMovementUseCase
	ledger    *inventory.LedgerUseCase
	reports   *inventory.StockReportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	movements *inventory.RegisterMovementUseCase,
	ledger *inventory.LedgerUseCase,
	reports *inventory.StockReportUseCase,
) *InventoryHandler {
	return &InventoryHandler{movements: movements, ledger: ledger, reports: reports}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Aplica el movimiento sobre el stock del producto y lo agrega al kardex en una sola transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                       false  "Clave para reintentos seguros"
// @Param        body             body    dto.RegisterMovementRequest  true   "product_id, movement_type, reason, quantity, reference, notes"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	mov, err := h.movements.RegisterMovementFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// AdjustStock godoc
// @Summary      Ajustar stock a un valor absoluto
// @Description  Un aumento se registra como entrada y una disminución como ajuste. Igual al actual devuelve 400.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave para reintentos seguros"
// @Param        body             body    dto.AdjustStockRequest  true   "product_id, new_stock, reason, notes"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	mov, err := h.movements.AdjustFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// BatchEntry godoc
// @Summary      Entrada masiva de mercancía
// @Description  Procesa los ítems en orden y se detiene en el primero que falla; los anteriores quedan confirmados
// @Description  y se devuelven en committed. Con atomic=true el lote completo se aplica o se descarta.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "Clave para reintentos seguros"
// @Param        body             body    dto.BatchEntryRequest  true   "items, reference, atomic"
// @Success      201   {object}  dto.BatchEntryResponse
// @Failure      400   {object}  dto.BatchEntryErrorResponse
// @Failure      404   {object}  dto.BatchEntryErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/batch-entry [post]
func (h *InventoryHandler) BatchEntry(c *fiber.Ctx) error {
	var in dto.BatchEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	created, err := h.movements.BatchEntryFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		var itemErr *domain.BatchItemError
		if !errors.As(err, &itemErr) {
			return handleError(c, err)
		}
		status, body := errorResponse(err)
		return writeError(c, status, dto.BatchEntryErrorResponse{
			ErrorResponse: body,
			FailedIndex:   itemErr.Index,
			Committed:     dto.ToMovementResponses(created),
		}, err)
	}
	items := dto.ToMovementResponses(created)
	return c.Status(fiber.StatusCreated).JSON(dto.BatchEntryResponse{Items: items, Count: len(items)})
}

// ListMovements godoc
// @Summary      Listar movimientos del kardex
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "Producto"
// @Param        movement_type  query  string  false  "entry | exit | adjustment | transfer"
// @Param        reason         query  string  false  "Motivo"
// @Param        user_id        query  string  false  "Usuario"
// @Param        reference      query  string  false  "Texto en la referencia"
// @Param        date_from      query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        date_to        query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, inclusive)"
// @Param        page           query  int     false  "Página"
// @Param        page_size      query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	dateFrom, err := parseDateParam(c.Query("date_from"), false)
	if err != nil {
		return badRequest(c, "VALIDATION", "date_from inválido")
	}
	dateTo, err := parseDateParam(c.Query("date_to"), true)
	if err != nil {
		return badRequest(c, "VALIDATION", "date_to inválido")
	}
	filter := repository.MovementFilter{
		ProductID:    c.Query("product_id"),
		MovementType: c.Query("movement_type"),
		Reason:       c.Query("reason"),
		UserID:       c.Query("user_id"),
		Reference:    c.Query("reference"),
		DateFrom:     dateFrom,
		DateTo:       dateTo,
	}
	out, err := h.ledger.ListMovements(c.UserContext(), filter, pageFromQuery(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return badRequest(c, "VALIDATION", "id de movimiento inválido")
	}
	out, err := h.ledger.GetMovement(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ProductHistory godoc
// @Summary      Kardex de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del producto"
// @Param        limit  query  int     false  "Máximo de movimientos (50 por defecto, máx 200)"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ProductHistory(c *fiber.Ctx) error {
	out, err := h.ledger.ProductHistory(c.UserContext(), c.Params("id"), c.QueryInt("limit", inventory.DefaultHistoryLimit))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar stock con el kardex
// @Description  Compara stock_current con el stock_after del último movimiento del producto.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.ledger.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// LowStockAlerts godoc
// @Summary      Alertas de stock bajo
// @Description  Productos activos bajo el mínimo, el más deficitario primero. critical = sin stock.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LowStockAlertResponse
// @Router       /api/inventory/alerts/low-stock [get]
func (h *InventoryHandler) LowStockAlerts(c *fiber.Ctx) error {
	out, err := h.reports.LowStockReport(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// LowStockPDF godoc
// @Summary      Reporte de stock bajo en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/alerts/low-stock/pdf [get]
func (h *InventoryHandler) LowStockPDF(c *fiber.Ctx) error {
	pdf, err := h.reports.LowStockReportPDF(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock-bajo-`+time.Now().Format("20060102")+`.pdf"`)
	return c.Send(pdf)
}

// Stats godoc
// @Summary      Estadísticas del inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryStatsResponse
// @Router       /api/inventory/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	out, err := h.reports.InventoryStats(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// CheckStock godoc
// @Summary      Verificar disponibilidad
// @Description  available=false también para productos inexistentes.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true  "ID del producto"
// @Param        quantity    query  int     true  "Cantidad requerida (> 0)"
// @Success      200  {object}  dto.StockCheckResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/check-stock/{product_id} [get]
func (h *InventoryHandler) CheckStock(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	quantity, err := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if err != nil {
		return badRequest(c, "VALIDATION", "quantity es requerido y debe ser entero")
	}
	available, err := h.reports.StockAvailable(c.UserContext(), productID, quantity)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.StockCheckResponse{
		ProductID:         productID,
		RequestedQuantity: quantity,
		Available:         available,
	})
}
