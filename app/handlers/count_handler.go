package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/amirphl/counter-api/app/dto"
	businessflow "github.com/amirphl/counter-api/business_flow"
	"github.com/amirphl/counter-api/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/rs/zerolog"
)

var errInvalidID = errors.New("id must be an integer")

// CountHandlerInterface defines the contract for count handlers
type CountHandlerInterface interface {
	GetLatest(c fiber.Ctx) error
	IncrementLatest(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Increment(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// CountHandler handles count-related HTTP requests
type CountHandler struct {
	flow      businessflow.CountFlow
	validator *validator.Validate
	log       zerolog.Logger
	timeout   time.Duration
}

// NewCountHandler creates a new count handler. A zero timeout falls back to the default.
func NewCountHandler(flow businessflow.CountFlow, log zerolog.Logger, timeout time.Duration) *CountHandler {
	if timeout <= 0 {
		timeout = utils.DefaultRequestTimeout
	}
	return &CountHandler{
		flow:      flow,
		validator: newValidator(),
		log:       log.With().Str("handler", "count").Logger(),
		timeout:   timeout,
	}
}

func (h *CountHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// GetLatest returns the newest count
// @Summary Get latest count
// @Description Returns count_number of the row with the highest id. An empty table is seeded with count 1.
// @Tags Count
// @Produce json
// @Success 200 {object} dto.CountResponse
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/count [get]
func (h *CountHandler) GetLatest(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext()
	defer cancel()

	result, err := h.flow.GetLatestCount(ctx, h.metadata(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// IncrementLatest adds one to the newest count
// @Summary Increment latest count
// @Description Atomically increments the row with the highest id, seeding the table first when empty.
// @Tags Count
// @Produce json
// @Success 200 {object} dto.IncrementCountResponse
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/count/increment [post]
func (h *CountHandler) IncrementLatest(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext()
	defer cancel()

	result, err := h.flow.IncrementLatestCount(ctx, h.metadata(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// Create inserts a new count row
// @Summary Create count
// @Tags Counts
// @Accept json
// @Produce json
// @Param request body dto.CreateCountRequest true "Count to create"
// @Success 201 {object} dto.CountView
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /counts/ [post]
func (h *CountHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	ctx, cancel := h.createRequestContext()
	defer cancel()

	result, err := h.flow.CreateCount(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// List returns counts ordered by id
// @Summary List counts
// @Tags Counts
// @Produce json
// @Param skip query int false "Rows to skip" default(0) minimum(0)
// @Param limit query int false "Maximum rows to return" default(100) minimum(0)
// @Success 200 {array} dto.CountView
// @Failure 400 {object} dto.APIResponse "Invalid pagination"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /counts/ [get]
func (h *CountHandler) List(c fiber.Ctx) error {
	skip, err := queryInt(c, "skip", utils.DefaultListSkip)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameter", "INVALID_QUERY", fiber.Map{"skip": "skip must be an integer"})
	}
	limit, err := queryInt(c, "limit", utils.DefaultListLimit)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameter", "INVALID_QUERY", fiber.Map{"limit": "limit must be an integer"})
	}

	req := dto.ListCountsRequest{Skip: skip, Limit: limit}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	ctx, cancel := h.createRequestContext()
	defer cancel()

	result, err := h.flow.ListCounts(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// Get returns a single count
// @Summary Get count
// @Tags Counts
// @Produce json
// @Param id path int true "Count ID"
// @Success 200 {object} dto.CountView
// @Failure 400 {object} dto.APIResponse "Invalid id"
// @Failure 404 {object} dto.APIResponse "Count not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /counts/{id} [get]
func (h *CountHandler) Get(c fiber.Ctx) error {
	id, err := h.parseID(c)
	if err != nil {
		return h.idError(c, err)
	}

	ctx, cancel := h.createRequestContext()
	defer cancel()

	result, err := h.flow.GetCount(ctx, id, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// Update applies a partial update
// @Summary Update count
// @Description Only fields present in the body are applied. An empty body returns the row unchanged.
// @Tags Counts
// @Accept json
// @Produce json
// @Param id path int true "Count ID"
// @Param request body dto.UpdateCountRequest true "Fields to update"
// @Success 200 {object} dto.CountView
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Count not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /counts/{id} [put]
func (h *CountHandler) Update(c fiber.Ctx) error {
	id, err := h.parseID(c)
	if err != nil {
		return h.idError(c, err)
	}

	var req dto.UpdateCountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	ctx, cancel := h.createRequestContext()
	defer cancel()

	result, err := h.flow.UpdateCount(ctx, id, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// Delete removes a count
// @Summary Delete count
// @Tags Counts
// @Param id path int true "Count ID"
// @Success 204 "Deleted"
// @Failure 400 {object} dto.APIResponse "Invalid id"
// @Failure 404 {object} dto.APIResponse "Count not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /counts/{id} [delete]
func (h *CountHandler) Delete(c fiber.Ctx) error {
	id, err := h.parseID(c)
	if err != nil {
		return h.idError(c, err)
	}

	ctx, cancel := h.createRequestContext()
	defer cancel()

	if err := h.flow.DeleteCount(ctx, id, h.metadata(c)); err != nil {
		return h.handleFlowError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Increment adds a step to a specific count
// @Summary Increment count by id
// @Tags Counts
// @Produce json
// @Param id path int true "Count ID"
// @Param by query int false "Step to add, may be negative" default(1)
// @Success 200 {object} dto.CountView
// @Failure 400 {object} dto.APIResponse "Invalid id or step"
// @Failure 404 {object} dto.APIResponse "Count not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /counts/{id}/increment [post]
func (h *CountHandler) Increment(c fiber.Ctx) error {
	id, err := h.parseID(c)
	if err != nil {
		return h.idError(c, err)
	}

	by := int64(1)
	if raw := c.Query("by"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameter", "INVALID_QUERY", fiber.Map{"by": "by must be an integer"})
		}
		by = v
	}

	ctx, cancel := h.createRequestContext()
	defer cancel()

	result, err := h.flow.IncrementCount(ctx, &dto.IncrementCountByIDRequest{ID: id, By: by}, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// Export downloads every count as an Excel workbook
// @Summary Export counts
// @Tags Counts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "xlsx workbook"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /counts/export [get]
func (h *CountHandler) Export(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext()
	defer cancel()

	result, err := h.flow.ExportCounts(ctx, h.metadata(c))
	if err != nil {
		return err
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+result.Filename)
	return c.Send(result.Data)
}

// handleFlowError maps business errors onto responses; store failures go to the global error handler
func (h *CountHandler) handleFlowError(c fiber.Ctx, err error) error {
	if businessflow.IsCountNotFound(err) {
		h.log.Debug().Str("path", c.Path()).Msg("count not found")
		return h.ErrorResponse(c, fiber.StatusNotFound, "Count not found", "COUNT_NOT_FOUND", nil)
	}
	if businessflow.IsValidationError(err) {
		detail := err.Error()
		var be *businessflow.BusinessError
		if errors.As(err, &be) && be.Err != nil {
			detail = be.Err.Error()
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", detail)
	}
	return err
}

// parseID reads the :id path parameter. Integers that cannot name a row
// (zero, negative or past the id range) report ErrCountNotFound.
func (h *CountHandler) parseID(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, businessflow.ErrCountNotFound
		}
		return 0, errInvalidID
	}
	if id <= 0 {
		return 0, businessflow.ErrCountNotFound
	}
	return uint(id), nil
}

func (h *CountHandler) idError(c fiber.Ctx, err error) error {
	if businessflow.IsCountNotFound(err) {
		return h.handleFlowError(c, err)
	}
	return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid count ID", "INVALID_ID", fiber.Map{"id": "id must be an integer"})
}

func (h *CountHandler) metadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestid.FromContext(c))
	if r := c.Route(); r != nil {
		metadata.SetEndpoint(c.Method() + " " + r.Path)
	}
	return metadata
}

// createRequestContext bounds the request's unit of work; callers must cancel it
func (h *CountHandler) createRequestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}

func queryInt(c fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
