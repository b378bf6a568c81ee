package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dukerupert/njord/internal/domain"
	"github.com/dukerupert/njord/internal/money"
	"github.com/dukerupert/njord/internal/service"
)

// OrderHandler exposes the order resource.
type OrderHandler struct {
	service service.OrderService
	opts    service.ResponseOptions
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(svc service.OrderService, opts service.ResponseOptions, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		opts:    opts,
		logger:  logger.With().Str("handler", "orders").Logger(),
	}
}

// Register mounts the order routes on the group.
func (h *OrderHandler) Register(g *echo.Group) {
	g.GET("/orders", h.List)
	g.POST("/orders", h.Create)
	g.GET("/orders/:id", h.Get)
	g.PUT("/orders/:id", h.Update)
	g.DELETE("/orders/:id", h.Delete)
}

// List handles GET /orders.
func (h *OrderHandler) List(c echo.Context) error {
	filter, err := orderFilterFromQuery(c)
	if err != nil {
		return ErrorResponse(c, err)
	}

	orders, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return ErrorResponse(c, err)
	}

	opts := h.responseOptions(c)
	out := make([]*service.OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, service.NewOrderResponse(order, opts))
	}

	setPaginationHeaders(c, total, filter.Limit())
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c echo.Context) error {
	req := new(service.OrderRequest)
	if err := bindRequest(c, req); err != nil {
		return ErrorResponse(c, err)
	}

	order, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, service.NewOrderResponse(order, h.responseOptions(c)))
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return ErrorResponse(c, err)
	}

	order, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, service.NewOrderResponse(order, h.responseOptions(c)))
}

// Update handles PUT /orders/:id. Partial bodies are accepted; only the
// supplied top-level keys are applied.
func (h *OrderHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return ErrorResponse(c, err)
	}

	req := new(service.OrderRequest)
	if err := bindRequest(c, req); err != nil {
		return ErrorResponse(c, err)
	}

	order, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, service.NewOrderResponse(order, h.responseOptions(c)))
}

// Delete handles DELETE /orders/:id. Without force the order is trashed;
// with force it is erased. Either way the pre-deletion representation is
// returned.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return ErrorResponse(c, err)
	}
	force := parseBoolParam(c.QueryParam("force"))

	order, err := h.service.Delete(c.Request().Context(), id, force)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, service.NewOrderResponse(order, h.responseOptions(c)))
}

// responseOptions applies the per-request decimal precision override.
func (h *OrderHandler) responseOptions(c echo.Context) service.ResponseOptions {
	opts := h.opts
	if raw := c.QueryParam("dp"); raw != "" {
		if dp, err := strconv.Atoi(raw); err == nil && dp >= 0 && dp <= 8 {
			opts.Precision = dp
		}
	}
	return opts
}

func orderFilterFromQuery(c echo.Context) (domain.OrderFilter, error) {
	const op = "api.orders.list"
	var filter domain.OrderFilter

	if raw := c.QueryParam("status"); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			token = strings.TrimSpace(token)
			if token != "" {
				filter.Statuses = append(filter.Statuses, token)
			}
		}
	}

	if raw := c.QueryParam("customer"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, domain.NewValidationError(op, "customer", "must be an integer")
		}
		filter.Customer = &id
	}
	if raw := c.QueryParam("product"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, domain.NewValidationError(op, "product", "must be an integer")
		}
		filter.Product = &id
	}

	// The order-specific search parameter wins over the generic one.
	filter.Search = c.QueryParam("search")
	if filter.Search == "" {
		filter.Search = c.QueryParam("s")
	}
	filter.Number = c.QueryParam("number")

	dates := []struct {
		param string
		dst   **time.Time
	}{
		{"created_since", &filter.CreatedSince},
		{"created_before", &filter.CreatedBefore},
		{"updated_since", &filter.UpdatedSince},
		{"updated_before", &filter.UpdatedBefore},
	}
	for _, d := range dates {
		raw := c.QueryParam(d.param)
		if raw == "" {
			continue
		}
		t, err := parseTimeParam(raw)
		if err != nil {
			return filter, domain.NewValidationError(op, d.param, "must be an ISO 8601 date-time")
		}
		*d.dst = &t
	}

	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))

	return filter, nil
}

// parseTimeParam accepts RFC 3339 or the zoneless wire format.
func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(money.ISO8601, raw)
}

func parseBoolParam(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("api", "invalid resource id")
	}
	return id, nil
}

// bindRequest decodes and validates a JSON write payload.
func bindRequest(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("api.bind", "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func setPaginationHeaders(c echo.Context, total int64, perPage int) {
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	c.Response().Header().Set("X-Total", strconv.FormatInt(total, 10))
	c.Response().Header().Set("X-Total-Pages", strconv.FormatInt(pages, 10))
}
