package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dukerupert/njord/internal/domain"
	"github.com/dukerupert/njord/internal/money"
	"github.com/dukerupert/njord/internal/service"
)

// CustomerResponse is the external representation of a customer.
type CustomerResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`

	DateCreated     *string `json:"date_created"`
	DateCreatedGMT  *string `json:"date_created_gmt"`
	DateModified    *string `json:"date_modified"`
	DateModifiedGMT *string `json:"date_modified_gmt"`

	Billing  service.BillingResponse  `json:"billing"`
	Shipping service.ShippingResponse `json:"shipping"`

	IsPayingCustomer bool `json:"is_paying_customer"`

	MetaData []service.MetaResponse `json:"meta_data"`
}

// CustomerHandler exposes the customer resource.
type CustomerHandler struct {
	service service.CustomerService
	opts    service.ResponseOptions
	logger  zerolog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(svc service.CustomerService, opts service.ResponseOptions, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		opts:    opts,
		logger:  logger.With().Str("handler", "customers").Logger(),
	}
}

// Register mounts the customer routes on the group.
func (h *CustomerHandler) Register(g *echo.Group) {
	g.GET("/customers", h.List)
	g.POST("/customers", h.Create)
	g.GET("/customers/:id", h.Get)
	g.PUT("/customers/:id", h.Update)
	g.DELETE("/customers/:id", h.Delete)
}

func (h *CustomerHandler) List(c echo.Context) error {
	filter := domain.CustomerFilter{
		Email:  c.QueryParam("email"),
		Search: c.QueryParam("search"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))

	customers, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return ErrorResponse(c, err)
	}

	out := make([]*CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		out = append(out, h.response(customer))
	}
	setPaginationHeaders(c, total, filter.Limit())
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) Create(c echo.Context) error {
	req := new(service.CustomerRequest)
	if err := bindRequest(c, req); err != nil {
		return ErrorResponse(c, err)
	}

	customer, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, h.response(customer))
}

func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return ErrorResponse(c, err)
	}

	customer, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, h.response(customer))
}

func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return ErrorResponse(c, err)
	}

	req := new(service.CustomerRequest)
	if err := bindRequest(c, req); err != nil {
		return ErrorResponse(c, err)
	}

	customer, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, h.response(customer))
}

// Delete handles DELETE /customers/:id. Customers do not support trashing,
// so a missing force flag is rejected by the service.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return ErrorResponse(c, err)
	}
	force := parseBoolParam(c.QueryParam("force"))

	customer, err := h.service.Delete(c.Request().Context(), id, force)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, h.response(customer))
}

func (h *CustomerHandler) response(customer *domain.Customer) *CustomerResponse {
	loc := h.opts.Location

	resp := &CustomerResponse{
		ID:        customer.ID,
		Email:     customer.Email,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Username:  customer.Username,
		Billing: service.BillingResponse{
			FirstName: customer.Billing.FirstName,
			LastName:  customer.Billing.LastName,
			Company:   customer.Billing.Company,
			Address1:  customer.Billing.Address1,
			Address2:  customer.Billing.Address2,
			City:      customer.Billing.City,
			State:     customer.Billing.State,
			Postcode:  customer.Billing.Postcode,
			Country:   customer.Billing.Country,
			Email:     customer.Billing.Email,
			Phone:     customer.Billing.Phone,
		},
		Shipping: service.ShippingResponse{
			FirstName: customer.Shipping.FirstName,
			LastName:  customer.Shipping.LastName,
			Company:   customer.Shipping.Company,
			Address1:  customer.Shipping.Address1,
			Address2:  customer.Shipping.Address2,
			City:      customer.Shipping.City,
			State:     customer.Shipping.State,
			Postcode:  customer.Shipping.Postcode,
			Country:   customer.Shipping.Country,
		},
		IsPayingCustomer: customer.IsPayingCustomer,
		MetaData:         metaResponses(customer.MetaData),
	}

	created := customer.DateCreated
	resp.DateCreated, resp.DateCreatedGMT = money.FormatDateTime(&created, loc)
	modified := customer.DateModified
	resp.DateModified, resp.DateModifiedGMT = money.FormatDateTime(&modified, loc)

	return resp
}
