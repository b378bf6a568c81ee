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

// CouponResponse is the external representation of a coupon.
type CouponResponse struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	Amount       string `json:"amount"`
	DiscountType string `json:"discount_type"`
	Description  string `json:"description"`

	DateCreated     *string `json:"date_created"`
	DateCreatedGMT  *string `json:"date_created_gmt"`
	DateModified    *string `json:"date_modified"`
	DateModifiedGMT *string `json:"date_modified_gmt"`
	DateExpires     *string `json:"date_expires"`
	DateExpiresGMT  *string `json:"date_expires_gmt"`

	UsageCount        int  `json:"usage_count"`
	UsageLimit        *int `json:"usage_limit"`
	UsageLimitPerUser *int `json:"usage_limit_per_user"`

	IndividualUse bool `json:"individual_use"`
	FreeShipping  bool `json:"free_shipping"`

	MinimumAmount string `json:"minimum_amount"`
	MaximumAmount string `json:"maximum_amount"`

	MetaData []service.MetaResponse `json:"meta_data"`
}

// CouponHandler exposes the coupon resource.
type CouponHandler struct {
	service service.CouponService
	opts    service.ResponseOptions
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(svc service.CouponService, opts service.ResponseOptions, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: svc,
		opts:    opts,
		logger:  logger.With().Str("handler", "coupons").Logger(),
	}
}

// Register mounts the coupon routes on the group.
func (h *CouponHandler) Register(g *echo.Group) {
	g.GET("/coupons", h.List)
	g.POST("/coupons", h.Create)
	g.GET("/coupons/:id", h.Get)
	g.PUT("/coupons/:id", h.Update)
	g.DELETE("/coupons/:id", h.Delete)
}

func (h *CouponHandler) List(c echo.Context) error {
	filter := domain.CouponFilter{
		Code:   c.QueryParam("code"),
		Search: c.QueryParam("search"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))

	coupons, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return ErrorResponse(c, err)
	}

	out := make([]*CouponResponse, 0, len(coupons))
	for _, coupon := range coupons {
		out = append(out, h.response(coupon))
	}
	setPaginationHeaders(c, total, filter.Limit())
	return c.JSON(http.StatusOK, out)
}

func (h *CouponHandler) Create(c echo.Context) error {
	req := new(service.CouponRequest)
	if err := bindRequest(c, req); err != nil {
		return ErrorResponse(c, err)
	}

	coupon, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, h.response(coupon))
}

func (h *CouponHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return ErrorResponse(c, err)
	}

	coupon, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, h.response(coupon))
}

func (h *CouponHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return ErrorResponse(c, err)
	}

	req := new(service.CouponRequest)
	if err := bindRequest(c, req); err != nil {
		return ErrorResponse(c, err)
	}

	coupon, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, h.response(coupon))
}

func (h *CouponHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return ErrorResponse(c, err)
	}
	force := parseBoolParam(c.QueryParam("force"))

	coupon, err := h.service.Delete(c.Request().Context(), id, force)
	if err != nil {
		return ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, h.response(coupon))
}

func (h *CouponHandler) response(coupon *domain.Coupon) *CouponResponse {
	dp := h.opts.Precision
	loc := h.opts.Location

	resp := &CouponResponse{
		ID:                coupon.ID,
		Code:              coupon.Code,
		Amount:            money.FormatDecimal(coupon.Amount, dp),
		DiscountType:      coupon.DiscountType,
		Description:       coupon.Description,
		UsageCount:        coupon.UsageCount,
		UsageLimit:        coupon.UsageLimit,
		UsageLimitPerUser: coupon.UsageLimitPerUser,
		IndividualUse:     coupon.IndividualUse,
		FreeShipping:      coupon.FreeShipping,
		MinimumAmount:     money.FormatDecimal(coupon.MinimumAmount, dp),
		MaximumAmount:     money.FormatDecimal(coupon.MaximumAmount, dp),
		MetaData:          metaResponses(coupon.MetaData),
	}

	created := coupon.DateCreated
	resp.DateCreated, resp.DateCreatedGMT = money.FormatDateTime(&created, loc)
	modified := coupon.DateModified
	resp.DateModified, resp.DateModifiedGMT = money.FormatDateTime(&modified, loc)
	resp.DateExpires, resp.DateExpiresGMT = money.FormatDateTime(coupon.DateExpires, loc)

	return resp
}

func metaResponses(in []domain.MetaData) []service.MetaResponse {
	out := make([]service.MetaResponse, 0, len(in))
	for _, m := range in {
		out = append(out, service.MetaResponse{ID: m.ID, Key: m.Key, Value: m.Value})
	}
	return out
}
