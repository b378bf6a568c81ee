package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/njord/internal/domain"
	"github.com/dukerupert/njord/internal/service"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EPAYMENT, http.StatusBadRequest},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ENOTIMPL, http.StatusNotImplemented},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.code); got != tt.expected {
				t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.expected)
			}
		})
	}
}

func TestErrorResponse_JSON(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found error",
			err:            domain.NotFound("order.get", "order", "117"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   domain.ENOTFOUND,
		},
		{
			name:           "invalid error",
			err:            domain.Invalid("order.map", "invalid order status"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.EINVALID,
		},
		{
			name:           "conflict error",
			err:            domain.Conflict("coupon.create", "coupon code already exists"),
			expectedStatus: http.StatusConflict,
			expectedCode:   domain.ECONFLICT,
		},
		{
			name: "collaborator status hint wins",
			err: &domain.Error{
				Code:    domain.EPAYMENT,
				Message: "card declined",
				Status:  http.StatusPaymentRequired,
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedCode:   domain.EPAYMENT,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := ErrorResponse(c, tt.err); err != nil {
				t.Fatalf("ErrorResponse returned %v", err)
			}

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}

			var body ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body.Code != tt.expectedCode {
				t.Errorf("code = %q, want %q", body.Code, tt.expectedCode)
			}
			if body.Message == "" {
				t.Error("message is empty")
			}
		})
	}
}

func TestErrorResponse_ValidationFields(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := domain.NewValidationError("order.map", "line_items", "order line item with id 9 does not exist")
	if err := ErrorResponse(c, err); err != nil {
		t.Fatalf("ErrorResponse returned %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Fields["line_items"] == "" {
		t.Errorf("fields = %v, want line_items entry", body.Fields)
	}
}

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	type payload struct {
		Email  string `json:"email" validate:"required,email"`
		Status string `json:"status" validate:"omitempty,order_status"`
	}

	err := v.Validate(&payload{Email: "not-an-email", Status: "shipped"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields := domain.GetValidationFields(err)
	if fields["email"] == "" {
		t.Errorf("fields = %v, want email entry", fields)
	}
	if fields["status"] == "" {
		t.Errorf("fields = %v, want status entry", fields)
	}
}

func TestValidator_RequiresMetaDataKeys(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&service.OrderRequest{
		MetaData: []service.MetaDataRequest{{Value: "gift"}},
	})
	if err == nil {
		t.Fatal("expected validation error for keyless meta entry")
	}
	fields := domain.GetValidationFields(err)
	if fields["key"] == "" {
		t.Errorf("fields = %v, want key entry", fields)
	}

	// Line-group metadata is validated too.
	err = v.Validate(&service.OrderRequest{
		LineItems: []service.LineItemRequest{{
			MetaData: []service.MetaDataRequest{{Value: 1}},
		}},
	})
	if err == nil {
		t.Fatal("expected validation error for keyless line item meta entry")
	}

	if err := v.Validate(&service.CouponRequest{
		MetaData: []service.MetaDataRequest{{Key: "campaign", Value: "spring"}},
	}); err != nil {
		t.Fatalf("keyed meta entry rejected: %v", err)
	}
}

func TestValidator_AcceptsPrefixedStatus(t *testing.T) {
	v := NewValidator()

	type payload struct {
		Status string `json:"status" validate:"omitempty,order_status"`
	}

	if err := v.Validate(&payload{Status: "ord-processing"}); err != nil {
		t.Fatalf("prefixed status rejected: %v", err)
	}
	if err := v.Validate(&payload{Status: "completed"}); err != nil {
		t.Fatalf("unprefixed status rejected: %v", err)
	}
}
