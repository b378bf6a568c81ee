package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/njord/internal/domain"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EPAYMENT:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ENOTIMPL:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes a domain error as a JSON response. A status hint
// attached by a collaborator wins over the code-derived status; validation
// errors carry their field map.
func ErrorResponse(c echo.Context, err error) error {
	if fields := domain.GetValidationFields(err); fields != nil {
		return c.JSON(http.StatusBadRequest, ErrorBody{
			Code:    domain.EINVALID,
			Message: "Validation failed",
			Fields:  fields,
		})
	}

	status := domain.ErrorStatus(err)
	if status == 0 {
		status = ErrorCodeToHTTPStatus(domain.ErrorCode(err))
	}
	return c.JSON(status, ErrorBody{
		Code:    domain.ErrorCode(err),
		Message: domain.ErrorMessage(err),
	})
}
