package httpadapter

import (
	"net/http"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNameConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrEmptyContent):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
