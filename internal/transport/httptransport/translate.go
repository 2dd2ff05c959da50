package httptransport

import (
	"errors"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/ports/errcode"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/market"
)

func FromServiceError(err error) errcode.Code {
	switch {
	case errors.Is(err, market.ErrNotFound):
		return errcode.NotFound
	case errors.Is(err, dashboard.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrInvalidWindow):
		return errcode.BadRequest
	case errors.Is(err, market.ErrUnavailable):
		return errcode.Unavailable
	default:
		return errcode.Internal
	}
}
