package usecase

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/match-predictor/internal/domain/domainerr"
)

var (
	ErrInvalidInput          = domainerr.ErrInvalidInput
	ErrNotFound              = domainerr.ErrNotFound
	ErrStorage               = domainerr.ErrStorage
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
	// ErrSourceUnavailable means the data provider returned nothing usable:
	// budget exhausted, breaker open, or a failed request. It is a soft stop.
	ErrSourceUnavailable = crerr.New("data source unavailable")
	ErrTransientSource   = crerr.New("transient data source failure")
	ErrMalformedRecord   = crerr.New("malformed source record")
)

type StorageError = domainerr.StorageError

func NewStorageError(op string, err error) error {
	return domainerr.NewStorageError(op, err)
}
