package history

import (
	"context"
	"errors"
)

// ErrFingerprintRequired is returned when the caller sent no fingerprint.
var ErrFingerprintRequired = errors.New("client fingerprint required")

// Repo stores analysis history keyed by fingerprint hash.
type Repo interface {
	Create(ctx context.Context, entry Entry) error
	ListByFingerprint(ctx context.Context, fingerprintHash string, filter ListFilter) ([]Entry, error)
}
