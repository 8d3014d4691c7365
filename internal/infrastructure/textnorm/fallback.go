package textnorm

import (
	"context"
	"log/slog"

	"ReviewPulse/internal/ports"
)

// Fallback tries the primary normalizer and retries locally on failure.
type Fallback struct {
	primary ports.Normalizer
	local   ports.Normalizer
	logger  *slog.Logger
}

var _ ports.Normalizer = (*Fallback)(nil)

// NewFallback wires a remote normalizer to the local one.
func NewFallback(primary, local ports.Normalizer, logger *slog.Logger) *Fallback {
	return &Fallback{primary: primary, local: local, logger: logger}
}

// Normalize only fails when both normalizers fail.
func (f *Fallback) Normalize(ctx context.Context, text string) (string, error) {
	out, err := f.primary.Normalize(ctx, text)
	if err == nil {
		return out, nil
	}
	if f.logger != nil {
		f.logger.Warn("remote normalizer failed, using local", "error", err)
	}
	return f.local.Normalize(ctx, text)
}
