package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/shared"
)

const (
	loadAttempts  = 3
	loadRetryStep = time.Second
)

// Loader fetches content-sheet rows and builds the per-viewer catalog.
type Loader struct {
	gateway   Gateway
	sheet     string
	rangeSpec string
	retryStep time.Duration
	logger    *log.Logger
}

// NewLoader creates a loader reading sheet!rangeSpec through the given gateway.
func NewLoader(gateway Gateway, sheet, rangeSpec string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Loader{
		gateway:   gateway,
		sheet:     sheet,
		rangeSpec: rangeSpec,
		retryStep: loadRetryStep,
		logger:    logger,
	}
}

// Load fetches the content rows and builds the catalog for userEmail.
//
// The fetch is retried up to three times with linearly increasing delay on
// remote errors; a rejected credential fails immediately so the caller can
// force re-authentication.
func (l *Loader) Load(ctx context.Context, userEmail string) ([]models.Topic, error) {
	rows, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, shared.ErrNoSheetData
	}

	return BuildCatalog(rows, userEmail), nil
}

// Rows fetches the raw content rows without building a catalog.
func (l *Loader) Rows(ctx context.Context) ([][]string, error) {
	return l.fetch(ctx)
}

func (l *Loader) fetch(ctx context.Context) ([][]string, error) {
	var lastErr error

	for attempt := 1; attempt <= loadAttempts; attempt++ {
		rows, err := l.gateway.ReadRange(ctx, l.sheet, l.rangeSpec)
		if err == nil {
			return rows, nil
		}

		if errors.Is(err, shared.ErrUnauthorized) {
			return nil, err
		}

		lastErr = err
		if attempt < loadAttempts {
			delay := time.Duration(attempt) * l.retryStep
			l.logger.Warnf("catalog fetch failed (attempt %d/%d), retrying in %v: %v", attempt, loadAttempts, delay, err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("catalog fetch failed after %d attempts: %w", loadAttempts, lastErr)
}
