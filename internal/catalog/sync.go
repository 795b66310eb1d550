package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/shared"
)

// Syncer writes per-video completion state back to the content sheet.
//
// The viewer's access cell is a tri-state value, so completing writes
// "Finish" and uncompleting writes "Access Given", which silently grants
// access to a topic the user was never explicitly given. Rows or columns
// that cannot be located make the toggle a no-op success, tolerating stale or
// local-only entries.
type Syncer struct {
	gateway   Gateway
	sheet     string
	rangeSpec string
	logger    *log.Logger
}

// NewSyncer creates a progress synchronizer writing through the given gateway.
func NewSyncer(gateway Gateway, sheet, rangeSpec string, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Syncer{gateway: gateway, sheet: sheet, rangeSpec: rangeSpec, logger: logger}
}

// Toggle flips completion for one video and returns the new completed state.
//
// On any write failure the returned state equals currentlyCompleted and the
// caller must leave its in-memory model untouched.
func (s *Syncer) Toggle(ctx context.Context, userEmail, topicName, videoID string, currentlyCompleted bool) (bool, error) {
	newState := !currentlyCompleted

	rows, err := s.gateway.ReadRange(ctx, s.sheet, s.rangeSpec)
	if err != nil {
		return currentlyCompleted, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return currentlyCompleted, shared.ErrNoSheetData
	}

	userCol := -1
	for i, header := range rows[0] {
		if header == userEmail {
			userCol = i
			break
		}
	}
	if userCol == -1 {
		s.logger.Debugf("no access column for %s, skipping update", userEmail)
		return newState, nil
	}

	rowIdx := -1
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if cell(row, colTopic) != topicName {
			continue
		}
		if containsEntry(splitList(cell(row, colVideoIDs)), videoID) {
			rowIdx = i
			break
		}
	}
	if rowIdx == -1 {
		s.logger.Debugf("topic %q / video %q not found, skipping update", topicName, videoID)
		return newState, nil
	}

	value := models.AccessGiven
	if newState {
		value = models.AccessFinished
	}

	address := ColumnName(userCol) + strconv.Itoa(rowIdx+1)
	if err := s.gateway.WriteCell(ctx, s.sheet, address, value.Cell()); err != nil {
		return currentlyCompleted, fmt.Errorf("failed to update completion status: %w", err)
	}

	return newState, nil
}

// EnsureAccessColumn provisions a per-user access column on the content sheet.
//
// When no header cell matches userEmail, the next free column is written with
// the email as header and "Access Given" for every existing data row. An
// existing column is left untouched.
func (s *Syncer) EnsureAccessColumn(ctx context.Context, userEmail string) error {
	rows, err := s.gateway.ReadRange(ctx, s.sheet, s.rangeSpec)
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return shared.ErrNoSheetData
	}

	for _, header := range rows[0] {
		if header == userEmail {
			return nil
		}
	}

	col := ColumnName(len(rows[0]))
	cells := make([]string, len(rows))
	cells[0] = userEmail
	for i := 1; i < len(cells); i++ {
		cells[i] = models.AccessGiven.Cell()
	}

	cellRange := fmt.Sprintf("%s1:%s%d", col, col, len(rows))
	if err := s.gateway.WriteColumn(ctx, s.sheet, cellRange, cells); err != nil {
		return fmt.Errorf("failed to provision access column: %w", err)
	}

	return nil
}

// ColumnName converts a zero-based column index to its A1-notation letters.
func ColumnName(index int) string {
	name := ""
	for index >= 0 {
		name = string(rune('A'+index%26)) + name
		index = index/26 - 1
	}
	return name
}

func containsEntry(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
