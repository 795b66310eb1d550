package session

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursedeck/internal/catalog"
	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/shared"
)

// rosterEmailColumn is the position of the email cell in a roster row.
const rosterEmailColumn = 2

// Roster records every signed-in user on the roster sheet.
//
// Rows are [timestamp, name, email, picture], deduplicated by email so
// repeat sign-ins never append twice.
type Roster struct {
	gateway   catalog.Gateway
	sheet     string
	rangeSpec string
	logger    *log.Logger
}

// NewRoster creates a roster writing through the given gateway.
func NewRoster(gateway catalog.Gateway, sheet, rangeSpec string, logger *log.Logger) *Roster {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Roster{gateway: gateway, sheet: sheet, rangeSpec: rangeSpec, logger: logger}
}

// Ensure appends the user to the roster unless their email is already listed.
//
// Returns true when a new row was appended.
func (r *Roster) Ensure(ctx context.Context, user models.User) (bool, error) {
	exists, err := r.Contains(ctx, user.Email)
	if err != nil {
		return false, err
	}
	if exists {
		r.logger.Debugf("%s already on roster", user.Email)
		return false, nil
	}

	row := []string{
		time.Now().UTC().Format(time.RFC3339),
		user.Name,
		user.Email,
		user.Picture,
	}

	if err := r.gateway.AppendRow(ctx, r.sheet, r.rangeSpec, row); err != nil {
		return false, fmt.Errorf("failed to append roster row: %w", err)
	}

	return true, nil
}

// Contains reports whether the given email already has a roster row.
func (r *Roster) Contains(ctx context.Context, email string) (bool, error) {
	rows, err := r.gateway.ReadRange(ctx, r.sheet, r.rangeSpec)
	if err != nil {
		return false, fmt.Errorf("failed to read roster: %w", err)
	}

	for _, row := range rows {
		if len(row) > rosterEmailColumn && row[rosterEmailColumn] == email {
			return true, nil
		}
	}

	return false, nil
}

// Users returns every roster entry in sheet order.
func (r *Roster) Users(ctx context.Context) ([]models.User, error) {
	rows, err := r.gateway.ReadRange(ctx, r.sheet, r.rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	var users []models.User
	for _, row := range rows {
		if len(row) <= rosterEmailColumn || row[rosterEmailColumn] == "" {
			continue
		}
		user := models.User{Email: row[rosterEmailColumn]}
		if len(row) > 1 {
			user.Name = row[1]
		}
		if len(row) > 3 {
			user.Picture = row[3]
		}
		users = append(users, user)
	}

	return users, nil
}
