package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrUnauthorized     = fmt.Errorf("credential rejected")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Spreadsheet API errors
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrRemote             = fmt.Errorf("remote API error")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoSheetData        = fmt.Errorf("no data found in sheet")

	// Catalog errors
	ErrTopicNotFound = fmt.Errorf("topic not found")
	ErrVideoNotFound = fmt.Errorf("video not found")
	ErrUserNotFound  = fmt.Errorf("user not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
