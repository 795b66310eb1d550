// Google Sheets v4 values API client
//
// Endpoint shapes based on https://developers.google.com/sheets/api/reference/rest/v4/spreadsheets.values
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/coursedeck/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://sheets.googleapis.com"

const (
	maxAttempts    = 3
	defaultBackoff = time.Second
	defaultRate    = 5.0 // requests per second
)

// APIError carries the remote status code and message for a failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sheets API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("sheets API error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap classifies the error against the shared sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return shared.ErrUnauthorized
	case http.StatusTooManyRequests:
		return shared.ErrRateLimited
	default:
		return shared.ErrRemote
	}
}

// Client provides read and write access to one spreadsheet, authenticated
// with a bearer credential supplied by the identity session.
type Client struct {
	baseURL       string
	spreadsheetID string
	token         string
	httpClient    *http.Client
	limiter       *rate.Limiter
	backoff       time.Duration
}

// NewClient creates a gateway for the given spreadsheet.
func NewClient(spreadsheetID string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		baseURL:       defaultBaseURL,
		spreadsheetID: spreadsheetID,
		httpClient:    client,
		limiter:       rate.NewLimiter(rate.Limit(defaultRate), 1),
		backoff:       defaultBackoff,
	}
}

// Authenticate stores the bearer credential used on subsequent requests.
// Expects credentials["access_token"].
func (c *Client) Authenticate(ctx context.Context, credentials map[string]string) error {
	token, ok := credentials["access_token"]
	if !ok || token == "" {
		return fmt.Errorf("%w: missing access_token", shared.ErrMissingCredentials)
	}

	c.token = token
	return nil
}

// valueRange mirrors the API's ValueRange resource.
type valueRange struct {
	Range          string     `json:"range,omitempty"`
	MajorDimension string     `json:"majorDimension,omitempty"`
	Values         [][]string `json:"values,omitempty"`
}

// errorBody mirrors the API's error envelope.
type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ReadRange fetches the rows of sheet!rangeSpec as a slice of string cells.
//
// Rows may be ragged; callers must tolerate short rows.
func (c *Client) ReadRange(ctx context.Context, sheet, rangeSpec string) ([][]string, error) {
	endpoint := fmt.Sprintf("/v4/spreadsheets/%s/values/%s", c.spreadsheetID, url.PathEscape(sheet+"!"+rangeSpec))

	var vr valueRange
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &vr); err != nil {
		return nil, err
	}

	return vr.Values, nil
}

// AppendRow appends a single row after the last data row of sheet!rangeSpec.
func (c *Client) AppendRow(ctx context.Context, sheet, rangeSpec string, row []string) error {
	endpoint := fmt.Sprintf(
		"/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		c.spreadsheetID, url.PathEscape(sheet+"!"+rangeSpec),
	)

	body := valueRange{MajorDimension: "ROWS", Values: [][]string{row}}
	return c.do(ctx, http.MethodPost, endpoint, &body, nil)
}

// WriteCell overwrites the single cell at sheet!cellAddress (e.g. "F3").
func (c *Client) WriteCell(ctx context.Context, sheet, cellAddress, value string) error {
	endpoint := fmt.Sprintf(
		"/v4/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED",
		c.spreadsheetID, url.PathEscape(sheet+"!"+cellAddress),
	)

	body := valueRange{Values: [][]string{{value}}}
	return c.do(ctx, http.MethodPut, endpoint, &body, nil)
}

// WriteColumn overwrites a vertical run of cells starting at sheet!startCell.
//
// Used when provisioning a new user's access column.
func (c *Client) WriteColumn(ctx context.Context, sheet, cellRange string, cells []string) error {
	endpoint := fmt.Sprintf(
		"/v4/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED",
		c.spreadsheetID, url.PathEscape(sheet+"!"+cellRange),
	)

	values := make([][]string, len(cells))
	for i, cell := range cells {
		values[i] = []string{cell}
	}

	body := valueRange{MajorDimension: "ROWS", Values: values}
	return c.do(ctx, http.MethodPut, endpoint, &body, nil)
}

// do performs an authenticated request with rate limiting and 429 backoff.
//
// The request body is marshaled once up front; each attempt sends a fresh
// reader over the bytes so retries never reuse a consumed one.
func (c *Client) do(ctx context.Context, method, endpoint string, body *valueRange, result any) error {
	if c.token == "" {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	delay := c.backoff
	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		err := c.roundTrip(ctx, method, endpoint, payload, result)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		retryable := errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
		if !retryable || attempt >= maxAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, payload []byte, result any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var eb errorBody
		if err := json.Unmarshal(raw, &eb); err == nil && eb.Error.Message != "" {
			apiErr.Message = eb.Error.Message
		} else {
			apiErr.Message = string(raw)
		}

		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
