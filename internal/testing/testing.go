// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

// CellWrite records one WriteCell call against a [FakeGateway].
type CellWrite struct {
	Sheet   string
	Address string
	Value   string
}

// ColumnWrite records one WriteColumn call against a [FakeGateway].
type ColumnWrite struct {
	Sheet     string
	CellRange string
	Cells     []string
}

// FakeGateway is an in-memory test double for the catalog Gateway interface.
//
// Reads serve the configured rows; ReadErrQueue errors are consumed first,
// one per call, to simulate transient failures. All writes are recorded.
type FakeGateway struct {
	Rows         [][]string
	ReadErrQueue []error
	WriteCellErr error
	AppendErr    error
	ColumnErr    error

	ReadCalls    int
	CellWrites   []CellWrite
	ColumnWrites []ColumnWrite
	Appended     [][]string
}

func (g *FakeGateway) ReadRange(ctx context.Context, sheet, rangeSpec string) ([][]string, error) {
	g.ReadCalls++
	if len(g.ReadErrQueue) > 0 {
		err := g.ReadErrQueue[0]
		g.ReadErrQueue = g.ReadErrQueue[1:]
		if err != nil {
			return nil, err
		}
	}
	return g.Rows, nil
}

func (g *FakeGateway) AppendRow(ctx context.Context, sheet, rangeSpec string, row []string) error {
	if g.AppendErr != nil {
		return g.AppendErr
	}
	g.Appended = append(g.Appended, row)
	return nil
}

func (g *FakeGateway) WriteCell(ctx context.Context, sheet, cellAddress, value string) error {
	if g.WriteCellErr != nil {
		return g.WriteCellErr
	}
	g.CellWrites = append(g.CellWrites, CellWrite{Sheet: sheet, Address: cellAddress, Value: value})
	return nil
}

func (g *FakeGateway) WriteColumn(ctx context.Context, sheet, cellRange string, cells []string) error {
	if g.ColumnErr != nil {
		return g.ColumnErr
	}
	g.ColumnWrites = append(g.ColumnWrites, ColumnWrite{Sheet: sheet, CellRange: cellRange, Cells: cells})
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
