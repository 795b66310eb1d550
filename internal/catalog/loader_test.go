package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/coursedeck/internal/shared"
	testutils "github.com/desertthunder/coursedeck/internal/testing"
)

func newTestLoader(gateway Gateway) *Loader {
	loader := NewLoader(gateway, "Sheet1", "A:Z", nil)
	loader.retryStep = time.Millisecond
	return loader
}

func TestLoaderLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Builds Catalog", func(t *testing.T) {
		gateway := &testutils.FakeGateway{Rows: [][]string{
			header("a@x.com"),
			{"T1", "V1", "id1", "d1", "u1", "Access Given"},
		}}

		topics, err := newTestLoader(gateway).Load(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(topics) != 1 || topics[0].Name != "T1" {
			t.Errorf("unexpected catalog %v", topics)
		}
	})

	t.Run("Empty Sheet", func(t *testing.T) {
		gateway := &testutils.FakeGateway{}

		if _, err := newTestLoader(gateway).Load(ctx, "a@x.com"); !errors.Is(err, shared.ErrNoSheetData) {
			t.Errorf("expected ErrNoSheetData, got %v", err)
		}
	})

	t.Run("Retries Transient Failures", func(t *testing.T) {
		gateway := &testutils.FakeGateway{
			Rows:         [][]string{header(), {"T1", "V1", "id1", "", ""}},
			ReadErrQueue: []error{shared.ErrRemote, shared.ErrServiceUnavailable},
		}

		topics, err := newTestLoader(gateway).Load(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(topics) != 1 {
			t.Errorf("expected one topic, got %d", len(topics))
		}
		if gateway.ReadCalls != 3 {
			t.Errorf("expected 3 read attempts, got %d", gateway.ReadCalls)
		}
	})

	t.Run("Gives Up After Max Attempts", func(t *testing.T) {
		gateway := &testutils.FakeGateway{
			ReadErrQueue: []error{shared.ErrRemote, shared.ErrRemote, shared.ErrRemote},
		}

		_, err := newTestLoader(gateway).Load(ctx, "a@x.com")
		if !errors.Is(err, shared.ErrRemote) {
			t.Errorf("expected wrapped ErrRemote, got %v", err)
		}
		if gateway.ReadCalls != 3 {
			t.Errorf("expected 3 read attempts, got %d", gateway.ReadCalls)
		}
	})

	t.Run("No Retry On Rejected Credential", func(t *testing.T) {
		gateway := &testutils.FakeGateway{
			ReadErrQueue: []error{shared.ErrUnauthorized},
		}

		_, err := newTestLoader(gateway).Load(ctx, "a@x.com")
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
		if gateway.ReadCalls != 1 {
			t.Errorf("expected a single attempt, got %d", gateway.ReadCalls)
		}
	})

	t.Run("Honors Context Cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		gateway := &testutils.FakeGateway{
			ReadErrQueue: []error{shared.ErrRemote, shared.ErrRemote, shared.ErrRemote},
		}

		_, err := newTestLoader(gateway).Load(cancelled, "a@x.com")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLoaderRows(t *testing.T) {
	rows := [][]string{header(), {"T1", "V1", "id1", "", ""}}
	gateway := &testutils.FakeGateway{Rows: rows}

	got, err := newTestLoader(gateway).Rows(context.Background())
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected raw rows back, got %v", got)
	}
}
