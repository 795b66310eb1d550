package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/coursedeck/internal/shared"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("sheet-id", server.Client())
	client.baseURL = server.URL
	client.backoff = time.Millisecond

	if err := client.Authenticate(context.Background(), map[string]string{"access_token": "test_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	return client, server
}

func TestClientAuthenticate(t *testing.T) {
	client := NewClient("sheet-id", nil)

	t.Run("Missing Token", func(t *testing.T) {
		err := client.Authenticate(context.Background(), map[string]string{})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Unauthenticated Call", func(t *testing.T) {
		_, err := client.ReadRange(context.Background(), "Sheet1", "A:Z")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("With Token", func(t *testing.T) {
		err := client.Authenticate(context.Background(), map[string]string{"access_token": "tok"})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestReadRange(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotAuth, gotPath string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			json.NewEncoder(w).Encode(map[string]any{
				"range":  "Sheet1!A1:B2",
				"values": [][]string{{"Topic", "a@x.com"}, {"T1", "Finish"}},
			})
		}))

		rows, err := client.ReadRange(context.Background(), "Sheet1", "A:Z")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotAuth != "Bearer test_token" {
			t.Errorf("expected bearer header, got %q", gotAuth)
		}
		if !strings.Contains(gotPath, "/v4/spreadsheets/sheet-id/values/") {
			t.Errorf("unexpected path %q", gotPath)
		}
		if len(rows) != 2 || rows[1][1] != "Finish" {
			t.Errorf("unexpected rows %v", rows)
		}
	})

	t.Run("Empty Sheet", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"range": "Sheet1!A:Z"})
		}))

		rows, err := client.ReadRange(context.Background(), "Sheet1", "A:Z")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected no rows, got %v", rows)
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 401, "message": "Invalid Credentials", "status": "UNAUTHENTICATED"},
			})
		}))

		_, err := client.ReadRange(context.Background(), "Sheet1", "A:Z")
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatal("expected *APIError")
		}
		if apiErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", apiErr.StatusCode)
		}
		if apiErr.Message != "Invalid Credentials" {
			t.Errorf("expected remote message, got %q", apiErr.Message)
		}
	})

	t.Run("Remote Error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("not json"))
		}))

		_, err := client.ReadRange(context.Background(), "Sheet1", "A:Z")
		if !errors.Is(err, shared.ErrRemote) {
			t.Errorf("expected ErrRemote, got %v", err)
		}
		if errors.Is(err, shared.ErrUnauthorized) {
			t.Error("403 should not classify as unauthorized")
		}
	})
}

func TestRetryOnRateLimit(t *testing.T) {
	t.Run("Retries Then Succeeds", func(t *testing.T) {
		attempts := 0
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"values": [][]string{{"ok"}}})
		}))

		rows, err := client.ReadRange(context.Background(), "Sheet1", "A:Z")
		if err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		if attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", attempts)
		}
		if len(rows) != 1 {
			t.Errorf("unexpected rows %v", rows)
		}
	})

	t.Run("Gives Up After Max Attempts", func(t *testing.T) {
		attempts := 0
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusTooManyRequests)
		}))

		_, err := client.ReadRange(context.Background(), "Sheet1", "A:Z")
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
		if attempts != maxAttempts {
			t.Errorf("expected %d attempts, got %d", maxAttempts, attempts)
		}
	})

	t.Run("No Retry On Other Errors", func(t *testing.T) {
		attempts := 0
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := client.ReadRange(context.Background(), "Sheet1", "A:Z")
		if err == nil {
			t.Fatal("expected error")
		}
		if attempts != 1 {
			t.Errorf("expected single attempt, got %d", attempts)
		}
	})
}

func TestWriteCell(t *testing.T) {
	var gotMethod, gotQuery string
	var gotBody valueRange
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"updatedCells": 1})
	}))

	if err := client.WriteCell(context.Background(), "Sheet1", "F3", "Finish"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("expected PUT, got %s", gotMethod)
	}
	if !strings.Contains(gotQuery, "valueInputOption=USER_ENTERED") {
		t.Errorf("expected USER_ENTERED option, got %q", gotQuery)
	}
	if len(gotBody.Values) != 1 || len(gotBody.Values[0]) != 1 || gotBody.Values[0][0] != "Finish" {
		t.Errorf("unexpected body %v", gotBody.Values)
	}
}

func TestAppendRow(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	var gotBody valueRange
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"updates": map[string]any{"updatedRows": 1}})
	}))

	row := []string{"2024-01-01T00:00:00Z", "Ada", "ada@x.com", ""}
	if err := client.AppendRow(context.Background(), "Sheet2", "A:D", row); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("expected append path, got %q", gotPath)
	}
	if !strings.Contains(gotQuery, "insertDataOption=INSERT_ROWS") {
		t.Errorf("expected INSERT_ROWS option, got %q", gotQuery)
	}
	if gotBody.MajorDimension != "ROWS" {
		t.Errorf("expected ROWS dimension, got %q", gotBody.MajorDimension)
	}
	if len(gotBody.Values) != 1 || gotBody.Values[0][1] != "Ada" {
		t.Errorf("unexpected body %v", gotBody.Values)
	}
}

func TestWriteColumn(t *testing.T) {
	var gotBody valueRange
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"updatedCells": 3})
	}))

	cells := []string{"a@x.com", "Access Given", "Access Given"}
	if err := client.WriteColumn(context.Background(), "Sheet1", "F1:F3", cells); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(gotBody.Values) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(gotBody.Values))
	}
	if gotBody.Values[0][0] != "a@x.com" || gotBody.Values[2][0] != "Access Given" {
		t.Errorf("unexpected column payload %v", gotBody.Values)
	}
}
