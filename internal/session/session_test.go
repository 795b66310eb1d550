package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/repositories"
	"github.com/desertthunder/coursedeck/internal/shared"
	testutils "github.com/desertthunder/coursedeck/internal/testing"
	"golang.org/x/oauth2"
)

type stubProvisioner struct {
	emails []string
	err    error
}

func (p *stubProvisioner) EnsureAccessColumn(ctx context.Context, userEmail string) error {
	if p.err != nil {
		return p.err
	}
	p.emails = append(p.emails, userEmail)
	return nil
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Credentials.Google.ClientID = "client-id"
	config.Credentials.Google.ClientSecret = "client-secret"
	return config
}

// newTestManager wires a manager against an in-memory store, a fake roster
// gateway and a userinfo endpoint served by handler.
func newTestManager(t *testing.T, handler http.HandlerFunc) (*Manager, *testutils.FakeGateway, *stubProvisioner) {
	t.Helper()

	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	userinfo := httptest.NewServer(handler)
	t.Cleanup(userinfo.Close)

	gateway := &testutils.FakeGateway{Rows: [][]string{{"2024-01-01T00:00:00Z", "Existing", "existing@x.com", ""}}}
	provisioner := &stubProvisioner{}

	store := repositories.NewSessionRepository(db)
	roster := NewRoster(gateway, "Sheet2", "A:D", nil)

	manager := NewManager(ManagerOpts{
		Config:      testConfig(),
		Store:       store,
		Watched:     repositories.NewWatchedRepository(db),
		Progress:    repositories.NewProgressRepository(db),
		Roster:      roster,
		Provisioner: provisioner,
	})
	manager.userinfoURL = userinfo.URL
	manager.httpClient = userinfo.Client()

	return manager, gateway, provisioner
}

func profileHandler(name, email, picture string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name":%q,"email":%q,"picture":%q}`, name, email, picture)
	}
}

func TestManagerEstablish(t *testing.T) {
	ctx := context.Background()
	token := &oauth2.Token{AccessToken: "test-token"}

	t.Run("Stores Session And Registers User", func(t *testing.T) {
		manager, gateway, provisioner := newTestManager(t, profileHandler("Test User", "test@x.com", "https://example.com/p.png"))

		session, err := manager.Establish(ctx, token)
		if err != nil {
			t.Fatalf("Establish failed: %v", err)
		}

		if session.User().Email != "test@x.com" {
			t.Errorf("unexpected email %s", session.User().Email)
		}
		if session.Token() != "test-token" {
			t.Errorf("unexpected token %s", session.Token())
		}

		current, err := manager.Current()
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if current.User().Name != "Test User" {
			t.Errorf("unexpected stored name %s", current.User().Name)
		}

		if len(gateway.Appended) != 1 {
			t.Fatalf("expected one roster row, got %d", len(gateway.Appended))
		}
		row := gateway.Appended[0]
		if row[1] != "Test User" || row[2] != "test@x.com" {
			t.Errorf("unexpected roster row %v", row)
		}

		if len(provisioner.emails) != 1 || provisioner.emails[0] != "test@x.com" {
			t.Errorf("expected access column provisioning, got %v", provisioner.emails)
		}
	})

	t.Run("Rejected Credential", func(t *testing.T) {
		manager, _, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		if _, err := manager.Establish(ctx, &oauth2.Token{AccessToken: "bad"}); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
		if _, err := manager.Current(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("no session should be stored, got %v", err)
		}
	})

	t.Run("Profile Missing Email", func(t *testing.T) {
		manager, _, _ := newTestManager(t, profileHandler("No Email", "", ""))

		if _, err := manager.Establish(ctx, token); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("Roster Failure Does Not Fail Sign In", func(t *testing.T) {
		manager, gateway, _ := newTestManager(t, profileHandler("Test User", "test@x.com", ""))
		gateway.ReadErrQueue = []error{shared.ErrRemote}

		if _, err := manager.Establish(ctx, token); err != nil {
			t.Fatalf("Establish should tolerate roster failures, got %v", err)
		}
		if _, err := manager.Current(); err != nil {
			t.Errorf("session should be stored, got %v", err)
		}
	})
}

func TestManagerSignOut(t *testing.T) {
	ctx := context.Background()

	t.Run("Requires Active Session", func(t *testing.T) {
		manager, _, _ := newTestManager(t, profileHandler("Test User", "test@x.com", ""))

		if err := manager.SignOut(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Clears Session", func(t *testing.T) {
		manager, _, _ := newTestManager(t, profileHandler("Test User", "test@x.com", ""))

		if _, err := manager.Establish(ctx, &oauth2.Token{AccessToken: "test-token"}); err != nil {
			t.Fatalf("Establish failed: %v", err)
		}

		if err := manager.SignOut(); err != nil {
			t.Fatalf("SignOut failed: %v", err)
		}
		if _, err := manager.Current(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected cleared session, got %v", err)
		}
	})

	t.Run("Clears Watched And Progress State", func(t *testing.T) {
		manager, _, _ := newTestManager(t, profileHandler("Test User", "test@x.com", ""))

		if _, err := manager.Establish(ctx, &oauth2.Token{AccessToken: "test-token"}); err != nil {
			t.Fatalf("Establish failed: %v", err)
		}
		if err := manager.watched.Create(models.NewWatchedVideo(0, "T1", "id1")); err != nil {
			t.Fatalf("failed to record watched video: %v", err)
		}
		if err := manager.progress.Save(models.TopicProgress{Topic: "T1", Total: 2, Watched: 1, Percentage: 50}); err != nil {
			t.Fatalf("failed to save progress: %v", err)
		}

		if err := manager.SignOut(); err != nil {
			t.Fatalf("SignOut failed: %v", err)
		}

		watched, err := manager.watched.WatchedMap()
		if err != nil {
			t.Fatalf("WatchedMap failed: %v", err)
		}
		if len(watched) != 0 {
			t.Errorf("watched map still holds %v", watched)
		}

		snapshots, err := manager.progress.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(snapshots) != 0 {
			t.Errorf("progress snapshots still stored: %v", snapshots)
		}
	})
}

func TestManagerInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("Drops Session On Rejected Credential", func(t *testing.T) {
		manager, _, _ := newTestManager(t, profileHandler("Test User", "test@x.com", ""))
		if _, err := manager.Establish(ctx, &oauth2.Token{AccessToken: "test-token"}); err != nil {
			t.Fatalf("Establish failed: %v", err)
		}

		if !manager.Invalidate(fmt.Errorf("wrapped: %w", shared.ErrUnauthorized)) {
			t.Error("expected invalidation for rejected credential")
		}
		if _, err := manager.Current(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected cleared session, got %v", err)
		}
	})

	t.Run("Ignores Other Errors", func(t *testing.T) {
		manager, _, _ := newTestManager(t, profileHandler("Test User", "test@x.com", ""))
		if _, err := manager.Establish(ctx, &oauth2.Token{AccessToken: "test-token"}); err != nil {
			t.Fatalf("Establish failed: %v", err)
		}

		if manager.Invalidate(shared.ErrRemote) {
			t.Error("remote errors should not drop the session")
		}
		if manager.Invalidate(nil) {
			t.Error("nil error should not drop the session")
		}
		if _, err := manager.Current(); err != nil {
			t.Errorf("session should survive, got %v", err)
		}
	})
}

func TestRoster(t *testing.T) {
	ctx := context.Background()

	t.Run("Appends New User", func(t *testing.T) {
		gateway := &testutils.FakeGateway{}
		roster := NewRoster(gateway, "Sheet2", "A:D", nil)

		added, err := roster.Ensure(ctx, models.User{Name: "Test", Email: "test@x.com", Picture: "p"})
		if err != nil {
			t.Fatalf("Ensure failed: %v", err)
		}
		if !added {
			t.Error("expected roster append")
		}
		if len(gateway.Appended) != 1 || gateway.Appended[0][2] != "test@x.com" {
			t.Errorf("unexpected roster rows %v", gateway.Appended)
		}
	})

	t.Run("Skips Existing User", func(t *testing.T) {
		gateway := &testutils.FakeGateway{Rows: [][]string{
			{"2024-01-01T00:00:00Z", "Test", "test@x.com", ""},
		}}
		roster := NewRoster(gateway, "Sheet2", "A:D", nil)

		added, err := roster.Ensure(ctx, models.User{Name: "Test", Email: "test@x.com"})
		if err != nil {
			t.Fatalf("Ensure failed: %v", err)
		}
		if added {
			t.Error("expected dedup by email")
		}
		if len(gateway.Appended) != 0 {
			t.Errorf("expected no appends, got %v", gateway.Appended)
		}
	})

	t.Run("Users", func(t *testing.T) {
		gateway := &testutils.FakeGateway{Rows: [][]string{
			{"2024-01-01T00:00:00Z", "A", "a@x.com", "pa"},
			{"short row"},
			{"2024-01-02T00:00:00Z", "B", "b@x.com"},
		}}
		roster := NewRoster(gateway, "Sheet2", "A:D", nil)

		users, err := roster.Users(ctx)
		if err != nil {
			t.Fatalf("Users failed: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected two users, got %d", len(users))
		}
		if users[0].Picture != "pa" || users[1].Picture != "" {
			t.Errorf("unexpected pictures %v", users)
		}
	})
}
