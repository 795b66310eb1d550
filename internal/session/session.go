// package session manages the signed-in identity: the browser OAuth flow,
// profile lookup, local persistence and roster registration.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/repositories"
	"github.com/desertthunder/coursedeck/internal/server"
	"github.com/desertthunder/coursedeck/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// oauthScopes cover spreadsheet access plus the profile fields shown in the UI.
var oauthScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Provisioner prepares remote per-user state after a successful sign-in.
type Provisioner interface {
	EnsureAccessColumn(ctx context.Context, userEmail string) error
}

// Authenticator receives the fresh credential so dependent clients can use it
// before the post-sign-in steps run.
type Authenticator interface {
	Authenticate(ctx context.Context, credentials map[string]string) error
}

// Manager owns the sign-in lifecycle.
//
// SignIn runs the authorization code flow against Google, resolves the
// user's profile and stores the resulting session locally. Roster
// registration and access-column provisioning run afterwards as best-effort
// steps; their failures are logged but never fail the sign-in.
type Manager struct {
	oauth         *oauth2.Config
	serverAddr    string
	store         *repositories.SessionRepository
	watched       *repositories.WatchedRepository
	progress      *repositories.ProgressRepository
	roster        *Roster
	provisioner   Provisioner
	authenticator Authenticator
	httpClient    *http.Client
	userinfoURL   string
	logger        *log.Logger
}

// ManagerOpts contains configuration options for creating a Manager.
//
// Roster, Provisioner and Authenticator may be nil, disabling the
// corresponding post-sign-in step. Watched and Progress may be nil, in which
// case sign-out only removes the stored credential.
type ManagerOpts struct {
	Config        *shared.Config
	Store         *repositories.SessionRepository
	Watched       *repositories.WatchedRepository
	Progress      *repositories.ProgressRepository
	Roster        *Roster
	Provisioner   Provisioner
	Authenticator Authenticator
	Logger        *log.Logger
}

// NewManager creates a session manager from the application config.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Manager{
		oauth: &oauth2.Config{
			ClientID:     opts.Config.Credentials.Google.ClientID,
			ClientSecret: opts.Config.Credentials.Google.ClientSecret,
			RedirectURL:  opts.Config.Credentials.Google.RedirectURI,
			Scopes:       oauthScopes,
			Endpoint:     google.Endpoint,
		},
		serverAddr:    fmt.Sprintf("%s:%d", opts.Config.Server.Host, opts.Config.Server.Port),
		store:         opts.Store,
		watched:       opts.Watched,
		progress:      opts.Progress,
		roster:        opts.Roster,
		provisioner:   opts.Provisioner,
		authenticator: opts.Authenticator,
		httpClient:    http.DefaultClient,
		userinfoURL:   userInfoURL,
		logger:        opts.Logger,
	}
}

// SignIn runs the full browser OAuth flow and persists the resulting session.
func (m *Manager) SignIn(ctx context.Context) (*models.Session, error) {
	token, err := m.authorize(ctx)
	if err != nil {
		return nil, err
	}

	return m.Establish(ctx, token)
}

// Establish resolves the user profile behind the token and stores the session.
//
// Split from [Manager.SignIn] so callers holding an access token (tests,
// re-authentication) can skip the browser flow.
func (m *Manager) Establish(ctx context.Context, token *oauth2.Token) (*models.Session, error) {
	user, err := m.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	session := models.NewSession(user, token.AccessToken)
	if err := m.store.Create(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if m.authenticator != nil {
		if err := m.authenticator.Authenticate(ctx, map[string]string{"access_token": token.AccessToken}); err != nil {
			m.logger.Warnf("gateway authentication failed: %v", err)
		}
	}

	if m.roster != nil {
		if _, err := m.roster.Ensure(ctx, user); err != nil {
			m.logger.Warnf("roster registration failed for %s: %v", user.Email, err)
		}
	}

	if m.provisioner != nil {
		if err := m.provisioner.EnsureAccessColumn(ctx, user.Email); err != nil {
			m.logger.Warnf("access column provisioning failed for %s: %v", user.Email, err)
		}
	}

	return session, nil
}

// Current returns the active session, or [shared.ErrNotAuthenticated].
func (m *Manager) Current() (*models.Session, error) {
	return m.store.Current()
}

// SignOut removes the active session's stored credential along with all
// locally persisted watch and progress state, so the next account to sign in
// starts clean. The remote credential is not revoked.
func (m *Manager) SignOut() error {
	session, err := m.store.Current()
	if err != nil {
		return err
	}

	if err := m.store.Delete(session.ID()); err != nil {
		return err
	}

	return m.clearLocalState()
}

// clearLocalState wipes the watched and progress tables.
func (m *Manager) clearLocalState() error {
	if m.watched != nil {
		if err := m.watched.Clear(); err != nil {
			return fmt.Errorf("failed to clear watched videos: %w", err)
		}
	}
	if m.progress != nil {
		if err := m.progress.Clear(); err != nil {
			return fmt.Errorf("failed to clear progress snapshots: %w", err)
		}
	}
	return nil
}

// Invalidate drops the active session when err indicates a rejected or
// expired credential, forcing the next command to re-authenticate.
//
// Returns true when the session was cleared.
func (m *Manager) Invalidate(err error) bool {
	if err == nil {
		return false
	}
	if !errors.Is(err, shared.ErrUnauthorized) && !errors.Is(err, shared.ErrTokenExpired) {
		return false
	}

	session, lookupErr := m.store.Current()
	if lookupErr != nil {
		return false
	}

	if err := m.store.Delete(session.ID()); err != nil {
		m.logger.Warnf("failed to drop invalid session: %v", err)
		return false
	}

	m.logger.Infof("dropped rejected credential for %s", session.User().Email)
	return true
}

// AuthURL returns the provider authorization URL for the given state token.
func (m *Manager) AuthURL(state string) string {
	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// authorize executes the OAuth2 authorization flow with a local HTTP server.
func (m *Manager) authorize(ctx context.Context) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := m.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(m.oauth, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	httpServer := &http.Server{
		Addr:    m.serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		m.logger.Infof("starting sign-in server at %v", m.serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if err := shared.OpenBrowser(authURL); err != nil {
		m.logger.Warnf("failed to open browser automatically %v", err)
		m.logger.Printf("Please open this URL in your browser:\n%s\n", authURL)
	}

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		m.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// fetchUserInfo resolves the profile behind an access token.
func (m *Manager) fetchUserInfo(ctx context.Context, accessToken string) (models.User, error) {
	var user models.User

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.userinfoURL, nil)
	if err != nil {
		return user, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return user, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return user, fmt.Errorf("%w: user info request returned 401", shared.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return user, fmt.Errorf("%w: user info request returned %d", shared.ErrRemote, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return user, fmt.Errorf("failed to decode user info: %w", err)
	}

	if user.Email == "" {
		return user, fmt.Errorf("%w: user info response missing email", shared.ErrAuthFailed)
	}

	return user, nil
}
