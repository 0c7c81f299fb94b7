// Package auth obtains and caches Google OAuth2 tokens for the Gmail backend.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// AuthTimeout bounds the wait for the browser redirect
const AuthTimeout = 5 * time.Minute

// OAuth2Config holds OAuth2 configuration
type OAuth2Config struct {
	CredentialsPath string
	TokenPath       string
	Scopes          []string

	// ListenAddr is the loopback address of the redirect server
	ListenAddr string
	// OpenURL presents the authorization URL to the user. The default
	// prints it to Out.
	OpenURL func(authURL string)
	Out     io.Writer

	mu sync.Mutex
}

// NewOAuth2Config creates a new OAuth2 configuration
func NewOAuth2Config(credentialsPath, tokenPath string, scopes ...string) *OAuth2Config {
	return &OAuth2Config{
		CredentialsPath: credentialsPath,
		TokenPath:       tokenPath,
		Scopes:          scopes,
		ListenAddr:      "127.0.0.1:0",
		Out:             os.Stdout,
	}
}

// LoadCredentials loads the OAuth2 client from the credentials file
func (c *OAuth2Config) LoadCredentials() (*oauth2.Config, error) {
	data, err := os.ReadFile(c.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("could not read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, c.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("could not parse credentials file: %w", err)
	}
	return cfg, nil
}

// LoadToken loads the cached token
func (c *OAuth2Config) LoadToken() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := os.ReadFile(c.TokenPath)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("could not parse OAuth token: %w", err)
	}
	return token, nil
}

// SaveToken writes the token with owner-only permissions. The file is
// replaced atomically.
func (c *OAuth2Config) SaveToken(token *oauth2.Token) error {
	if strings.TrimSpace(c.TokenPath) == "" {
		return fmt.Errorf("empty token path")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	dir := filepath.Dir(c.TokenPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("could not save OAuth token: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("could not save OAuth token: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(f.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(f.Name(), c.TokenPath)
}

// TokenSource returns a token source that starts from the cached token
// (authenticating in the browser when there is none or it was revoked)
// and persists every refreshed token.
func (c *OAuth2Config) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cfg, err := c.LoadCredentials()
	if err != nil {
		return nil, err
	}

	token, err := c.LoadToken()
	if err != nil {
		if token, err = c.authenticate(ctx, cfg); err != nil {
			return nil, err
		}
	}

	if !token.Valid() {
		refreshed, err := cfg.TokenSource(ctx, token).Token()
		switch {
		case err == nil:
			token = refreshed
		case isRevoked(err):
			if token, err = c.authenticate(ctx, cfg); err != nil {
				return nil, fmt.Errorf("re-authentication failed: %w", err)
			}
		default:
			return nil, fmt.Errorf("token refresh failed: %w", err)
		}
	}
	if err := c.SaveToken(token); err != nil {
		return nil, err
	}

	return &savingSource{
		base: oauth2.ReuseTokenSource(token, cfg.TokenSource(ctx, token)),
		last: token.AccessToken,
		save: c.SaveToken,
	}, nil
}

func isRevoked(err error) bool {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
		return true
	}
	return strings.Contains(err.Error(), "invalid_grant") ||
		strings.Contains(err.Error(), "Token has been expired or revoked")
}

// savingSource persists tokens whenever the access token changes
type savingSource struct {
	base oauth2.TokenSource
	save func(*oauth2.Token) error

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	t, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.AccessToken != s.last {
		s.last = t.AccessToken
		_ = s.save(t)
	}
	return t, nil
}

// authenticate runs the loopback redirect flow
func (c *OAuth2Config) authenticate(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	addr := c.ListenAddr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not start redirect listener: %w", err)
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			code := q.Get("code")
			if q.Get("state") != state || code == "" {
				http.Error(w, "Authorization failed: missing code or state mismatch.", http.StatusBadRequest)
				select {
				case errCh <- fmt.Errorf("authorization code not received"):
				default:
				}
				return
			}
			_, _ = io.WriteString(w, "<html><body><h2>Authorization successful</h2><p>You can close this window and return to inboxtui.</p></body></html>")
			select {
			case codeCh <- code:
			default:
			}
		}),
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	local := *cfg
	local.RedirectURL = "http://" + ln.Addr().String()
	authURL := local.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.present(authURL)

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, fmt.Errorf("local server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(AuthTimeout):
		return nil, fmt.Errorf("authorization timeout exceeded")
	}

	token, err := local.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("could not exchange authorization code for token: %w", err)
	}
	return token, nil
}

func (c *OAuth2Config) present(authURL string) {
	if c.OpenURL != nil {
		c.OpenURL(authURL)
		return
	}
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "\nAuthorization required\n1. Open this link: %s\n2. Grant access to inboxtui\n3. You will be redirected automatically\n\nWaiting for authorization...\n", authURL)
}

// NewGmailService creates an authenticated Gmail service. Scopes default
// to gmail.modify.
func NewGmailService(ctx context.Context, credentialsPath, tokenPath string, scopes ...string) (*gmail.Service, error) {
	if len(scopes) == 0 {
		scopes = []string{gmail.GmailModifyScope}
	}
	ts, err := NewOAuth2Config(credentialsPath, tokenPath, scopes...).TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("could not create Gmail service: %w", err)
	}
	return svc, nil
}
