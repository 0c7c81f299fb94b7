package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenServer fakes the Google token endpoint
type tokenServer struct {
	mu       sync.Mutex
	grants   []string
	revoked  bool
	issueSeq int
}

func (s *tokenServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	s.mu.Lock()
	defer s.mu.Unlock()
	grant := r.PostForm.Get("grant_type")
	s.grants = append(s.grants, grant)

	w.Header().Set("Content-Type", "application/json")
	if grant == "refresh_token" && s.revoked {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
		return
	}
	if grant == "authorization_code" && r.PostForm.Get("code") != "abc" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_request"}`))
		return
	}
	s.issueSeq++
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  fmt.Sprintf("access-%d", s.issueSeq),
		"refresh_token": "refresh",
		"token_type":    "Bearer",
		"expires_in":    3600,
	})
}

func (s *tokenServer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.grants...)
}

func writeCredentials(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	path := filepath.Join(dir, "credentials.json")
	data := fmt.Sprintf(`{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.example.com/auth","token_uri":%q,"redirect_uris":["http://localhost"]}}`, tokenURL)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func newTestConfig(t *testing.T) (*OAuth2Config, *tokenServer) {
	t.Helper()
	ts := &tokenServer{}
	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := NewOAuth2Config(writeCredentials(t, dir, srv.URL), filepath.Join(dir, "state", "token.json"), "scope-a")
	cfg.OpenURL = func(string) { t.Error("unexpected authorization prompt") }
	return cfg, ts
}

// approve simulates the browser following the authorization URL
func approve(t *testing.T, state func(string) string) func(string) {
	return func(authURL string) {
		u, err := url.Parse(authURL)
		if !assert.NoError(t, err) {
			return
		}
		q := u.Query()
		assert.Equal(t, "offline", q.Get("access_type"))
		go func() {
			resp, err := http.Get(q.Get("redirect_uri") + "/?code=abc&state=" + url.QueryEscape(state(q.Get("state"))))
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
}

func TestLoadCredentials(t *testing.T) {
	cfg := NewOAuth2Config(filepath.Join(t.TempDir(), "missing.json"), "")
	_, err := cfg.LoadCredentials()
	assert.ErrorContains(t, err, "could not read credentials file")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	cfg = NewOAuth2Config(bad, "")
	_, err = cfg.LoadCredentials()
	assert.ErrorContains(t, err, "could not parse credentials file")

	good := writeCredentials(t, t.TempDir(), "https://oauth.example.com/token")
	oc, err := NewOAuth2Config(good, "", "s1", "s2").LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "id", oc.ClientID)
	assert.Equal(t, []string{"s1", "s2"}, oc.Scopes)
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	cfg := NewOAuth2Config("", path)
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	require.NoError(t, cfg.SaveToken(&oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: expiry}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := cfg.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "a", got.AccessToken)
	assert.Equal(t, "r", got.RefreshToken)
	assert.True(t, got.Expiry.Equal(expiry))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestSaveToken_EmptyPath(t *testing.T) {
	assert.Error(t, NewOAuth2Config("", "  ").SaveToken(&oauth2.Token{}))
}

func TestLoadToken_Errors(t *testing.T) {
	cfg := NewOAuth2Config("", filepath.Join(t.TempDir(), "none.json"))
	_, err := cfg.LoadToken()
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o600))
	_, err = NewOAuth2Config("", bad).LoadToken()
	assert.ErrorContains(t, err, "could not parse OAuth token")
}

func TestTokenSource_UsesValidCachedToken(t *testing.T) {
	cfg, srv := newTestConfig(t)
	require.NoError(t, cfg.SaveToken(&oauth2.Token{AccessToken: "cached", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}))

	src, err := cfg.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)
	assert.Empty(t, srv.seen())
}

func TestTokenSource_RefreshesExpiredToken(t *testing.T) {
	cfg, srv := newTestConfig(t)
	require.NoError(t, cfg.SaveToken(&oauth2.Token{AccessToken: "old", RefreshToken: "refresh", Expiry: time.Now().Add(-time.Hour)}))

	src, err := cfg.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, []string{"refresh_token"}, srv.seen())

	saved, err := cfg.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "access-1", saved.AccessToken)
}

func TestTokenSource_AuthenticatesWithoutCachedToken(t *testing.T) {
	cfg, srv := newTestConfig(t)
	cfg.OpenURL = approve(t, func(s string) string { return s })

	src, err := cfg.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, []string{"authorization_code"}, srv.seen())

	saved, err := cfg.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "refresh", saved.RefreshToken)
}

func TestTokenSource_RevokedTokenReauthenticates(t *testing.T) {
	cfg, srv := newTestConfig(t)
	srv.revoked = true
	require.NoError(t, cfg.SaveToken(&oauth2.Token{AccessToken: "old", RefreshToken: "dead", Expiry: time.Now().Add(-time.Hour)}))
	cfg.OpenURL = approve(t, func(s string) string { return s })

	src, err := cfg.TokenSource(context.Background())
	require.NoError(t, err)
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, []string{"refresh_token", "authorization_code"}, srv.seen())
}

func TestAuthenticate_RejectsStateMismatch(t *testing.T) {
	cfg, srv := newTestConfig(t)
	cfg.OpenURL = approve(t, func(string) string { return "forged" })

	_, err := cfg.TokenSource(context.Background())
	assert.ErrorContains(t, err, "authorization code not received")
	assert.Empty(t, srv.seen())
}

func TestAuthenticate_HonorsContext(t *testing.T) {
	cfg, _ := newTestConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cfg.OpenURL = func(string) { cancel() }

	_, err := cfg.TokenSource(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthenticate_DefaultPromptWritesURL(t *testing.T) {
	cfg, _ := newTestConfig(t)
	cfg.OpenURL = nil
	out := &lockedBuffer{}
	cfg.Out = out
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cfg.TokenSource(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, out.String(), "https://accounts.example.com/auth?")
}

func TestSavingSource_PersistsOnlyNewTokens(t *testing.T) {
	var saved []string
	tokens := []string{"a", "a", "b"}
	i := 0
	src := &savingSource{
		base: tokenFunc(func() (*oauth2.Token, error) {
			tok := &oauth2.Token{AccessToken: tokens[i]}
			i++
			return tok, nil
		}),
		last: "a",
		save: func(t *oauth2.Token) error { saved = append(saved, t.AccessToken); return nil },
	}
	for range tokens {
		_, err := src.Token()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"b"}, saved)
}

func TestIsRevoked(t *testing.T) {
	assert.True(t, isRevoked(&oauth2.RetrieveError{ErrorCode: "invalid_grant"}))
	assert.True(t, isRevoked(fmt.Errorf("oauth2: Token has been expired or revoked.")))
	assert.False(t, isRevoked(fmt.Errorf("connection refused")))
}

func TestConcurrentTokenAccess(t *testing.T) {
	cfg := NewOAuth2Config("", filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, cfg.SaveToken(&oauth2.Token{AccessToken: "seed"}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, cfg.SaveToken(&oauth2.Token{AccessToken: fmt.Sprintf("t%d", i)}))
		}()
		go func() {
			defer wg.Done()
			tok, err := cfg.LoadToken()
			if assert.NoError(t, err) {
				assert.NotEmpty(t, tok.AccessToken)
			}
		}()
	}
	wg.Wait()
}

type tokenFunc func() (*oauth2.Token, error)

func (f tokenFunc) Token() (*oauth2.Token, error) { return f() }

type lockedBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
