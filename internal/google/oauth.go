package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

const oobRedirect = "urn:ietf:wg:oauth:2.0:oob"

// Config carries the OAuth2 client credentials and token cache location.
// The zero value is completed by DefaultConfig-style fallbacks in Normalize.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	Scopes       []string
}

// Normalize fills unset fields with defaults: the built-in client
// credentials, the user cache directory token path, and the full Gmail
// scope (required for batchDelete).
func (c Config) Normalize() Config {
	if c.ClientID == "" {
		c.ClientID = defaultClientID
	}
	if c.ClientSecret == "" {
		c.ClientSecret = defaultClientSecret
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(userCacheDir(), "inboxtidy", "google.token")
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{gmail.MailGoogleComScope}
	}
	return c
}

const (
	defaultClientID     = "615260903473-ctldo9bte5phiu092s8ovfbe7c8aao1o.apps.googleusercontent.com"
	defaultClientSecret = "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"
)

// HasToken checks if a cached OAuth token exists.
func HasToken(cfg Config) bool {
	cfg = cfg.Normalize()
	_, err := os.ReadFile(cfg.TokenFile)
	return err == nil
}

// GetAuthURL returns the OAuth URL for user authorization.
func GetAuthURL(cfg Config) string {
	return oauthConfig(cfg.Normalize()).AuthCodeURL("state")
}

// SaveToken exchanges an authorization code for tokens and caches them.
func SaveToken(ctx context.Context, cfg Config, authCode string) error {
	cfg = cfg.Normalize()

	t, err := oauthConfig(cfg).Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.TokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(cfg.TokenFile, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

func oauthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  oobRedirect,
		Scopes:       cfg.Scopes,
	}
}

// GetTokenSource returns an OAuth2 token source backed by the cached token.
func GetTokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, error) {
	cfg = cfg.Normalize()

	slurp, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found at %s; run 'inboxtidy auth' first", cfg.TokenFile)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format in %s; expected two fields, got %d", cfg.TokenFile, len(f))
	}

	ts := oauthConfig(cfg).TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	// Validate the token up front so the caller fails before any work starts.
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}

	return ts, nil
}

// GetHTTPClient returns an HTTP client configured with OAuth2 authentication.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func GetHTTPClient(ctx context.Context, cfg Config) (*http.Client, error) {
	ts, err := GetTokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client, nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
