package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jakechorley/major-admission/internal/config"
)

const (
	AuthPort       = 3000
	authTimeout    = 5 * time.Minute
	callbackPath   = "/oauth/callback"
	tokenDirName   = ".major-admission/tokens"
	tokenFilePerms = 0600
	tokenDirPerms  = 0700
)

// ScopeSheets is the only scope admitSheet needs: read the roster tab and write the results tab
const ScopeSheets = "https://www.googleapis.com/auth/spreadsheets"

// TokenStore caches OAuth tokens per environment in memory and under ~/.major-admission/tokens
type TokenStore struct {
	dir    string
	logger *zap.Logger

	mu     sync.Mutex
	cached map[string]*oauth2.Token
}

// NewTokenStore returns a store rooted at dir. An empty dir means the home directory default.
func NewTokenStore(dir string, logger *zap.Logger) (*TokenStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, tokenDirName)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenStore{dir: dir, logger: logger, cached: make(map[string]*oauth2.Token)}, nil
}

// GetOAuthConfig builds an oauth2 config for the sheets scope with a local redirect.
// Endpoints missing from the client file use Google's.
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	if oauthCfg == nil || oauthCfg.ClientID == "" {
		return nil, fmt.Errorf("oauth client id is required")
	}

	endpoint := google.Endpoint
	if oauthCfg.AuthURI != "" {
		endpoint.AuthURL = oauthCfg.AuthURI
	}
	if oauthCfg.TokenURI != "" {
		endpoint.TokenURL = oauthCfg.TokenURI
	}

	return &oauth2.Config{
		ClientID:     oauthCfg.ClientID,
		ClientSecret: oauthCfg.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{ScopeSheets},
		RedirectURL:  fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath),
	}, nil
}

// Token returns a usable token for env: from memory, then disk (refreshing if expired),
// and finally through the browser consent flow.
func (s *TokenStore) Token(ctx context.Context, oauthConfig *oauth2.Config, env string) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token := s.cached[env]; token != nil && token.Valid() {
		return token, nil
	}

	stored, err := s.Load(env)
	if err != nil {
		s.logger.Warn("Failed to load stored token", zap.Error(err))
	}

	if stored != nil {
		if stored.Valid() {
			s.cached[env] = stored
			return stored, nil
		}
		if stored.RefreshToken != "" {
			refreshed, err := oauthConfig.TokenSource(ctx, stored).Token()
			if err == nil {
				s.logger.Info("Refreshed stored OAuth token")
				s.persist(env, refreshed)
				return refreshed, nil
			}
			s.logger.Warn("Failed to refresh stored token", zap.Error(err))
		}
	}

	s.logger.Info("No valid token found, starting OAuth flow")
	authURL := oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Printf("\nVisit this URL to authorize access to Google Sheets:\n%s\n\n", authURL)

	code, err := listenForAuthCallback(ctx, fmt.Sprintf("localhost:%d", AuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	s.persist(env, token)
	return token, nil
}

func (s *TokenStore) persist(env string, token *oauth2.Token) {
	s.cached[env] = token
	if err := s.Save(env, token); err != nil {
		s.logger.Warn("Failed to save token, continuing with in-memory token", zap.Error(err))
	}
}

// Load reads the stored token for env. A missing file returns nil, nil.
func (s *TokenStore) Load(env string) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path(env))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// Save writes the token for env with owner-only permissions
func (s *TokenStore) Save(env string, token *oauth2.Token) error {
	if err := os.MkdirAll(s.dir, tokenDirPerms); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(s.path(env), data, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete removes the stored token for env and forgets the cached one
func (s *TokenStore) Delete(env string) error {
	s.mu.Lock()
	delete(s.cached, env)
	s.mu.Unlock()

	if err := os.Remove(s.path(env)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

func (s *TokenStore) path(env string) string {
	return filepath.Join(s.dir, fmt.Sprintf("token-%s.json", env))
}

// listenForAuthCallback serves the OAuth redirect on addr until a code arrives,
// the context is cancelled, or authTimeout passes.
func listenForAuthCallback(ctx context.Context, addr string) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return serveAuthCallback(ctx, listener)
}

func serveAuthCallback(ctx context.Context, listener net.Listener) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			select {
			case errChan <- fmt.Errorf("no authorization code received"):
			default:
			}
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Authorization Successful</title></head>
<body><h1>Authorization successful!</h1><p>You can close this window and return to the terminal.</p></body></html>`)

		select {
		case codeChan <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errChan <- fmt.Errorf("server error: %w", err):
			default:
			}
		}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var (
		code    string
		authErr error
	)
	select {
	case code = <-codeChan:
	case authErr = <-errChan:
	case <-timeoutCtx.Done():
		authErr = fmt.Errorf("authorization timeout after %v", authTimeout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	if authErr != nil {
		return "", authErr
	}
	return code, nil
}
