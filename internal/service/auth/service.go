package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/google/uuid"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

const (
	// browserSlowMotionDelay is the delay between browser actions for visibility during debugging.
	browserSlowMotionDelay = 200 * time.Millisecond

	// loginPollInterval is the interval for checking the browser state.
	loginPollInterval = 1 * time.Second

	// maxLoginWaitTime is the maximum time to wait for user to complete login.
	maxLoginWaitTime = 10 * time.Minute

	// browserCleanupDelay is the delay to wait for Chrome to release file locks before cleanup.
	browserCleanupDelay = 500 * time.Millisecond

	// callbackPageHTML is served in place of the redirect URI so nothing has to listen on it.
	callbackPageHTML = `<!DOCTYPE html><html><head><title>spotify-grabber</title></head>` +
		`<body><h2>Authorization received, you can close this window.</h2></body></html>`
)

var (
	// ErrLoginTimeout is returned when login takes too long.
	ErrLoginTimeout = errors.New("login timeout exceeded")

	// ErrBrowserClosed is returned when the browser is closed by the user.
	ErrBrowserClosed = errors.New("browser was closed by user")

	// ErrAuthorizationDenied is returned when the consent page redirects with an error.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrStateMismatch is returned when the redirect carries a state this login did not issue.
	ErrStateMismatch = errors.New("authorization state mismatch")

	// ErrAuthorizationCodeMissing is returned when the redirect carries no code.
	ErrAuthorizationCodeMissing = errors.New("authorization code not found in redirect")

	// ErrRefreshTokenMissing is returned when the token response has no refresh token.
	ErrRefreshTokenMissing = errors.New("token response contains no refresh token")
)

// Service provides browser-based authentication.
type Service interface {
	// LoginAndExtractToken opens a browser, waits for the user to grant access, then returns the refresh token.
	LoginAndExtractToken(ctx context.Context) (string, error)
}

// ServiceImpl provides browser-based authentication for Spotify.
type ServiceImpl struct {
	cfg           *config.Config
	authenticator *spotifyauth.Authenticator
	// state is the anti-forgery value sent with the authorization request.
	state   string
	browser *rod.Browser
	page    *rod.Page
	// tempDir stores the temporary profile directory for cleanup.
	tempDir string
}

// NewService creates a new browser authentication service.
func NewService(cfg *config.Config) (*ServiceImpl, error) {
	if err := config.ValidateAuthConfig(cfg); err != nil {
		return nil, err
	}

	return &ServiceImpl{
		cfg:           cfg,
		authenticator: spotify.NewAuthenticator(cfg),
		state:         uuid.NewString(),
	}, nil
}

// LoginAndExtractToken opens a browser, waits for the user to grant access, then returns the refresh token.
func (s *ServiceImpl) LoginAndExtractToken(ctx context.Context) (string, error) {
	logger.Info(ctx, "Starting browser-based authentication")

	if err := s.initBrowser(ctx); err != nil {
		return "", fmt.Errorf("failed to initialize browser: %w", err)
	}

	defer s.cleanup(ctx)

	code, err := s.waitForAuthorizationCode(ctx)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	logger.Info(ctx, "Exchanging authorization code for a token...")

	token, err := s.authenticator.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if token.RefreshToken == "" {
		return "", ErrRefreshTokenMissing
	}

	logger.Info(ctx, "Refresh token received successfully")

	return token.RefreshToken, nil
}
