package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/oshokin/spotify-grabber/internal/logger"
)

// waitForAuthorizationCode opens the consent page and waits until the browser is redirected back.
func (s *ServiceImpl) waitForAuthorizationCode(ctx context.Context) (string, error) {
	captured := make(chan *url.URL, 1)

	router := s.page.HijackRequests()
	router.MustAdd(s.cfg.RedirectURI+"*", func(h *rod.Hijack) {
		select {
		case captured <- h.Request.URL():
		default:
		}

		h.Response.SetHeader("Content-Type", "text/html; charset=utf-8")
		h.Response.SetBody(callbackPageHTML)
	})

	go router.Run()

	defer func() {
		if err := router.Stop(); err != nil {
			logger.Debugf(ctx, "Failed to stop request hijacking: %v", err)
		}
	}()

	authURL := s.authenticator.AuthURL(s.state)
	logger.Debugf(ctx, "Navigating to %s", authURL)

	if err := s.page.Navigate(authURL); err != nil {
		return "", fmt.Errorf("failed to open the consent page: %w", err)
	}

	printLoginInstructions(ctx)

	return s.pollForRedirect(ctx, captured)
}

// pollForRedirect waits for a captured redirect, watching the browser in the meantime.
func (s *ServiceImpl) pollForRedirect(ctx context.Context, captured <-chan *url.URL) (string, error) {
	var (
		ticker   = time.NewTicker(loginPollInterval)
		deadline = time.NewTimer(maxLoginWaitTime)
		lastURL  string
	)

	defer ticker.Stop()
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", fmt.Errorf("%w: waited for %v", ErrLoginTimeout, maxLoginWaitTime)
		case redirect := <-captured:
			return s.codeFromRedirect(ctx, redirect)
		case <-ticker.C:
			if !s.isBrowserAlive(ctx) {
				return "", ErrBrowserClosed
			}

			currentURL, err := s.getCurrentURL(ctx)
			if err != nil {
				return "", fmt.Errorf("failed to get current URL: %w", err)
			}

			if currentURL != lastURL {
				logger.Debugf(ctx, "URL changed: %s", currentURL)

				lastURL = currentURL
			}

			// The redirect can slip past the hijack router when the page navigates before it is running.
			if !strings.HasPrefix(currentURL, s.cfg.RedirectURI) {
				continue
			}

			redirect, err := url.Parse(currentURL)
			if err != nil {
				return "", fmt.Errorf("failed to parse redirect URL: %w", err)
			}

			return s.codeFromRedirect(ctx, redirect)
		}
	}
}

func (s *ServiceImpl) codeFromRedirect(ctx context.Context, redirect *url.URL) (string, error) {
	code, err := parseRedirect(redirect, s.state)
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "Access granted, authorization code received")

	return code, nil
}

// parseRedirect extracts the authorization code from the redirect, checking the state first.
func parseRedirect(redirect *url.URL, state string) (string, error) {
	query := redirect.Query()

	if reason := query.Get("error"); reason != "" {
		return "", fmt.Errorf("%w: %s", ErrAuthorizationDenied, reason)
	}

	if query.Get("state") != state {
		return "", ErrStateMismatch
	}

	code := query.Get("code")
	if code == "" {
		return "", ErrAuthorizationCodeMissing
	}

	return code, nil
}

func printLoginInstructions(ctx context.Context) {
	logger.Info(ctx, "")
	logger.Info(ctx, "╔══════════════════════════════════════════════════════════════════╗")
	logger.Info(ctx, "║                      LOGIN INSTRUCTIONS                          ║")
	logger.Info(ctx, "╚══════════════════════════════════════════════════════════════════╝")
	logger.Info(ctx, "")
	logger.Info(ctx, "Please complete the login in the browser:")
	logger.Info(ctx, "")
	logger.Info(ctx, "1. Log in to your Spotify account")
	logger.Info(ctx, "")
	logger.Info(ctx, "2. Review the requested permissions and click 'Agree'")
	logger.Info(ctx, "")
	logger.Info(ctx, "3. Wait for the confirmation page, the tool detects it automatically")
	logger.Info(ctx, "")
	logger.Infof(ctx, "The browser window will close by itself. Giving up after %v.", maxLoginWaitTime)
	logger.Info(ctx, "")
	logger.Info(ctx, "Waiting for login to complete...")
	logger.Info(ctx, "")
}
