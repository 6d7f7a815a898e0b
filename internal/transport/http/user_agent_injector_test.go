package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/spotify-grabber/internal/utils"
	mock_utils "github.com/oshokin/spotify-grabber/internal/utils/mocks"
)

// TestNewUserAgentInjector tests the NewUserAgentInjector function.
func TestNewUserAgentInjector(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProvider := mock_utils.NewMockUserAgentProvider(ctrl)
	injector := NewUserAgentInjector(http.DefaultTransport, mockProvider)

	assert.Implements(t, (*http.RoundTripper)(nil), injector)
}

// TestUserAgentInjector_RoundTrip tests header injection for requests with and without a User-Agent.
func TestUserAgentInjector_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		initialUserAgent string
		providerCalls    int
		expected         string
	}{
		{
			name:             "existing user agent is kept",
			initialUserAgent: "ExistingAgent/1.0",
			providerCalls:    0,
			expected:         "ExistingAgent/1.0",
		},
		{
			name:          "missing user agent is injected",
			providerCalls: 1,
			expected:      "TestAgent/1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.expected, r.Header.Get("User-Agent"))
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			serverURL, err := url.Parse(server.URL)
			require.NoError(t, err)

			mockProvider := mock_utils.NewMockUserAgentProvider(ctrl)
			mockProvider.EXPECT().GetUserAgent(serverURL.Host).Return("TestAgent/1.0").Times(tt.providerCalls)

			injector := NewUserAgentInjector(http.DefaultTransport, mockProvider)

			req, err := http.NewRequest(http.MethodGet, server.URL, nil) //nolint:noctx // Test code, context not needed.
			require.NoError(t, err)

			if tt.initialUserAgent != "" {
				req.Header.Set("User-Agent", tt.initialUserAgent)
			}

			resp, err := injector.RoundTrip(req)
			require.NoError(t, err)

			defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.initialUserAgent, req.Header.Get("User-Agent"))
		})
	}
}

// TestUserAgentInjector_RoundTrip_NilRequest tests that a nil request is rejected.
func TestUserAgentInjector_RoundTrip_NilRequest(t *testing.T) {
	t.Parallel()

	injector := NewUserAgentInjector(http.DefaultTransport, utils.NewSimpleUserAgentProvider("TestAgent/1.0"))

	resp, err := injector.RoundTrip(nil) //nolint:bodyclose // Response is nil on error.
	require.ErrorIs(t, err, ErrNilRequest)
	assert.Nil(t, resp)
}

// TestUserAgentInjector_IntegrationWithHostProvider tests per-host agents end to end.
func TestUserAgentInjector_IntegrationWithHostProvider(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DesktopClientUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	provider := utils.NewHostUserAgentProvider(DefaultUserAgent, map[string]string{
		serverURL.Hostname(): DesktopClientUserAgent,
	})
	injector := NewUserAgentInjector(http.DefaultTransport, provider)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil) //nolint:noctx // Test code, context not needed.
	require.NoError(t, err)

	resp, err := injector.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
