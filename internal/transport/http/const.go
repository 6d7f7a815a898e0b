package http

import "time"

const (
	// DefaultTimeout is the default timeout duration for HTTP requests.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is the default User-Agent string used for HTTP requests.
	// It mimics a common browser User-Agent to avoid being blocked by servers.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36" //nolint: lll

	// DesktopClientUserAgent is sent to the internal client endpoints (metadata, storage, lyrics).
	DesktopClientUserAgent = "Spotify/1.2.52.442 Win32_x86_64/0 (PC desktop)"

	// SpClientHost serves internal metadata, storage resolution and lyrics.
	SpClientHost = "spclient.wg.spotify.com"

	// maxRetryAfter caps the server-provided Retry-After delay.
	maxRetryAfter = 30 * time.Second
)
