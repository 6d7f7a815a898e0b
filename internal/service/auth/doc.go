// Package auth provides browser-based authorization for the Spotify Web API.
//
// The user grants access on the Spotify consent page inside a stealth browser
// driven by go-rod. The redirect to the configured redirect URI is intercepted,
// its state is verified and the authorization code is exchanged for a token.
// The resulting refresh token is what the downloader needs on every later run.
package auth
