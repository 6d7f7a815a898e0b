// Package spotify downloads tracks, episodes and whole collections from the Spotify catalog.
// It expands collections into items, decides per item whether a download is needed,
// streams and post-processes the audio, and keeps the download archives and playlist exports in sync.
package spotify
