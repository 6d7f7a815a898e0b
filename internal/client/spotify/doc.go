// Package spotify provides a Go client for Spotify's catalog and audio delivery endpoints.
// Catalog queries (tracks, albums, playlists, artists, liked songs, search) go through the
// typed Web API client, while shows, episodes, lyrics and stream resolution use raw JSON
// requests sharing the same authorized, retrying and logging HTTP transport.
// Metadata is normalized into ContentItem records and cached in LRU caches,
// and encrypted audio is exposed as a decrypting Stream.
package spotify
