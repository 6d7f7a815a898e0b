package spotify

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
	http_transport "github.com/oshokin/spotify-grabber/internal/transport/http"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// Client defines the interface for interacting with Spotify's catalog and audio delivery.
type Client interface {
	// DownloadFromURL downloads content from the specified URL.
	DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error)
	// GetAlbum retrieves an album with all its tracks.
	GetAlbum(ctx context.Context, albumID string) (*Album, error)
	// GetArtistAlbums lists the albums and singles of an artist.
	GetArtistAlbums(ctx context.Context, artistID string) ([]*AlbumReference, error)
	// GetArtistGenres retrieves the genres of the specified artists.
	GetArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error)
	// GetEpisode retrieves a podcast episode.
	GetEpisode(ctx context.Context, episodeID string) (*ContentItem, error)
	// GetLikedTracks lists the saved tracks of the current user, newest first.
	GetLikedTracks(ctx context.Context) ([]*PlaylistEntry, error)
	// GetPlaylist retrieves a playlist with all its entries.
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)
	// GetShow retrieves a show with all its episodes.
	GetShow(ctx context.Context, showID string) (*Show, error)
	// GetTrack retrieves a track.
	GetTrack(ctx context.Context, trackID string) (*ContentItem, error)
	// GetTrackLyrics retrieves the lyrics of a track.
	GetTrackLyrics(ctx context.Context, trackID string) (*Lyrics, error)
	// OpenStream opens the decrypted audio of an item in the given quality.
	OpenStream(ctx context.Context, item *ContentItem, quality string) (Stream, error)
	// Search runs a free-text catalog search.
	Search(ctx context.Context, query string, limit int) (*SearchResult, error)
}

// ClientImpl implements the Client interface for interacting with Spotify.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// apiBaseURL is the Web API root used for raw JSON requests.
	apiBaseURL string
	// spClientBaseURL is the root of the internal endpoints.
	spClientBaseURL string
	// httpClient is the authorized HTTP client for making requests.
	httpClient *http.Client
	// api is the typed Web API client.
	api *spotifyapi.Client
	// keyProvider unlocks encrypted audio files.
	keyProvider KeyProvider
	// tracksCache caches track metadata to reduce duplicate API calls for the same tracks.
	tracksCache *lru.Cache[string, *ContentItem]
	// albumsCache caches albums with their tracks.
	albumsCache *lru.Cache[string, *Album]
	// episodesCache caches episode metadata.
	episodesCache *lru.Cache[string, *ContentItem]
	// genresCache caches artist genres.
	genresCache *lru.Cache[string, []string]
}

// Option customizes a ClientImpl.
type Option func(*options)

type options struct {
	apiBaseURL      string
	spClientBaseURL string
	httpClient      *http.Client
	keyProvider     KeyProvider
}

// WithAPIBaseURL overrides the Web API root.
func WithAPIBaseURL(baseURL string) Option {
	return func(o *options) {
		o.apiBaseURL = baseURL
	}
}

// WithSpClientBaseURL overrides the root of the internal endpoints.
func WithSpClientBaseURL(baseURL string) Option {
	return func(o *options) {
		o.spClientBaseURL = baseURL
	}
}

// WithHTTPClient replaces the authorized HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// WithKeyProvider replaces the audio key provider.
func WithKeyProvider(keyProvider KeyProvider) Option {
	return func(o *options) {
		o.keyProvider = keyProvider
	}
}

// Scopes lists the OAuth scopes the client needs.
//
//nolint:gochecknoglobals // Immutable list used as a constant.
var Scopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopeUserReadPrivate,
}

// NewAuthenticator creates the OAuth helper for the configured application.
func NewAuthenticator(cfg *config.Config) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(Scopes...))
}

// NewTransport builds the retrying, logging, user-agent injecting transport shared by all requests.
func NewTransport(cfg *config.Config) http.RoundTripper {
	userAgents := utils.NewHostUserAgentProvider(
		http_transport.DefaultUserAgent,
		map[string]string{http_transport.SpClientHost: http_transport.DesktopClientUserAgent})

	return http_transport.NewRetryTransport(
		http_transport.NewLogTransport(
			http_transport.NewUserAgentInjector(http.DefaultTransport, userAgents),
			0),
		cfg.RetryAttemptsCount,
		cfg.ParsedMaxRetryPause)
}

// NewClient creates and returns a new instance of ClientImpl.
// Without WithHTTPClient, requests are authorized with the configured refresh token.
func NewClient(ctx context.Context, cfg *config.Config, opts ...Option) (Client, error) {
	o := &options{
		apiBaseURL:      defaultAPIBaseURL,
		spClientBaseURL: defaultSpClientBaseURL,
	}

	for _, opt := range opts {
		opt(o)
	}

	if !strings.HasSuffix(o.apiBaseURL, "/") {
		o.apiBaseURL += "/"
	}

	httpClient := o.httpClient
	if httpClient == nil {
		// The token source picks its base client from the context, so refreshes share the transport.
		baseClient := &http.Client{
			Transport: NewTransport(cfg),
			Timeout:   http_transport.DefaultTimeout,
		}

		authCtx := context.WithValue(ctx, oauth2.HTTPClient, baseClient)
		httpClient = NewAuthenticator(cfg).Client(authCtx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	}

	// Initialize LRU caches for metadata to reduce redundant API calls.
	tracksCache, err := lru.New[string, *ContentItem](tracksCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracks cache: %w", err)
	}

	albumsCache, err := lru.New[string, *Album](albumsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create albums cache: %w", err)
	}

	episodesCache, err := lru.New[string, *ContentItem](episodesCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create episodes cache: %w", err)
	}

	genresCache, err := lru.New[string, []string](genresCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create genres cache: %w", err)
	}

	client := &ClientImpl{
		cfg:             cfg,
		apiBaseURL:      o.apiBaseURL,
		spClientBaseURL: o.spClientBaseURL,
		httpClient:      httpClient,
		api:             spotifyapi.New(httpClient, spotifyapi.WithBaseURL(o.apiBaseURL)),
		tracksCache:     tracksCache,
		albumsCache:     albumsCache,
		episodesCache:   episodesCache,
		genresCache:     genresCache,
	}

	client.keyProvider = o.keyProvider
	if client.keyProvider == nil {
		client.keyProvider = NewHTTPKeyProvider(client, cfg.KeyServiceURL)
	}

	return client, nil
}

// DownloadFromURL downloads content from the specified URL.
func (c *ClientImpl) DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close() //nolint:gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return response.Body, nil
}

// GetTrack retrieves a track.
// The parent album is loaded too, because templates need its track count.
func (c *ClientImpl) GetTrack(ctx context.Context, trackID string) (*ContentItem, error) {
	if cached, ok := c.tracksCache.Get(trackID); ok {
		logger.Debugf(ctx, "Track cache hit for ID: %s", trackID)

		return cached, nil
	}

	track, err := c.api.GetTrack(ctx, spotifyapi.ID(trackID), c.marketOption())
	if err != nil {
		return nil, newMetadataError(KindTrack, trackID, err)
	}

	item := parseFullTrack(track)
	if err = validateItem(item); err != nil {
		return nil, newMetadataError(KindTrack, trackID, err)
	}

	if item.AlbumID != "" {
		album, albumErr := c.GetAlbum(ctx, item.AlbumID)
		if albumErr != nil {
			logger.Warnf(ctx, "Failed to load album '%s' of track '%s': %v", item.AlbumID, trackID, albumErr)
		} else {
			item.TotalTracks = album.TotalTracks
		}
	}

	c.tracksCache.Add(trackID, item)

	return item, nil
}

// GetAlbum retrieves an album with all its tracks.
func (c *ClientImpl) GetAlbum(ctx context.Context, albumID string) (*Album, error) {
	if cached, ok := c.albumsCache.Get(albumID); ok {
		logger.Debugf(ctx, "Album cache hit for ID: %s", albumID)

		return cached, nil
	}

	fullAlbum, err := c.api.GetAlbum(ctx, spotifyapi.ID(albumID), c.marketOption())
	if err != nil {
		return nil, newMetadataError(KindAlbum, albumID, err)
	}

	album := parseFullAlbum(fullAlbum)
	if album.ID == "" || album.Name == "" {
		return nil, newMetadataError(KindAlbum, albumID, ErrMissingRequiredField)
	}

	page := &fullAlbum.Tracks

	for {
		for i := range page.Tracks {
			item := parseSimpleTrack(&page.Tracks[i], &fullAlbum.SimpleAlbum)
			item.TotalTracks = album.TotalTracks

			album.Tracks = append(album.Tracks, item)
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotifyapi.ErrNoMorePages) {
			break
		}

		if err != nil {
			return nil, newMetadataError(KindAlbum, albumID, fmt.Errorf("failed to page album tracks: %w", err))
		}
	}

	if album.TotalTracks == 0 {
		album.TotalTracks = len(album.Tracks)
	}

	if len(album.Tracks) > 0 {
		album.TotalDiscs = album.Tracks[len(album.Tracks)-1].DiscNumber
	}

	c.albumsCache.Add(albumID, album)

	return album, nil
}

// GetArtistAlbums lists the albums and singles of an artist.
// Compilations and "appears on" groupings are never requested.
func (c *ClientImpl) GetArtistAlbums(ctx context.Context, artistID string) ([]*AlbumReference, error) {
	page, err := c.api.GetArtistAlbums(
		ctx,
		spotifyapi.ID(artistID),
		[]spotifyapi.AlbumType{spotifyapi.AlbumTypeAlbum, spotifyapi.AlbumTypeSingle},
		spotifyapi.Limit(pageSize),
		c.marketOption())
	if err != nil {
		return nil, newMetadataError(KindArtist, artistID, err)
	}

	var result []*AlbumReference

	for {
		for _, album := range page.Albums {
			result = append(result, &AlbumReference{
				ID:        string(album.ID),
				Name:      album.Name,
				AlbumType: album.AlbumType,
			})
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotifyapi.ErrNoMorePages) {
			break
		}

		if err != nil {
			return nil, newMetadataError(KindArtist, artistID, fmt.Errorf("failed to page artist albums: %w", err))
		}
	}

	return result, nil
}

// GetArtistGenres retrieves the genres of the specified artists.
// Uncached artists are requested in batches of 50.
func (c *ClientImpl) GetArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(artistIDs))
	uncachedIDs := make([]spotifyapi.ID, 0, len(artistIDs))

	// Check cache first for each artist ID.
	for _, id := range utils.Unique(artistIDs) {
		if id == "" {
			continue
		}

		if cached, ok := c.genresCache.Get(id); ok {
			result[id] = cached
			logger.Debugf(ctx, "Genres cache hit for artist ID: %s", id)
		} else {
			uncachedIDs = append(uncachedIDs, spotifyapi.ID(id))
		}
	}

	if len(uncachedIDs) == 0 {
		return result, nil
	}

	logger.Debugf(ctx, "Fetching genres of %d uncached artists from API", len(uncachedIDs))

	for _, batch := range utils.Chunk(uncachedIDs, artistsBatchSize) {
		artists, err := c.api.GetArtists(ctx, batch...)
		if err != nil {
			return nil, fmt.Errorf("failed to get artists: %w", err)
		}

		for _, artist := range artists {
			if artist == nil {
				continue
			}

			id := string(artist.ID)
			genres := slices.Clone(artist.Genres)

			c.genresCache.Add(id, genres)
			result[id] = genres
		}
	}

	return result, nil
}

// GetEpisode retrieves a podcast episode.
// Externally hosted episodes also get their download URL from the internal metadata.
func (c *ClientImpl) GetEpisode(ctx context.Context, episodeID string) (*ContentItem, error) {
	if cached, ok := c.episodesCache.Get(episodeID); ok {
		logger.Debugf(ctx, "Episode cache hit for ID: %s", episodeID)

		return cached, nil
	}

	result, err := fetchJSONWithQuery[episodeResponse](
		c,
		ctx,
		c.apiBaseURL,
		spotifyAPIEpisodeURI+"/"+episodeID,
		c.marketQuery())
	if err != nil {
		return nil, newMetadataError(KindEpisode, episodeID, err)
	}

	item := parseEpisode(result.Data, nil)
	if err = validateItem(item); err != nil {
		return nil, newMetadataError(KindEpisode, episodeID, err)
	}

	if result.Data.IsExternallyHosted {
		metadata, metadataErr := c.getMediaMetadata(ctx, KindEpisode, episodeID)
		if metadataErr != nil {
			logger.Warnf(ctx, "Failed to get the external URL of episode '%s': %v", episodeID, metadataErr)
		} else {
			item.ExternalURL = metadata.ExternalURL
		}
	}

	c.episodesCache.Add(episodeID, item)

	return item, nil
}

// GetLikedTracks lists the saved tracks of the current user, newest first.
func (c *ClientImpl) GetLikedTracks(ctx context.Context) ([]*PlaylistEntry, error) {
	page, err := c.api.CurrentUsersTracks(ctx, spotifyapi.Limit(pageSize), c.marketOption())
	if err != nil {
		return nil, fmt.Errorf("failed to get liked tracks: %w", err)
	}

	var result []*PlaylistEntry

	for {
		for i := range page.Tracks {
			saved := &page.Tracks[i]
			item := parseFullTrack(&saved.FullTrack)

			if item.ID != "" {
				c.tracksCache.Add(item.ID, item)
			}

			result = append(result, &PlaylistEntry{
				ID:        item.ID,
				Kind:      KindTrack,
				Name:      item.Name,
				ArtistIDs: item.ArtistIDs,
				AddedAt:   parseAddedAt(saved.AddedAt),
			})
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotifyapi.ErrNoMorePages) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to page liked tracks: %w", err)
		}
	}

	return result, nil
}

// GetPlaylist retrieves a playlist with all its entries in catalog order.
func (c *ClientImpl) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	fullPlaylist, err := c.api.GetPlaylist(ctx, spotifyapi.ID(playlistID), c.marketOption())
	if err != nil {
		return nil, newMetadataError(KindPlaylist, playlistID, err)
	}

	if fullPlaylist.Name == "" {
		return nil, newMetadataError(KindPlaylist, playlistID, ErrMissingRequiredField)
	}

	playlist := &Playlist{
		ID:    string(fullPlaylist.ID),
		Name:  fullPlaylist.Name,
		Owner: fullPlaylist.Owner.DisplayName,
	}

	if playlist.ID == "" {
		playlist.ID = playlistID
	}

	page, err := c.api.GetPlaylistItems(ctx, spotifyapi.ID(playlistID), spotifyapi.Limit(pageSize), c.marketOption())
	if err != nil {
		return nil, newMetadataError(KindPlaylist, playlistID, err)
	}

	for {
		for i := range page.Items {
			playlist.Entries = append(playlist.Entries, parsePlaylistItem(&page.Items[i]))
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotifyapi.ErrNoMorePages) {
			break
		}

		if err != nil {
			return nil, newMetadataError(KindPlaylist, playlistID, fmt.Errorf("failed to page playlist items: %w", err))
		}
	}

	return playlist, nil
}

// GetShow retrieves a show with all its episodes in catalog order.
func (c *ClientImpl) GetShow(ctx context.Context, showID string) (*Show, error) {
	showResult, err := fetchJSONWithQuery[showResponse](
		c,
		ctx,
		c.apiBaseURL,
		spotifyAPIShowURI+"/"+showID,
		c.marketQuery())
	if err != nil {
		return nil, newMetadataError(KindShow, showID, err)
	}

	show := &Show{
		ID:        showResult.Data.ID,
		Name:      showResult.Data.Name,
		Publisher: showResult.Data.Publisher,
	}

	if show.ID == "" || show.Name == "" {
		return nil, newMetadataError(KindShow, showID, ErrMissingRequiredField)
	}

	for offset := 0; ; offset += pageSize {
		query := c.marketQuery()
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("offset", strconv.Itoa(offset))

		pageResult, pageErr := fetchJSONWithQuery[episodePageResponse](
			c,
			ctx,
			c.apiBaseURL,
			spotifyAPIShowURI+"/"+showID+"/"+spotifyAPIEpisodeURI,
			query)
		if pageErr != nil {
			return nil, newMetadataError(KindShow, showID, fmt.Errorf("failed to page show episodes: %w", pageErr))
		}

		for _, episode := range pageResult.Data.Items {
			if episode == nil {
				continue
			}

			show.Episodes = append(show.Episodes, parseEpisode(episode, showResult.Data))
		}

		if pageResult.Data.Next == "" || len(pageResult.Data.Items) == 0 {
			break
		}
	}

	return show, nil
}

// GetTrackLyrics retrieves the lyrics of a track.
func (c *ClientImpl) GetTrackLyrics(ctx context.Context, trackID string) (*Lyrics, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("market", marketFromToken)

	result, err := fetchJSONWithQuery[lyricsResponse](c, ctx, c.spClientBaseURL, spClientLyricsURI+"/"+trackID, query)
	if err != nil {
		if result != nil && result.StatusCode == http.StatusNotFound {
			return nil, ErrLyricsNotFound
		}

		return nil, err
	}

	lyrics := parseLyrics(result.Data)
	if len(lyrics.Lines) == 0 {
		return nil, ErrLyricsNotFound
	}

	return lyrics, nil
}

// Search runs a free-text catalog search over tracks, albums, artists and playlists.
func (c *ClientImpl) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	found, err := c.api.Search(
		ctx,
		query,
		spotifyapi.SearchTypeTrack|spotifyapi.SearchTypeAlbum|spotifyapi.SearchTypeArtist|spotifyapi.SearchTypePlaylist,
		spotifyapi.Limit(limit),
		c.marketOption())
	if err != nil {
		return nil, fmt.Errorf("failed to search for '%s': %w", query, err)
	}

	result := &SearchResult{}

	if found.Tracks != nil {
		for i := range found.Tracks.Tracks {
			track := &found.Tracks.Tracks[i]
			artists, _ := parseArtists(track.Artists)

			result.Tracks = append(result.Tracks, &SearchHit{
				Kind:        KindTrack,
				ID:          string(track.ID),
				Name:        track.Name,
				Description: strings.Join(artists, ", "),
			})
		}
	}

	if found.Albums != nil {
		for i := range found.Albums.Albums {
			album := &found.Albums.Albums[i]
			artists, _ := parseArtists(album.Artists)

			result.Albums = append(result.Albums, &SearchHit{
				Kind:        KindAlbum,
				ID:          string(album.ID),
				Name:        album.Name,
				Description: strings.Join(artists, ", "),
			})
		}
	}

	if found.Artists != nil {
		for i := range found.Artists.Artists {
			artist := &found.Artists.Artists[i]

			result.Artists = append(result.Artists, &SearchHit{
				Kind: KindArtist,
				ID:   string(artist.ID),
				Name: artist.Name,
			})
		}
	}

	if found.Playlists != nil {
		for i := range found.Playlists.Playlists {
			playlist := &found.Playlists.Playlists[i]

			result.Playlists = append(result.Playlists, &SearchHit{
				Kind:        KindPlaylist,
				ID:          string(playlist.ID),
				Name:        playlist.Name,
				Description: playlist.Owner.DisplayName,
			})
		}
	}

	return result, nil
}

func (c *ClientImpl) marketOption() spotifyapi.RequestOption {
	return spotifyapi.Market(c.market())
}

func (c *ClientImpl) marketQuery() url.Values {
	query := url.Values{}
	query.Set("market", c.market())

	return query
}

func (c *ClientImpl) market() string {
	if c.cfg == nil || c.cfg.Market == "" {
		return marketFromToken
	}

	return c.cfg.Market
}

func parsePlaylistItem(item *spotifyapi.PlaylistItem) *PlaylistEntry {
	entry := &PlaylistEntry{
		Kind:    KindTrack,
		AddedAt: parseAddedAt(item.AddedAt),
		IsLocal: item.IsLocal,
	}

	switch {
	case item.Track.Track != nil:
		entry.ID = string(item.Track.Track.ID)
		entry.Name = item.Track.Track.Name
		_, entry.ArtistIDs = parseArtists(item.Track.Track.Artists)
	case item.Track.Episode != nil:
		entry.Kind = KindEpisode
		entry.ID = string(item.Track.Episode.ID)
		entry.Name = item.Track.Episode.Name
	}

	return entry
}
