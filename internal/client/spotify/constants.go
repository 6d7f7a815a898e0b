package spotify

const (
	// defaultAPIBaseURL is the Web API root; the typed client requires the trailing slash.
	defaultAPIBaseURL = "https://api.spotify.com/v1/"
	// defaultSpClientBaseURL is the root of the internal metadata, storage and lyrics endpoints.
	defaultSpClientBaseURL = "https://spclient.wg.spotify.com/"
)

const (
	// spotifyAPIShowURI is the URI path for show metadata.
	spotifyAPIShowURI = "shows"
	// spotifyAPIEpisodeURI is the URI path for episode metadata.
	spotifyAPIEpisodeURI = "episodes"
	// spClientTrackMetadataURI is the URI path for track file listings.
	spClientTrackMetadataURI = "metadata/4/track"
	// spClientEpisodeMetadataURI is the URI path for episode file listings.
	spClientEpisodeMetadataURI = "metadata/4/episode"
	// spClientStorageResolveURI is the URI path resolving a file id to CDN URLs.
	spClientStorageResolveURI = "storage-resolve/files/audio/interactive"
	// spClientLyricsURI is the URI path for synced lyrics.
	spClientLyricsURI = "color-lyrics/v2/track"
)

const (
	// tracksCacheSize defines the maximum number of track entries to cache.
	tracksCacheSize = 10000
	// albumsCacheSize defines the maximum number of album entries to cache.
	// Albums are cached with all their tracks, so single tracks reuse the totals.
	albumsCacheSize = 2000
	// episodesCacheSize defines the maximum number of episode entries to cache.
	episodesCacheSize = 2000
	// genresCacheSize defines the maximum number of artist genre lists to cache.
	genresCacheSize = 5000
)

const (
	// pageSize is the largest page the Web API serves for collection listings.
	pageSize = 50
	// artistsBatchSize is the largest number of artists one request may ask for.
	artistsBatchSize = 50
	// marketFromToken asks the API to use the country of the current account.
	marketFromToken = "from_token"
)

// Audio file formats served by the storage endpoints.
const (
	FileFormatOggVorbis96  = "OGG_VORBIS_96"
	FileFormatOggVorbis160 = "OGG_VORBIS_160"
	FileFormatOggVorbis320 = "OGG_VORBIS_320"
	FileFormatMP3_96       = "MP3_96" //nolint:revive // Matches the upstream format name.
)

// Stream quality tiers.
const (
	QualityAuto     = "auto"
	QualityNormal   = "normal"
	QualityHigh     = "high"
	QualityVeryHigh = "very_high"
)

const (
	// audioHeaderSize is the length of the proprietary preamble in front of the Ogg data.
	audioHeaderSize = 0xa7
	// audioKeySize is the length of an AES-128 audio key.
	audioKeySize = 16
	// gidSize is the length of a binary catalog id.
	gidSize = 16
	// base62IDLength is the length of a textual catalog id.
	base62IDLength = 22
	// base62Alphabet is the alphabet of textual catalog ids.
	base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// audioIV is the fixed initialization vector of encrypted audio files.
//
//nolint:gochecknoglobals // Immutable value used as a constant.
var audioIV = []byte{
	0x72, 0xe0, 0x67, 0xfb, 0xdd, 0xcb, 0xcf, 0x77,
	0xeb, 0xe8, 0xbc, 0x64, 0x3f, 0x63, 0x0d, 0x93,
}

// qualityFormats lists acceptable file formats per quality tier, most preferred first.
//
//nolint:gochecknoglobals // Immutable lookup table used as a constant.
var qualityFormats = map[string][]string{
	QualityAuto:     {FileFormatOggVorbis160, FileFormatOggVorbis96, FileFormatOggVorbis320},
	QualityNormal:   {FileFormatOggVorbis96, FileFormatOggVorbis160, FileFormatOggVorbis320},
	QualityHigh:     {FileFormatOggVorbis160, FileFormatOggVorbis96, FileFormatOggVorbis320},
	QualityVeryHigh: {FileFormatOggVorbis320, FileFormatOggVorbis160, FileFormatOggVorbis96},
}
