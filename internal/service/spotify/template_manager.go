package spotify

//go:generate $MOCKGEN -source=template_manager.go -destination=mocks/template_manager_mock.go

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// TemplateManager renders output path templates.
type TemplateManager interface {
	// TemplateFor returns the path template of a mode.
	TemplateFor(mode TemplateMode) string
	// Render fills template from extras and item fields and returns a relative path ending in extension.
	Render(template string, item *spotify.ContentItem, extras map[string]string, extension string) (*RenderedPath, error)
	// RenderDirectory renders the directory part of template from extras alone.
	RenderDirectory(template string, extras map[string]string) (string, error)
}

// RenderedPath is a rendered template.
type RenderedPath struct {
	// Path is the relative, sanitized file path.
	Path string
	// Label is the "artist - title" form used in logs and playlists.
	Label string
}

// TemplateManagerImpl implements the TemplateManager interface.
type TemplateManagerImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// templates maps every mode to its template.
	templates map[TemplateMode]string
}

// templateToken is a literal run or a placeholder of a parsed template.
type templateToken struct {
	// text is the literal text or the placeholder name.
	text string
	// isField marks placeholders.
	isField bool
}

// NewTemplateManager creates and returns a new instance of TemplateManagerImpl.
func NewTemplateManager(cfg *config.Config) TemplateManager {
	return &TemplateManagerImpl{
		cfg: cfg,
		templates: map[TemplateMode]string{
			TemplateModeSingle:           withDefault(cfg.OutputSingle, config.DefaultOutputSingle),
			TemplateModeAlbum:            withDefault(cfg.OutputAlbum, config.DefaultOutputAlbum),
			TemplateModePlaylist:         withDefault(cfg.OutputPlaylist, config.DefaultOutputPlaylist),
			TemplateModeExtendedPlaylist: withDefault(cfg.OutputPlaylistExt, config.DefaultOutputPlaylistExt),
			TemplateModeLikedSongs:       withDefault(cfg.OutputLikedSongs, config.DefaultOutputLikedSongs),
			TemplateModeEpisode:          episodeTemplate,
		},
	}
}

// TemplateFor returns the path template of a mode.
func (tm *TemplateManagerImpl) TemplateFor(mode TemplateMode) string {
	return tm.templates[mode]
}

// Render fills template from extras and item fields and returns a relative path ending in extension.
// Every substituted value is sanitized on its own, separators written in the template are kept.
func (tm *TemplateManagerImpl) Render(
	template string,
	item *spotify.ContentItem,
	extras map[string]string,
	extension string,
) (*RenderedPath, error) {
	fields := tm.itemFields(item)
	for key, value := range extras {
		fields[key] = value
	}

	rendered, err := substitute(template, fields)
	if err != nil {
		return nil, err
	}

	return &RenderedPath{
		Path:  tm.buildPath(rendered, extension),
		Label: item.Label(),
	}, nil
}

// RenderDirectory renders the directory part of template from extras alone.
func (tm *TemplateManagerImpl) RenderDirectory(template string, extras map[string]string) (string, error) {
	normalized := strings.ReplaceAll(template, "\\", "/")

	separatorIndex := strings.LastIndex(normalized, "/")
	if separatorIndex < 0 {
		return "", nil
	}

	rendered, err := substitute(normalized[:separatorIndex], extras)
	if err != nil {
		return "", err
	}

	return tm.buildPath(rendered, ""), nil
}

func (tm *TemplateManagerImpl) itemFields(item *spotify.ContentItem) map[string]string {
	albumArtist := item.PrimaryArtist()
	if len(item.AlbumArtists) > 0 {
		albumArtist = strings.Join(item.AlbumArtists, tm.cfg.ArtistDelimiter)
	}

	return map[string]string{
		"artist":        item.PrimaryArtist(),
		"artists":       strings.Join(item.Artists, tm.cfg.ArtistDelimiter),
		"album_artist":  albumArtist,
		"album":         item.AlbumName,
		"album_id":      item.AlbumID,
		"song_name":     item.Name,
		"release_year":  item.ReleaseYear,
		"disc_number":   strconv.Itoa(item.DiscNumber),
		"track_number":  utils.ZeroPad(item.TrackNumber, utils.PadWidth(item.TotalTracks)),
		"total_tracks":  strconv.Itoa(item.TotalTracks),
		"id":            item.ID,
		"track_id":      item.ID,
		"show":          item.ShowName,
		"episode_name":  item.Name,
		"primary_genre": "",
	}
}

// buildPath splits rendered on template separators, cleans every component
// and appends extension to the last one without exceeding the length limit.
func (tm *TemplateManagerImpl) buildPath(rendered, extension string) string {
	rawComponents := strings.FieldsFunc(rendered, func(r rune) bool {
		return r == '/' || r == '\\'
	})

	components := make([]string, 0, len(rawComponents))
	for i, component := range rawComponents {
		limit := tm.cfg.MaxFilenameLength
		if i == len(rawComponents)-1 && extension != "" && limit > 0 {
			limit = max(limit-utf8.RuneCountInString(extension), 1)
		}

		components = append(components, utils.SanitizeFilename(component, limit))
	}

	if len(components) == 0 {
		components = append(components, "_")
	}

	if extension != "" {
		components[len(components)-1] += extension
	}

	return filepath.Join(components...)
}

// substitute replaces every placeholder of template with its sanitized value.
func substitute(template string, fields map[string]string) (string, error) {
	var builder strings.Builder

	for _, token := range tokenize(template) {
		if !token.isField {
			builder.WriteString(token.text)

			continue
		}

		value, ok := fields[token.text]
		if !ok {
			return "", &TemplateFieldError{Field: token.text, Template: template}
		}

		builder.WriteString(utils.ReplaceInvalidChars(value))
	}

	return builder.String(), nil
}

// tokenize splits template into literals and placeholders.
// A brace without a valid placeholder name is a literal.
func tokenize(template string) []templateToken {
	var (
		tokens  []templateToken
		literal strings.Builder
	)

	flushLiteral := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, templateToken{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		if template[i] != '{' {
			literal.WriteByte(template[i])

			continue
		}

		end := strings.IndexByte(template[i+1:], '}')
		if end < 0 || !isPlaceholderName(template[i+1:i+1+end]) {
			literal.WriteByte(template[i])

			continue
		}

		flushLiteral()

		tokens = append(tokens, templateToken{text: template[i+1 : i+1+end], isField: true})
		i += end + 1
	}

	flushLiteral()

	return tokens
}

func isPlaceholderName(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}

	return true
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}
