package spotify

//go:generate $MOCKGEN -source=url_processor.go -destination=mocks/url_processor_mock.go

import (
	"context"
	"regexp"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// URLProcessor defines the interface for turning command line inputs into download items.
type URLProcessor interface {
	// ExtractDownloadItems expands text files and parses every input into a download item, keeping input order.
	ExtractDownloadItems(ctx context.Context, inputs []string) ([]*DownloadItem, error)
	// DeduplicateDownloadItems removes duplicate DownloadItems based on their category and ItemID.
	DeduplicateDownloadItems(items []*DownloadItem) []*DownloadItem
}

// URLProcessorImpl implements the URLProcessor interface.
type URLProcessorImpl struct{}

// categoriesByKind maps link kinds to download categories.
//
//nolint:gochecknoglobals // Immutable lookup table.
var categoriesByKind = map[string]DownloadCategory{
	"track":    DownloadCategoryTrack,
	"album":    DownloadCategoryAlbum,
	"playlist": DownloadCategoryPlaylist,
	"artist":   DownloadCategoryArtist,
	"episode":  DownloadCategoryEpisode,
	"show":     DownloadCategoryShow,
}

// inputPatterns match the URI and the web link forms of a catalog entity.
//
//nolint:gochecknoglobals,lll // Immutable, pre-compiled regex patterns.
var inputPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^spotify:(?<Kind>track|album|playlist|artist|episode|show):(?<ID>[0-9A-Za-z]{22})$`),
	regexp.MustCompile(`^https?://open\.spotify\.com/(?:intl-[a-z]{2}(?:-[A-Za-z]{2})?/)?(?<Kind>track|album|playlist|artist|episode|show)/(?<ID>[0-9A-Za-z]{22})(?:[/?#].*)?$`),
}

// NewURLProcessor creates and returns a new instance of URLProcessorImpl.
func NewURLProcessor() URLProcessor {
	return &URLProcessorImpl{}
}

// ExtractDownloadItems expands text files and parses every input into a download item, keeping input order.
// Inputs that are not catalog links become search items.
func (up *URLProcessorImpl) ExtractDownloadItems(ctx context.Context, inputs []string) ([]*DownloadItem, error) {
	flattened, err := up.processAndFlattenInputs(inputs)
	if err != nil {
		return nil, err
	}

	items := make([]*DownloadItem, 0, len(flattened))

	for _, input := range flattened {
		item := up.parseDownloadItem(input)
		if item.Category == DownloadCategorySearch {
			logger.Debugf(ctx, "'%s' is not a catalog link, it will be searched for", input)
		}

		items = append(items, item)
	}

	return up.DeduplicateDownloadItems(items), nil
}

// DeduplicateDownloadItems removes duplicate DownloadItems based on their category and ItemID.
func (up *URLProcessorImpl) DeduplicateDownloadItems(items []*DownloadItem) []*DownloadItem {
	uniqueItems := make(map[ShortDownloadItem]struct{}, len(items))
	result := make([]*DownloadItem, 0, len(items))

	for _, item := range items {
		key := item.GetShortVersion()
		if _, ok := uniqueItems[key]; ok {
			continue
		}

		uniqueItems[key] = struct{}{}

		result = append(result, item)
	}

	return result
}

func (up *URLProcessorImpl) parseDownloadItem(input string) *DownloadItem {
	for _, pattern := range inputPatterns {
		itemID := utils.ExtractNamedGroup(pattern, "ID", input)
		if itemID == "" {
			continue
		}

		kind := utils.ExtractNamedGroup(pattern, "Kind", input)

		return &DownloadItem{Category: categoriesByKind[kind], URL: input, ItemID: itemID}
	}

	return &DownloadItem{
		Category: DownloadCategorySearch,
		URL:      input,
		ItemID:   input,
	}
}

func (up *URLProcessorImpl) processAndFlattenInputs(inputs []string) ([]string, error) {
	var (
		processedSet       = make(map[string]struct{})
		processedTextFiles = make(map[string]struct{})
		processedInputs    []string
	)

	add := func(input string) {
		input = strings.TrimSpace(input)
		if input == "" {
			return
		}

		if _, ok := processedSet[input]; ok {
			return
		}

		processedSet[input] = struct{}{}

		processedInputs = append(processedInputs, input)
	}

	for _, input := range inputs {
		if !strings.HasSuffix(strings.ToLower(input), constants.ExtensionTXT) {
			add(input)

			continue
		}

		if _, exists := processedTextFiles[input]; exists {
			continue
		}

		lines, err := utils.ReadUniqueLinesFromFile(input)
		if err != nil {
			return nil, err
		}

		for _, line := range lines {
			add(line)
		}

		processedTextFiles[input] = struct{}{}
	}

	return processedInputs, nil
}
