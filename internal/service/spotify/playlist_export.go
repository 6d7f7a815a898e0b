package spotify

import (
	"context"
	"path/filepath"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// maxPredictedItems is the number of items whose directories predict the directory of a collection.
const maxPredictedItems = 2

// playlistFor returns the playlist export that lists req, or nil.
func (s *ServiceImpl) playlistFor(ctx context.Context, req *itemRequest, dest string) *M3U8Writer {
	if !req.isPrimary {
		return nil
	}

	if req.collection != nil {
		if req.collection.playlist != nil || !req.collection.isDelegated {
			return req.collection.playlist
		}
	}

	if !s.rt.Config.ExportM3U8 {
		return nil
	}

	if s.state.singlesPlaylist == nil {
		dir := s.rt.Config.ParsedM3U8Location
		if dir == "" {
			dir = filepath.Dir(dest)
		}

		name := s.rt.LaunchedAt.Format(launchStampLayout) + singlesPlaylistSuffix + constants.ExtensionM3U8

		writer, err := OpenM3U8(filepath.Join(dir, name), s.rt.Config.M3U8RelativePaths)
		if err != nil {
			logger.Warnf(ctx, "Failed to open playlist export: %v", err)

			return nil
		}

		s.state.singlesPlaylist = writer
	}

	return s.state.singlesPlaylist
}

// appendPlaylistEntry lists a downloaded or already present item in its playlist export.
func (s *ServiceImpl) appendPlaylistEntry(
	ctx context.Context,
	req *itemRequest,
	item *spotify.ContentItem,
	dest string,
) {
	writer := s.playlistFor(ctx, req, dest)
	if writer == nil {
		return
	}

	_, err := writer.Append(item.DurationMs, item.Label(), dest)
	if err != nil {
		logger.Warnf(ctx, "Failed to add '%s' to '%s': %v", item.Label(), writer.Path(), err)
	}
}

// openCollectionPlaylist opens the playlist export named after a collection in dir.
func (s *ServiceImpl) openCollectionPlaylist(ctx context.Context, name, dir string) *M3U8Writer {
	filename := utils.SanitizeFilename(name, s.rt.Config.MaxFilenameLength) + constants.ExtensionM3U8

	writer, err := OpenM3U8(filepath.Join(dir, filename), s.rt.Config.M3U8RelativePaths)
	if err != nil {
		logger.Warnf(ctx, "Failed to open playlist export for '%s': %v", name, err)

		return nil
	}

	logger.Debugf(ctx, "Exporting playlist to '%s'", writer.Path())

	return writer
}

// predictCollectionDir returns the directory shared by the first items of a collection,
// or the root of the collection when they differ or cannot be rendered.
func (s *ServiceImpl) predictCollectionDir(reqs []*itemRequest) string {
	if s.rt.Config.ParsedM3U8Location != "" {
		return s.rt.Config.ParsedM3U8Location
	}

	var (
		root = s.rt.Config.ParsedRootPath
		dirs []string
	)

	for _, req := range reqs[:min(len(reqs), maxPredictedItems)] {
		mode := req.mode
		if req.kind == spotify.KindEpisode {
			mode = TemplateModeEpisode
			root = s.rt.Config.ParsedRootPodcastPath
		}

		template := s.templateManager.TemplateFor(mode)

		var (
			relativeDir string
			err         error
		)

		if req.resolved != nil {
			var rendered *RenderedPath

			rendered, err = s.templateManager.Render(template, req.resolved, req.extras, "")
			if err == nil {
				relativeDir = filepath.Dir(rendered.Path)
			}
		} else {
			relativeDir, err = s.templateManager.RenderDirectory(template, req.extras)
		}

		if err != nil {
			return root
		}

		dirs = append(dirs, filepath.Join(root, relativeDir))
	}

	if len(dirs) == 0 {
		return root
	}

	for _, dir := range dirs[1:] {
		if dir != dirs[0] {
			return root
		}
	}

	return dirs[0]
}

// finishPlaylist merges the entries of an interrupted previous run into a completed playlist export.
func (s *ServiceImpl) finishPlaylist(ctx context.Context, writer *M3U8Writer) {
	if writer == nil || ctx.Err() != nil {
		return
	}

	err := writer.Finish()
	if err != nil {
		logger.Warnf(ctx, "Failed to finish playlist export '%s': %v", writer.Path(), err)
	}
}
