package spotify

//go:generate $MOCKGEN -source=tag_processor.go -destination=mocks/tag_processor_mock.go

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/oshokin/id3v2/v2"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// Keys of the tag map built for every item.
const (
	tagTitle       = "title"
	tagArtist      = "artist"
	tagAlbumArtist = "albumArtist"
	tagAlbum       = "album"
	tagDate        = "date"
	tagYear        = "year"
	tagGenre       = "genre"
	tagTrackNumber = "trackNumber"
	tagTotalTracks = "totalTracks"
	tagDiscNumber  = "discNumber"
	tagTotalDiscs  = "totalDiscs"
	tagTrackID     = "trackID"
	tagAlbumID     = "albumID"
)

// TagProcessor defines the interface for writing metadata tags to audio files.
type TagProcessor interface {
	// WriteTags writes metadata into the file at req.TrackPath.
	WriteTags(ctx context.Context, req *WriteTagsRequest) error
}

// WriteTagsRequest contains parameters for writing metadata to audio files.
type WriteTagsRequest struct {
	// TrackPath is the file path of the audio file.
	TrackPath string
	// Extension selects the container, the extension of TrackPath is used when it is empty.
	Extension string
	// TrackTags contains metadata key-value pairs to write.
	TrackTags map[string]string
	// TrackLyrics contains the lyrics of the track, nil when there are none.
	TrackLyrics *spotify.Lyrics
	// Cover is the cover image to embed, nil when there is none.
	Cover *CoverImage
	// IsDiscTrackTotals writes "number/total" pairs into the MP3 track and disc frames.
	IsDiscTrackTotals bool
}

// CoverImage contains image data and its MIME type.
type CoverImage struct {
	// Data contains the raw image bytes.
	Data []byte
	// MIMEType specifies the image format (e.g., "image/jpeg").
	MIMEType string
}

// flacField is one Vorbis comment.
type flacField struct {
	key   string
	value string
}

// TagProcessorImpl provides the default implementation of TagProcessor.
type TagProcessorImpl struct{}

// extractFLACCommentResult contains the result of extracting FLAC comment metadata.
type extractFLACCommentResult struct {
	// Comment is the FLAC Vorbis comment metadata block.
	Comment *flacvorbis.MetaDataBlockVorbisComment
	// Index is the index of the comment block in the FLAC file metadata (-1 if not found).
	Index int
}

// NewTagProcessor creates a new TagProcessor instance.
func NewTagProcessor() TagProcessor {
	return new(TagProcessorImpl)
}

// WriteTags writes metadata into the file at req.TrackPath.
// Only MP3 and FLAC files are supported, other containers yield ErrUnsupportedContainer.
func (tp *TagProcessorImpl) WriteTags(ctx context.Context, req *WriteTagsRequest) error {
	if req.TrackPath == "" {
		return ErrEmptyTrackPath
	}

	extension := req.Extension
	if extension == "" {
		extension = filepath.Ext(req.TrackPath)
	}

	switch strings.ToLower(extension) {
	case constants.ExtensionFLAC:
		return tp.writeFLACTags(ctx, req)
	case constants.ExtensionMP3:
		return tp.writeMP3Tags(ctx, req)
	default:
		return ErrUnsupportedContainer
	}
}

func (tp *TagProcessorImpl) writeFLACTags(ctx context.Context, req *WriteTagsRequest) error {
	f, err := flac.ParseFile(filepath.Clean(req.TrackPath))
	if err != nil {
		return err
	}

	commentResult := tp.extractFLACComment(f)

	tag := commentResult.Comment
	if tag == nil {
		tag = flacvorbis.New()
	}

	err = tp.addFLACTags(tag, req)
	if err != nil {
		return err
	}

	tagMeta := tag.Marshal()
	if commentResult.Index >= 0 {
		f.Meta[commentResult.Index] = &tagMeta
	} else {
		f.Meta = append(f.Meta, &tagMeta)
	}

	tp.embedFLACCover(ctx, f, req.Cover)

	return f.Save(req.TrackPath)
}

func (tp *TagProcessorImpl) extractFLACComment(f *flac.File) *extractFLACCommentResult {
	for idx, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}

		comment, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err == nil {
			return &extractFLACCommentResult{
				Comment: comment,
				Index:   idx,
			}
		}
	}

	return &extractFLACCommentResult{
		Comment: nil,
		Index:   -1,
	}
}

func (tp *TagProcessorImpl) addFLACTags(tag *flacvorbis.MetaDataBlockVorbisComment, req *WriteTagsRequest) error {
	flacTags := []flacField{
		{"TITLE", req.TrackTags[tagTitle]},
		{"ARTIST", req.TrackTags[tagArtist]},
		{"ALBUMARTIST", req.TrackTags[tagAlbumArtist]},
		{"ALBUM", req.TrackTags[tagAlbum]},
		{"DATE", req.TrackTags[tagDate]},
		{"YEAR", req.TrackTags[tagYear]},
		{"GENRE", req.TrackTags[tagGenre]},
		{"TRACKNUMBER", req.TrackTags[tagTrackNumber]},
		{"TOTALTRACKS", req.TrackTags[tagTotalTracks]},
		{"DISCNUMBER", req.TrackTags[tagDiscNumber]},
		{"TOTALDISCS", req.TrackTags[tagTotalDiscs]},
		{"TRACK_ID", req.TrackTags[tagTrackID]},
		{"ALBUM_ID", req.TrackTags[tagAlbumID]},
	}

	if req.TrackLyrics != nil {
		flacTags = append(flacTags, flacField{"LYRICS", lyricsTagText(req.TrackLyrics)})
	}

	for _, t := range flacTags {
		if t.value == "" {
			continue
		}

		err := tag.Add(t.key, t.value)
		if err != nil {
			return err
		}
	}

	return nil
}

func (tp *TagProcessorImpl) embedFLACCover(ctx context.Context, f *flac.File, image *CoverImage) {
	if image == nil {
		return
	}

	picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "", image.Data, image.MIMEType)
	if err != nil {
		logger.Errorf(ctx, "Failed to embed image to FLAC: %v", err)

		return
	}

	pictureMeta := picture.Marshal()
	f.Meta = append(f.Meta, &pictureMeta)
}

func (tp *TagProcessorImpl) writeMP3Tags(ctx context.Context, req *WriteTagsRequest) error {
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.TrackPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close()

	tp.addMP3Tags(ctx, tag, req)

	if req.Cover != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    req.Cover.MIMEType,
			PictureType: id3v2.PTFrontCover,
			Picture:     req.Cover.Data,
		})
	}

	return tag.Save()
}

func (tp *TagProcessorImpl) addMP3Tags(ctx context.Context, tag *id3v2.Tag, req *WriteTagsRequest) {
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetTitle(req.TrackTags[tagTitle])
	tag.SetArtist(req.TrackTags[tagArtist])
	tag.SetAlbum(req.TrackTags[tagAlbum])
	tag.SetGenre(req.TrackTags[tagGenre])
	tag.SetYear(req.TrackTags[tagYear])

	tp.addMP3NumberFrame(tag, "Track number/Position in set",
		req.TrackTags[tagTrackNumber], req.TrackTags[tagTotalTracks], req.IsDiscTrackTotals)
	tp.addMP3NumberFrame(tag, "Part of a set",
		req.TrackTags[tagDiscNumber], req.TrackTags[tagTotalDiscs], req.IsDiscTrackTotals)

	if albumArtist := req.TrackTags[tagAlbumArtist]; albumArtist != "" {
		tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), tag.DefaultEncoding(), albumArtist)
	}

	if req.TrackLyrics == nil || len(req.TrackLyrics.Lines) == 0 {
		return
	}

	if req.TrackLyrics.IsSynced() {
		result, err := id3v2.ParseLRCFile(strings.NewReader(formatLRCBody(req.TrackLyrics)))
		if err == nil {
			tag.AddSynchronisedLyricsFrame(id3v2.SynchronisedLyricsFrame{
				Encoding: id3v2.EncodingUTF8,
				// Field is required, so we just use lingua franca.
				Language:          id3v2.EnglishISO6392Code,
				TimestampFormat:   id3v2.SYLTAbsoluteMillisecondsTimestampFormat,
				ContentType:       id3v2.SYLTLyricsContentType,
				ContentDescriptor: "Lyrics",
				SynchronizedTexts: result.SynchronizedTexts,
			})

			return
		}

		logger.Errorf(ctx, "Failed to parse synced lyrics, writing them as plain text: %v", err)
	}

	tag.AddUnsynchronisedLyricsFrame(
		//nolint:exhaustruct // ContentDescriptor not available in source data.
		id3v2.UnsynchronisedLyricsFrame{
			Encoding: id3v2.EncodingUTF8,
			Lyrics:   req.TrackLyrics.Text(),
			// Field is required, so we just use lingua franca.
			Language: id3v2.EnglishISO6392Code,
		})
}

func (tp *TagProcessorImpl) addMP3NumberFrame(tag *id3v2.Tag, description, number, total string, isTotalWritten bool) {
	if number == "" || number == "0" {
		return
	}

	value := number
	if isTotalWritten && total != "" && total != "0" {
		value += "/" + total
	}

	tag.AddTextFrame(tag.CommonID(description), tag.DefaultEncoding(), value)
}

func lyricsTagText(lyrics *spotify.Lyrics) string {
	if lyrics.IsSynced() {
		return formatLRCBody(lyrics)
	}

	return lyrics.Text()
}
