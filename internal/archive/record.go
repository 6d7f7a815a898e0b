package archive

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the timestamp format of archive lines.
const TimestampLayout = "2006-01-02 15:04:05"

// recordFieldsCount is the number of tab-separated fields in an archive line.
const recordFieldsCount = 5

// Record is one archive line: {id, timestamp, artist, title, filename}.
type Record struct {
	// ID is the content identifier.
	ID string
	// Timestamp is the download time.
	Timestamp time.Time
	// Artist is the display artist.
	Artist string
	// Title is the display title.
	Title string
	// Filename is the base name in directory indexes and the absolute path in the global index.
	Filename string
}

// Static error definitions for better error handling.
var (
	// ErrMalformedRecord indicates a line without the expected fields.
	ErrMalformedRecord = errors.New("malformed archive record")
)

//nolint:gochecknoglobals // Immutable replacer used as a constant.
var fieldSanitizer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// String renders the record as an archive line without the trailing newline.
func (r *Record) String() string {
	return strings.Join([]string{
		fieldSanitizer.Replace(r.ID),
		r.Timestamp.Format(TimestampLayout),
		fieldSanitizer.Replace(r.Artist),
		fieldSanitizer.Replace(r.Title),
		fieldSanitizer.Replace(r.Filename),
	}, "\t")
}

// ParseRecord parses an archive line.
// Lines with missing fields or an empty id are rejected; an unreadable timestamp is kept as zero time.
func ParseRecord(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < recordFieldsCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedRecord, recordFieldsCount, len(fields))
	}

	id := strings.TrimSpace(fields[0])
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrMalformedRecord)
	}

	// Extra tabs belong to the filename, which is the last field.
	filename := strings.Join(fields[recordFieldsCount-1:], "\t")

	timestamp, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(fields[1]), time.Local)
	if err != nil {
		timestamp = time.Time{}
	}

	return &Record{
		ID:        id,
		Timestamp: timestamp,
		Artist:    fields[2],
		Title:     fields[3],
		Filename:  filename,
	}, nil
}
