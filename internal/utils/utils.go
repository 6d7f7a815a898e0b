package utils

import (
	"bufio"
	"context"
	"math"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// ImageJPEGMimeType is the MIME type for JPEG images.
	ImageJPEGMimeType = "image/jpeg"

	// ImagePNGMimeType is the MIME type for PNG images.
	ImagePNGMimeType = "image/png"

	// minPadWidth is the narrowest zero-padded number width.
	minPadWidth = 2
)

var (
	// invalidCharsPattern includes ASCII control characters (0-31) and Windows-restricted characters: < > : " / \ | ? *.
	//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
	invalidCharsPattern = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F\x7F]`)

	// textContentTypePatterns is a slice of regular expressions that match content types
	// considered to be text-based.
	//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
	textContentTypePatterns = []*regexp.Regexp{
		regexp.MustCompile("^text/.+"),
		regexp.MustCompile("^application/json$"),
		regexp.MustCompile(`^application/x-www-form-urlencoded$`),
	}

	// windowsReservedNames holds device names that cannot be used as file or folder names on Windows.
	//nolint:gochecknoglobals // This is an immutable map used as a constant for validation purposes.
	windowsReservedNames = map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
		"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
		"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
	}
)

// SafeUint64ToInt64 converts a uint64 value to an int64 safely,
// ensuring that the value does not exceed the maximum limit of int64.
func SafeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(val)
}

// SanitizeFilename makes a single path component valid on Windows, macOS and Linux.
// Forbidden characters become underscores, reserved device names get an underscore prefix,
// surrounding whitespace and trailing dots are removed.
// A positive maxLength truncates the result to that many runes.
func SanitizeFilename(name string, maxLength int) string {
	result := invalidCharsPattern.ReplaceAllString(name, "_")
	result = strings.TrimSpace(result)

	if maxLength > 0 {
		result = TruncateRunes(result, maxLength)
	}

	result = strings.TrimRight(strings.TrimSpace(result), ".")

	baseName := result
	if dotIndex := strings.Index(result, "."); dotIndex != -1 {
		baseName = result[:dotIndex]
	}

	if _, ok := windowsReservedNames[strings.ToUpper(baseName)]; ok {
		result = TruncateRunes("_"+result, maxLength)
	}

	if result == "" {
		result = "_"
	}

	return result
}

// ReplaceInvalidChars replaces path separators, control characters and
// characters forbidden on Windows with underscores.
func ReplaceInvalidChars(s string) string {
	return invalidCharsPattern.ReplaceAllString(s, "_")
}

// TruncateRunes shortens s to at most limit runes without splitting a multi-byte character.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)

	return string(runes[:limit])
}

// PadWidth returns the zero-padding width for numbering a collection of total items.
func PadWidth(total int) int {
	return max(minPadWidth, len(strconv.Itoa(max(total, 0))))
}

// ZeroPad formats n with leading zeros up to width digits.
func ZeroPad(n, width int) string {
	value := strconv.Itoa(n)
	if len(value) >= width {
		return value
	}

	return strings.Repeat("0", width-len(value)) + value
}

// Pause blocks for the given duration or until ctx is done.
// It returns false when the context was cancelled first.
func Pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// SetFileExtension ensures the file has the specified extension.
// If the filename already has the correct extension, it is returned unchanged.
// If the filename has a different extension, the old extension is replaced with the new one
// when isExtensionReplaced is set, otherwise the new extension is appended.
func SetFileExtension(filename, extension string, isExtensionReplaced bool) string {
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}

	currentExt := filepath.Ext(filename)
	if currentExt == extension {
		return filename
	}

	if isExtensionReplaced {
		filename = strings.TrimSuffix(filename, currentExt)
	}

	return filename + extension
}

// IsFileExist checks if a file exists at the specified path.
// It returns true if the file exists and is not a directory, false if the file does not exist,
// and an error if there was an issue accessing the file.
func IsFileExist(path string) (bool, error) {
	stat, err := os.Stat(path)
	if err == nil {
		return !stat.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// FileSize returns the size of a regular file, or zero when it does not exist.
func FileSize(path string) int64 {
	stat, err := os.Stat(path)
	if err != nil || stat.IsDir() {
		return 0
	}

	return stat.Size()
}

// ReadUniqueLinesFromFile reads a text file and returns a slice of unique non-empty lines.
// Lines starting with '#' are treated as comments.
func ReadUniqueLinesFromFile(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer file.Close() //nolint:errcheck // Error on close is not critical here.

	var (
		uniqueLines = make(map[string]struct{})
		lines       []string
		scanner     = bufio.NewScanner(file)
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if _, exists := uniqueLines[line]; !exists {
			uniqueLines[line] = struct{}{}

			lines = append(lines, line)
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// ExtractNamedGroup extracts the value of a named capturing group from a regex match.
// It returns an empty string if the group is not found or if there is no match.
func ExtractNamedGroup(re *regexp.Regexp, groupName, input string) string {
	match := re.FindStringSubmatch(input)
	if match == nil {
		return ""
	}

	for i, name := range re.SubexpNames() {
		if name == groupName {
			return match[i]
		}
	}

	return ""
}

// IsTextContentType checks if the given content type represents a text-based format
// with a UTF-8 or ASCII charset.
func IsTextContentType(contentType string) bool {
	parsedType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, pattern := range textContentTypePatterns {
		if !pattern.MatchString(parsedType) {
			continue
		}

		charset := strings.ToLower(params["charset"])

		return charset == "" || charset == "utf-8" || charset == "us-ascii"
	}

	return false
}

// Map applies a transformation function to each element of a slice and returns a new slice with the results.
func Map[E, S any](v []E, transformFunc func(E) S) []S {
	result := make([]S, len(v))
	for i := range v {
		result[i] = transformFunc(v[i])
	}

	return result
}

// Unique returns the distinct values of v, keeping the first occurrence order.
func Unique[E comparable](v []E) []E {
	seen := make(map[E]struct{}, len(v))
	result := make([]E, 0, len(v))

	for _, item := range v {
		if _, ok := seen[item]; ok {
			continue
		}

		seen[item] = struct{}{}

		result = append(result, item)
	}

	return result
}

// Chunk splits v into consecutive slices of at most size elements.
func Chunk[E any](v []E, size int) [][]E {
	if size <= 0 {
		return [][]E{v}
	}

	result := make([][]E, 0, (len(v)+size-1)/size)
	for start := 0; start < len(v); start += size {
		result = append(result, v[start:min(start+size, len(v))])
	}

	return result
}

// ExpandHomeDir replaces a leading "~" with the current user's home directory.
func ExpandHomeDir(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
