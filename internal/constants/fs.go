package constants

import "os"

const (
	// DefaultFilePermissions sets the default permissions for regular files: (rw-r--r--).
	// Owner: read and write;
	// Group: read;
	// Others: read.
	DefaultFilePermissions os.FileMode = 0o644

	// DefaultFolderPermissions sets the default permissions for regular folders: (rwxr-xr-x).
	// Owner: read, write, and execute;
	// Group: read and execute;
	// Others: read and execute.
	DefaultFolderPermissions os.FileMode = 0o755
)

// File extension constants.
const (
	ExtensionOGG  = ".ogg"
	ExtensionMP3  = ".mp3"
	ExtensionFLAC = ".flac"
	ExtensionAAC  = ".aac"
	ExtensionM4A  = ".m4a"
	ExtensionOpus = ".opus"
	ExtensionLRC  = ".lrc"
	ExtensionJPG  = ".jpg"
	ExtensionM3U8 = ".m3u8"
	ExtensionPart = ".part"
	ExtensionTXT  = ".txt"
)

// Sidecar file names.
const (
	// DirectoryArchiveFilename is the hidden per-directory download index.
	DirectoryArchiveFilename = ".song_ids"
	// CoverFilename is the album art file written next to tracks when enabled.
	CoverFilename = "cover.jpg"
	// LikedSongsPlaylistName is the base name of the liked songs playlist export.
	LikedSongsPlaylistName = "Liked Songs"
)
