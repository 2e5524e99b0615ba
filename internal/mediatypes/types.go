package mediatypes

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind represents the media category of a classified file.
type Kind string

const (
	// KindVideo represents a video file.
	KindVideo Kind = "video"
	// KindAudio represents an audio file.
	KindAudio Kind = "audio"
	// KindImage represents an image file.
	KindImage Kind = "image"
)

// DefaultMimeType is the content type for files that do not classify.
const DefaultMimeType = "application/octet-stream"

// Classification is the result of a successful extension lookup.
type Classification struct {
	Kind     Kind
	MimeType string
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".webm": true,
}

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".flac": true, ".ogg": true, ".aac": true,
}

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".webm": "video/webm",

	// Audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".aac":  "audio/aac",

	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Ext returns the lowercased extension of filename including the leading dot.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// KindForExt returns the Kind for a lowercase extension such as ".mp4".
func KindForExt(ext string) (Kind, bool) {
	switch {
	case VideoExtensions[ext]:
		return KindVideo, true
	case AudioExtensions[ext]:
		return KindAudio, true
	case ImageExtensions[ext]:
		return KindImage, true
	}
	return "", false
}

// Classify looks up filename's extension in the media table. The boolean is
// false when the extension is not a supported media format.
func Classify(filename string) (Classification, bool) {
	ext := Ext(filename)
	kind, ok := KindForExt(ext)
	if !ok {
		return Classification{}, false
	}
	return Classification{Kind: kind, MimeType: MimeTypes[ext]}, true
}

// IsKind reports whether filename classifies as kind.
func IsKind(filename string, kind Kind) bool {
	c, ok := Classify(filename)
	return ok && c.Kind == kind
}

// MimeType returns the content type for filename, or DefaultMimeType if the
// extension is not recognized.
func MimeType(filename string) string {
	if mime, ok := MimeTypes[Ext(filename)]; ok {
		return mime
	}
	return DefaultMimeType
}

// Extensions returns the sorted extensions registered for kind.
func Extensions(kind Kind) []string {
	var table map[string]bool
	switch kind {
	case KindVideo:
		table = VideoExtensions
	case KindAudio:
		table = AudioExtensions
	case KindImage:
		table = ImageExtensions
	default:
		return nil
	}

	exts := make([]string, 0, len(table))
	for ext := range table {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
