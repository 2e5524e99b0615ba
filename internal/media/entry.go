package media

import (
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"mediastream/internal/library"
	"mediastream/internal/mediaid"
	"mediastream/internal/mediatypes"
)

// StreamPrefix is the URL prefix of the range delivery route.
const StreamPrefix = "/stream/"

// Entry is one playable or viewable item in a library.
type Entry struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Kind        mediatypes.Kind `json:"type"`
	LibraryID   string          `json:"libraryType"`
	Filename    string          `json:"filename"`
	StreamPath  string          `json:"path"`
	Size        uint64          `json:"size"`
	ModifiedAt  time.Time       `json:"modified"`
	GroupFolder string          `json:"folder,omitempty"`
}

// RelativePath returns the slash-separated path of the entry below its
// library root.
func (e Entry) RelativePath() string {
	if e.GroupFolder == "" {
		return e.Filename
	}
	return e.GroupFolder + "/" + e.Filename
}

var titleSeparators = strings.NewReplacer(".", " ", "_", " ", "-", " ")

// TitleFromFilename strips the extension and replaces '.', '_' and '-' with
// spaces.
func TitleFromFilename(filename string) string {
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	return titleSeparators.Replace(stem)
}

// StreamPath builds the stream URL path for a file. Every segment is
// path-escaped, and groupFolder may span several segments.
func StreamPath(libraryID, groupFolder, filename string) string {
	var b strings.Builder
	b.WriteString(StreamPrefix)
	b.WriteString(url.PathEscape(libraryID))
	if groupFolder != "" {
		for _, segment := range strings.Split(groupFolder, "/") {
			b.WriteByte('/')
			b.WriteString(url.PathEscape(segment))
		}
	}
	b.WriteByte('/')
	b.WriteString(url.PathEscape(filename))
	return b.String()
}

func newEntry(lib library.Library, relPath, title string, kind mediatypes.Kind, info os.FileInfo) Entry {
	folder := path.Dir(relPath)
	if folder == "." {
		folder = ""
	}
	filename := path.Base(relPath)

	size := info.Size()
	if size < 0 {
		size = 0
	}

	return Entry{
		ID:          mediaid.Encode(lib.ID, relPath),
		Title:       title,
		Kind:        kind,
		LibraryID:   lib.ID,
		Filename:    filename,
		StreamPath:  StreamPath(lib.ID, folder, filename),
		Size:        uint64(size),
		ModifiedAt:  info.ModTime(),
		GroupFolder: folder,
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
