// Package mediaid encodes a (library, relative path) pair into the opaque,
// URL-safe identifier handed to clients, and decodes it back.
//
// The token is the unpadded base64url encoding of "<library>:<relative path>"
// with path separators normalized to "/". The first colon is the only
// delimiter; folder and file names are separated by the slash already in the
// relative path, so "Inception 2010/movie.mp4" survives a round trip intact.
package mediaid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Separator divides the library id from the relative path inside a token.
const Separator = ":"

// ErrMalformed is returned for any token that does not decode to a valid
// (library, relative path) pair. Callers treat it the same as "not found".
var ErrMalformed = errors.New("malformed media id")

// Reasons wrapped by ErrMalformed. They are exposed for logging and tests;
// clients must never see them.
var (
	ErrEmptyToken   = fmt.Errorf("%w: empty token", ErrMalformed)
	ErrEncoding     = fmt.Errorf("%w: not base64url", ErrMalformed)
	ErrNoSeparator  = fmt.Errorf("%w: missing library separator", ErrMalformed)
	ErrEmptyLibrary = fmt.Errorf("%w: empty library id", ErrMalformed)
	ErrInvalidPath  = fmt.Errorf("%w: invalid relative path", ErrMalformed)
)

var encoding = base64.RawURLEncoding

// ID is a decoded media identifier.
type ID struct {
	LibraryID    string
	RelativePath string
}

// New builds an ID, normalizing separators in relativePath.
func New(libraryID, relativePath string) ID {
	return ID{LibraryID: libraryID, RelativePath: normalize(relativePath)}
}

// Encode returns the opaque token for libraryID and relativePath.
func Encode(libraryID, relativePath string) string {
	return New(libraryID, relativePath).String()
}

// String returns the encoded token.
func (id ID) String() string {
	return encoding.EncodeToString([]byte(id.LibraryID + Separator + id.RelativePath))
}

// Folder returns everything before the last path segment, or "" for a file
// at the library root.
func (id ID) Folder() string {
	dir := path.Dir(id.RelativePath)
	if dir == "." {
		return ""
	}
	return dir
}

// Filename returns the last path segment.
func (id ID) Filename() string {
	return path.Base(id.RelativePath)
}

// Segments returns the slash-separated components of the relative path.
func (id ID) Segments() []string {
	return strings.Split(id.RelativePath, "/")
}

// Decode parses a token produced by Encode. Every failure wraps ErrMalformed.
func Decode(token string) (ID, error) {
	if token == "" {
		return ID{}, ErrEmptyToken
	}

	// Tolerate padded tokens from clients that re-encode ids.
	raw, err := encoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return ID{}, ErrEncoding
	}

	libraryID, relativePath, found := strings.Cut(string(raw), Separator)
	if !found {
		return ID{}, ErrNoSeparator
	}
	if libraryID == "" {
		return ID{}, ErrEmptyLibrary
	}
	if err := ValidateRelativePath(relativePath); err != nil {
		return ID{}, err
	}

	return ID{LibraryID: libraryID, RelativePath: relativePath}, nil
}

// ValidateRelativePath rejects paths that are empty, absolute, contain empty
// segments, or contain "." or ".." segments. A valid path cannot resolve
// outside the directory it is joined to.
func ValidateRelativePath(relativePath string) error {
	if relativePath == "" || strings.HasPrefix(relativePath, "/") || strings.Contains(relativePath, "\\") {
		return ErrInvalidPath
	}
	for _, segment := range strings.Split(relativePath, "/") {
		switch segment {
		case "", ".", "..":
			return ErrInvalidPath
		}
		if strings.ContainsRune(segment, 0) {
			return ErrInvalidPath
		}
	}
	return nil
}

func normalize(relativePath string) string {
	return filepath.ToSlash(relativePath)
}
