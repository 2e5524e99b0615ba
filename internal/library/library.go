// Package library defines the configured media libraries and the traversal
// policy each one is scanned with.
package library

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TraversalPolicy selects how a library root is turned into media entries.
type TraversalPolicy int

const (
	// FlatRecursive walks the whole tree and surfaces every media file.
	FlatRecursive TraversalPolicy = iota
	// OneFolderPerTitle treats each immediate subdirectory as one title and
	// surfaces its first video file.
	OneFolderPerTitle
)

// TypeMovies is the library type scanned with OneFolderPerTitle by default.
const TypeMovies = "movies"

var (
	// ErrInvalidID is returned for ids that are empty or cannot appear in a
	// media id or a URL path segment.
	ErrInvalidID = errors.New("invalid library id")
	// ErrDuplicateID is returned when two libraries share an id.
	ErrDuplicateID = errors.New("duplicate library id")
	// ErrNoRoot is returned for a library without a root path.
	ErrNoRoot = errors.New("library root path is required")
	// ErrUnknownPolicy is returned by ParsePolicy.
	ErrUnknownPolicy = errors.New("unknown traversal policy")
)

// String returns the configuration name of the policy.
func (p TraversalPolicy) String() string {
	switch p {
	case FlatRecursive:
		return "flat"
	case OneFolderPerTitle:
		return "folder-per-title"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParsePolicy parses a policy name as written in the libraries file.
func ParsePolicy(s string) (TraversalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "flat-recursive", "recursive":
		return FlatRecursive, nil
	case "folder-per-title", "one-folder-per-title", "folders":
		return OneFolderPerTitle, nil
	}
	return FlatRecursive, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// PolicyForType returns the default policy for a library type.
func PolicyForType(libraryType string) TraversalPolicy {
	if libraryType == TypeMovies {
		return OneFolderPerTitle
	}
	return FlatRecursive
}

// Library is a configured root directory. It is immutable for the lifetime
// of the server.
type Library struct {
	ID          string
	DisplayName string
	RootPath    string
	Policy      TraversalPolicy
}

// Summary is the client-facing description of a library.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// New returns a Library of the given type rooted at rootPath, with the
// default policy and display name for that type.
func New(libraryType, rootPath string) Library {
	return Library{
		ID:          libraryType,
		DisplayName: DisplayName(libraryType),
		RootPath:    rootPath,
		Policy:      PolicyForType(libraryType),
	}
}

// Summary returns the client-facing description.
func (l Library) Summary() Summary {
	return Summary{
		ID:   l.ID,
		Name: l.DisplayName,
		Path: l.RootPath,
		Type: l.ID,
	}
}

// DisplayName capitalizes the first letter of a library id.
func DisplayName(id string) string {
	if id == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(id)
	return string(unicode.ToUpper(r)) + id[size:]
}

// ValidateID checks that id can be used in a media id and a URL path segment.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.ContainsAny(id, ":/\\") || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}

// Set is the validated, ordered collection of configured libraries keyed by id.
type Set struct {
	libraries []Library
	byID      map[string]int
}

// NewSet validates libs and returns them as a Set. Root paths are made
// absolute and missing display names are derived from the id. Order is
// preserved.
func NewSet(libs []Library) (*Set, error) {
	s := &Set{
		libraries: make([]Library, 0, len(libs)),
		byID:      make(map[string]int, len(libs)),
	}

	for _, lib := range libs {
		if err := ValidateID(lib.ID); err != nil {
			return nil, err
		}
		if _, exists := s.byID[lib.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, lib.ID)
		}
		if strings.TrimSpace(lib.RootPath) == "" {
			return nil, fmt.Errorf("%w: %q", ErrNoRoot, lib.ID)
		}

		root, err := filepath.Abs(lib.RootPath)
		if err != nil {
			return nil, fmt.Errorf("resolving root for library %q: %w", lib.ID, err)
		}
		lib.RootPath = root

		if lib.DisplayName == "" {
			lib.DisplayName = DisplayName(lib.ID)
		}

		s.byID[lib.ID] = len(s.libraries)
		s.libraries = append(s.libraries, lib)
	}

	return s, nil
}

// All returns a copy of the libraries in configuration order.
func (s *Set) All() []Library {
	out := make([]Library, len(s.libraries))
	copy(out, s.libraries)
	return out
}

// Get returns the library with the given id.
func (s *Set) Get(id string) (Library, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Library{}, false
	}
	return s.libraries[i], true
}

// Len returns the number of libraries.
func (s *Set) Len() int {
	return len(s.libraries)
}

// Summaries returns the client-facing description of every library.
func (s *Set) Summaries() []Summary {
	out := make([]Summary, 0, len(s.libraries))
	for _, lib := range s.libraries {
		out = append(out, lib.Summary())
	}
	return out
}
