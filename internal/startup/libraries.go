package startup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mediastream/internal/library"
	"mediastream/internal/logging"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for a libraries file whose extension is
// not .json, .yaml, .yml or .toml.
var ErrUnsupportedFormat = errors.New("unsupported libraries file format")

// MediaFolder is one library as written in the libraries file.
type MediaFolder struct {
	Path   string `json:"path" yaml:"path" toml:"path"`
	Type   string `json:"type" yaml:"type" toml:"type"`
	Policy string `json:"policy,omitempty" yaml:"policy,omitempty" toml:"policy,omitempty"`
}

// LibrariesFile is the top-level shape of the libraries file.
type LibrariesFile struct {
	MediaFolders []MediaFolder `json:"mediaFolders" yaml:"mediaFolders" toml:"mediaFolders"`
}

// defaultLibraryTypes are created under MEDIA_ROOT when no libraries are
// configured.
var defaultLibraryTypes = []string{"movies", "tvshows", "music"}

// DefaultMediaFolders returns the movies, tvshows and music libraries under
// mediaRoot.
func DefaultMediaFolders(mediaRoot string) []MediaFolder {
	folders := make([]MediaFolder, 0, len(defaultLibraryTypes))
	for _, t := range defaultLibraryTypes {
		folders = append(folders, MediaFolder{Path: filepath.Join(mediaRoot, t), Type: t})
	}
	return folders
}

// ReadLibrariesFile decodes path according to its extension. A missing file
// is not an error and yields an empty LibrariesFile.
func ReadLibrariesFile(path string) (LibrariesFile, error) {
	var lf LibrariesFile
	if path == "" {
		return lf, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lf, nil
		}
		return lf, fmt.Errorf("reading libraries file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &lf)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &lf)
	case ".toml":
		err = toml.Unmarshal(data, &lf)
	default:
		return lf, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return lf, fmt.Errorf("parsing libraries file %s: %w", path, err)
	}
	return lf, nil
}

// LoadLibrarySet reads the libraries file and builds the validated library
// set. An absent file or an empty folder list falls back to
// DefaultMediaFolders.
func LoadLibrarySet(path, mediaRoot string) (*library.Set, error) {
	lf, err := ReadLibrariesFile(path)
	if err != nil {
		return nil, err
	}

	folders := lf.MediaFolders
	if len(folders) == 0 {
		logging.Info("  No libraries configured in %s, using defaults under %s", path, mediaRoot)
		folders = DefaultMediaFolders(mediaRoot)
	}

	libs := make([]library.Library, 0, len(folders))
	for _, folder := range folders {
		lib := library.New(folder.Type, folder.Path)
		if folder.Policy != "" {
			policy, err := library.ParsePolicy(folder.Policy)
			if err != nil {
				return nil, fmt.Errorf("library %q: %w", folder.Type, err)
			}
			lib.Policy = policy
		}
		libs = append(libs, lib)
	}

	return library.NewSet(libs)
}

// externalPrefixes mark mount points that are never created locally.
var externalPrefixes = []string{"/mnt/", "/media/", "/volume", "/data/"}

// IsExternalPath reports whether path looks like a mounted volume or network
// share.
func IsExternalPath(path string) bool {
	for _, prefix := range externalPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// EnsureLibraryRoots creates missing library roots, skipping external paths.
// Failures are logged; a library whose root cannot be created still serves
// (empty) results.
func EnsureLibraryRoots(libs []library.Library) {
	for _, lib := range libs {
		if IsExternalPath(lib.RootPath) {
			logging.Info("  [%s] external path, not creating: %s", lib.ID, lib.RootPath)
			continue
		}
		if err := ensureDirectory(lib.RootPath, lib.ID); err != nil {
			logging.Warn("  [%s] library root issue: %v", lib.ID, err)
		}
	}
}
