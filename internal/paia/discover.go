package paia

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	ThemesFile    = "recurring_themes.md"
	LearningsFile = "learnings.md"
)

// Files locates the two PAIA documents. Either path may be empty.
type Files struct {
	Themes    string
	Learnings string
}

// ErrNoFiles is returned by Discover when neither document exists under the root.
var ErrNoFiles = errors.New("no PAIA files found")

// Discover searches root recursively for the PAIA documents. When several
// copies exist the shallowest one wins.
func Discover(root string) (Files, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Files{}, err
	}
	if !info.IsDir() {
		return Files{}, fmt.Errorf("%s is not a directory", root)
	}

	fsys := os.DirFS(root)
	themes, err := shallowest(fsys, "**/"+ThemesFile)
	if err != nil {
		return Files{}, err
	}
	learnings, err := shallowest(fsys, "**/"+LearningsFile)
	if err != nil {
		return Files{}, err
	}
	if themes == "" && learnings == "" {
		return Files{}, ErrNoFiles
	}

	files := Files{}
	if themes != "" {
		files.Themes = filepath.Join(root, filepath.FromSlash(themes))
	}
	if learnings != "" {
		files.Learnings = filepath.Join(root, filepath.FromSlash(learnings))
	}
	return files, nil
}

func shallowest(fsys fs.FS, pattern string) (string, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Slice(matches, func(i, j int) bool {
		di, dj := strings.Count(matches[i], "/"), strings.Count(matches[j], "/")
		if di != dj {
			return di < dj
		}
		return matches[i] < matches[j]
	})
	return matches[0], nil
}

// Read loads both documents. A missing path reads as empty text.
func (f Files) Read() (themes, learnings string, err error) {
	if themes, err = readOptional(f.Themes); err != nil {
		return "", "", err
	}
	if learnings, err = readOptional(f.Learnings); err != nil {
		return "", "", err
	}
	return themes, learnings, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
