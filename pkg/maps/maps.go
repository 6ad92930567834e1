package maps

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"cso2web/pkg/log"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// ImageList holds the map background images found under a static directory.
// It is built once at startup and read-only afterwards.
type ImageList struct {
	files []string
}

// Build scans dir for image files. A missing or empty directory is not an
// error; pages simply render without a background.
func Build(dir string) *ImageList {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Could not read map image directory")
		return &ImageList{}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, entry.Name())
		}
	}

	return &ImageList{files: files}
}

// Random returns a random image file name, or the empty string when the
// list is empty.
func (l *ImageList) Random() string {
	if len(l.files) == 0 {
		return ""
	}
	return l.files[rand.Intn(len(l.files))]
}

// Count returns the number of images found.
func (l *ImageList) Count() int {
	return len(l.files)
}
