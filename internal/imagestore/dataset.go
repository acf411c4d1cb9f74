package imagestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/corona10/goimagehash"

	"nutriscan/internal/logging"
	"nutriscan/internal/photo"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Entry describes one file in the local dataset.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Label   string    `json:"label"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// List returns the images in dir sorted by name. A missing directory is empty.
func List(dir string) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read image dir: %w", err)
	}
	var entries []Entry
	for _, item := range items {
		if item.IsDir() || strings.HasPrefix(item.Name(), ".") {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(item.Name()))] {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    item.Name(),
			Path:    filepath.Join(dir, item.Name()),
			Label:   LabelFromName(item.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Pair is two dataset images whose perceptual hashes are close.
type Pair struct {
	A        Entry `json:"a"`
	B        Entry `json:"b"`
	Distance int   `json:"distance"`
}

// SameLabel reports whether both images were learned under the same label.
func (p Pair) SameLabel() bool { return p.A.Label == p.B.Label }

type hashed struct {
	entry Entry
	hash  *goimagehash.ImageHash
}

// NearDuplicates hashes up to limit images in dir (limit <= 0 means all) and
// returns every pair within maxDistance bits, closest first. Undecodable files
// are skipped.
func NearDuplicates(ctx context.Context, dir string, maxDistance, limit int, logger *slog.Logger) ([]Pair, error) {
	logger = logging.NewComponentLogger(logger, "imagestore")
	entries, err := List(dir)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	hashes := make([]hashed, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := perceptionHash(entry.Path)
		if err != nil {
			logger.Debug("skipping unhashable image", logging.String("path", entry.Path), logging.Error(err))
			continue
		}
		hashes = append(hashes, hashed{entry: entry, hash: h})
	}

	var pairs []Pair
	for i := 0; i < len(hashes); i++ {
		for j := i + 1; j < len(hashes); j++ {
			distance, err := hashes[i].hash.Distance(hashes[j].hash)
			if err != nil || distance > maxDistance {
				continue
			}
			pairs = append(pairs, Pair{A: hashes[i].entry, B: hashes[j].entry, Distance: distance})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Distance < pairs[j].Distance })
	return pairs, nil
}

func perceptionHash(path string) (*goimagehash.ImageHash, error) {
	p, err := photo.Load(path)
	if err != nil {
		return nil, err
	}
	img, err := p.Image()
	if err != nil {
		return nil, err
	}
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("compute phash: %w", err)
	}
	return h, nil
}
