package leveldata

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lafriks/go-tiled"
)

// Object group names read from TMX files.
const (
	platformGroup = "Platforms"
	spawnGroup    = "PlayerSpawn"
)

// ErrNoPlatforms is returned for maps without a single platform rectangle.
var ErrNoPlatforms = errors.New("map has no platforms")

//go:embed levels/*.tmx
var embedded embed.FS

// LoadLayout parses a TMX file and returns its arena layout. It takes an fs.FS
// so callers can pass the embedded levels or os.DirFS.
//
// Platforms come from rectangle objects in the "Platforms" object group,
// stored in Tiled as top-left + size and converted to center + half extents.
// The first object of the "PlayerSpawn" group, when present, is the spawn.
func LoadLayout(fsys fs.FS, tmxPath string) (*Layout, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	layout := &Layout{
		Name: strings.TrimSuffix(filepath.Base(tmxPath), ".tmx"),
	}

	for _, og := range levelMap.ObjectGroups {
		switch og.Name {
		case platformGroup:
			for _, o := range og.Objects {
				if o.Width <= 0 || o.Height <= 0 {
					continue
				}
				layout.Platforms = append(layout.Platforms, Platform{
					X: o.X + o.Width/2,
					Y: o.Y + o.Height/2,
					W: o.Width / 2,
					H: o.Height / 2,
				})
			}
		case spawnGroup:
			if len(og.Objects) > 0 {
				layout.Spawn = Point{X: og.Objects[0].X, Y: og.Objects[0].Y}
			}
		}
	}

	if len(layout.Platforms) == 0 {
		return nil, fmt.Errorf("%s: %w", tmxPath, ErrNoPlatforms)
	}
	return layout, nil
}

// LoadEmbedded loads one of the levels compiled into the binary by stem name.
func LoadEmbedded(name string) (*Layout, error) {
	return LoadLayout(embedded, "levels/"+name+".tmx")
}

// EmbeddedNames lists the stem names of the compiled-in levels, sorted.
func EmbeddedNames() ([]string, error) {
	matches, err := fs.Glob(embedded, "levels/*.tmx")
	if err != nil {
		return nil, fmt.Errorf("glob levels: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, path := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(path), ".tmx"))
	}
	sort.Strings(names)
	return names, nil
}
