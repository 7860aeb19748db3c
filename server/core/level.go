package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/automoto/bouncerz-mp/shared/leveldata"
)

// LoadLayout resolves the -map setting to an arena layout. An empty name is
// the built-in layout, a path ending in .tmx is read from disk, and anything
// else names one of the embedded levels.
func LoadLayout(name string) (leveldata.Layout, error) {
	if name == "" {
		return leveldata.Default(), nil
	}

	var (
		layout *leveldata.Layout
		err    error
	)
	if strings.HasSuffix(name, ".tmx") {
		layout, err = leveldata.LoadLayout(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	} else {
		layout, err = leveldata.LoadEmbedded(name)
	}
	if err != nil {
		return leveldata.Layout{}, fmt.Errorf("load level %q: %w", name, err)
	}

	log.Printf("Loaded level %s: %d platforms, spawn (%.0f, %.0f)",
		layout.Name, len(layout.Platforms), layout.Spawn.X, layout.Spawn.Y)
	return *layout, nil
}
