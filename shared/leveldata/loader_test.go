package leveldata

import (
	"errors"
	"reflect"
	"testing"
	"testing/fstest"
)

func TestEmbeddedArenaMatchesDefault(t *testing.T) {
	got, err := LoadEmbedded("arena")
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	want := Default()
	if got.Name != want.Name {
		t.Errorf("Name = %q, want %q", got.Name, want.Name)
	}
	if !reflect.DeepEqual(got.Platforms, want.Platforms) {
		t.Errorf("Platforms = %+v\nwant %+v", got.Platforms, want.Platforms)
	}
	if got.Spawn != want.Spawn {
		t.Errorf("Spawn = %+v, want %+v", got.Spawn, want.Spawn)
	}
}

func TestEmbeddedNames(t *testing.T) {
	names, err := EmbeddedNames()
	if err != nil {
		t.Fatalf("EmbeddedNames: %v", err)
	}
	if len(names) == 0 || names[0] != "arena" {
		t.Errorf("names = %v", names)
	}
}

func TestLoadLayoutWithoutPlatforms(t *testing.T) {
	fsys := fstest.MapFS{
		"empty.tmx": {Data: []byte(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="4" tilewidth="16" tileheight="16" infinite="0">
 <objectgroup id="1" name="Decor"/>
</map>`)},
	}
	_, err := LoadLayout(fsys, "empty.tmx")
	if !errors.Is(err, ErrNoPlatforms) {
		t.Errorf("err = %v, want ErrNoPlatforms", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := Default()
	b := a.Clone()
	b.Platforms[0].X = 999
	if a.Platforms[0].X == 999 {
		t.Error("Clone shares the platform slice")
	}
}
