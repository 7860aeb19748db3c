package network

import (
	"math/rand/v2"
	"slices"
	"testing"
)

type memItems map[string][]byte

func (m memItems) LoadItem(key string) ([]byte, error) {
	return m[key], nil
}

func (m memItems) SaveItem(key string, data []byte) error {
	m[key] = append([]byte(nil), data...)
	return nil
}

func TestRandomProfileUsesTables(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		p := RandomProfile(rng)
		if !slices.Contains(profileNames, p.Name) || !slices.Contains(profileColors, p.Color) {
			t.Fatalf("profile %+v not from the tables", p)
		}
	}
}

func TestProfileStoreLoadOrCreate(t *testing.T) {
	items := memItems{}
	store := &ProfileStore{items: items}

	if p, err := store.Load("bot-1"); err != nil || p != nil {
		t.Fatalf("Load on empty store = %+v, %v", p, err)
	}

	rng := rand.New(rand.NewPCG(7, 7))
	first, err := store.LoadOrCreate("bot-1", rng)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := items["profile_bot-1"]; !ok {
		t.Fatal("profile not saved")
	}

	again, err := store.LoadOrCreate("bot-1", rand.New(rand.NewPCG(99, 99)))
	if err != nil {
		t.Fatal(err)
	}
	if again != first {
		t.Errorf("second load = %+v, want saved %+v", again, first)
	}
}

func TestProfileStoreRejectsCorruptData(t *testing.T) {
	store := &ProfileStore{items: memItems{"profile_x": []byte("{")}}
	if _, err := store.Load("x"); err == nil {
		t.Error("corrupt profile loaded without error")
	}
}
