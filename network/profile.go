package network

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/quasilyte/gdata"
)

var profileNames = []string{
	"Satoshi", "Odin", "Blocksmith", "CryptoWolf", "ChainSeer",
	"RuneMiner", "HodlViking", "BitThor", "Nakamoto", "FrostLedger",
	"NodeRaider", "ValhallaMiner", "SigRune", "HashGuardian", "BifrostTrader",
	"Asgardian", "LightningLoki", "Hodlheim", "Runesigner", "ValkyNode",
}

var profileColors = []string{
	"#f7931a", "#0d1117", "#627eea", "#2e86ab", "#8e44ad",
	"#34495e", "#2980b9", "#1abc9c", "#e67e22", "#16a085",
	"#c0392b", "#95a5a6", "#d35400", "#7f8c8d", "#9b59b6",
	"#bdc3c7", "#ecf0f1", "#f1c40f", "#e74c3c", "#3498db",
}

// Profile is the cosmetic identity a client joins with.
type Profile struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RandomProfile picks a name and color from the built-in tables.
func RandomProfile(rng *rand.Rand) Profile {
	return Profile{
		Name:  profileNames[rng.IntN(len(profileNames))],
		Color: profileColors[rng.IntN(len(profileColors))],
	}
}

// itemStore is the slice of gdata.Manager the profile store needs.
type itemStore interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

// ProfileStore persists profiles in the user's application data directory.
type ProfileStore struct {
	items itemStore
}

// OpenProfileStore opens the data directory for appName.
func OpenProfileStore(appName string) (*ProfileStore, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	return &ProfileStore{items: m}, nil
}

func profileKey(slot string) string {
	return "profile_" + slot
}

// Load returns the profile saved under slot, or nil if there is none.
func (s *ProfileStore) Load(slot string) (*Profile, error) {
	data, err := s.items.LoadItem(profileKey(slot))
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", slot, err)
	}
	if data == nil {
		return nil, nil
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", slot, err)
	}
	return &p, nil
}

// Save stores a profile under slot.
func (s *ProfileStore) Save(slot string, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("serialize profile %s: %w", slot, err)
	}
	if err := s.items.SaveItem(profileKey(slot), data); err != nil {
		return fmt.Errorf("save profile %s: %w", slot, err)
	}
	return nil
}

// LoadOrCreate returns the saved profile for slot, generating and saving a
// random one the first time.
func (s *ProfileStore) LoadOrCreate(slot string, rng *rand.Rand) (Profile, error) {
	saved, err := s.Load(slot)
	if err != nil {
		return Profile{}, err
	}
	if saved != nil && saved.Name != "" {
		return *saved, nil
	}

	p := RandomProfile(rng)
	if err := s.Save(slot, p); err != nil {
		return p, err
	}
	return p, nil
}
