package session

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	identityFile = "identity.json"
	soundFile    = "sound.json"
)

// Identity is the per-installation player identity: an opaque id plus a
// display name, created once and reused across runs.
type Identity struct {
	GuestID    string `json:"guestId"`
	PlayerName string `json:"playerName"`
}

// SoundPrefs is the persisted sound preference record.
type SoundPrefs struct {
	Enabled bool    `json:"enabled"`
	Volume  float64 `json:"volume"`
}

// DefaultSoundPrefs returns the preferences used before the user changes
// anything.
func DefaultSoundPrefs() SoundPrefs {
	return SoundPrefs{Enabled: true, Volume: 0.5}
}

// Store persists small per-installation records as JSON files under a data
// directory. It is the client-side analog of browser local storage: records
// survive restarts and nothing else is kept durably.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore opens (creating if needed) the data directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Identity loads the persisted identity, generating and saving a fresh one
// when none exists. A corrupt record is replaced rather than fatal: the id
// is opaque, so regenerating only costs continuity the record already lost.
func (s *Store) Identity() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id Identity
	err := s.read(identityFile, &id)
	if err == nil && id.GuestID != "" {
		return id, nil
	}
	if err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("unreadable identity record, regenerating")
	}

	id = Identity{
		GuestID:    uuid.NewString(),
		PlayerName: fmt.Sprintf("Player%d", rand.Intn(1000)),
	}
	if err := s.write(identityFile, id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// UpdateName changes the display name, keeping the guest id.
func (s *Store) UpdateName(name string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id Identity
	if err := s.read(identityFile, &id); err != nil || id.GuestID == "" {
		return Identity{}, fmt.Errorf("no identity to rename")
	}
	id.PlayerName = name
	if err := s.write(identityFile, id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// SoundPrefs loads the persisted sound preferences, falling back to the
// defaults when the record is missing or unreadable.
func (s *Store) SoundPrefs() SoundPrefs {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prefs SoundPrefs
	if err := s.read(soundFile, &prefs); err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("unreadable sound preferences, using defaults")
		}
		return DefaultSoundPrefs()
	}
	return prefs
}

// SaveSoundPrefs writes the sound preferences through to disk.
func (s *Store) SaveSoundPrefs(prefs SoundPrefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(soundFile, prefs)
}

func (s *Store) read(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (s *Store) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
