package sound

import (
	"sync"

	"chessroom/internal/game"
	"chessroom/internal/session"
)

// Cue names an audio cue the presentation layer can play.
type Cue string

const (
	CueMove        Cue = "move"
	CueCapture     Cue = "capture"
	CueCheck       Cue = "check"
	CueCastle      Cue = "castle"
	CueGameStart   Cue = "game_start"
	CueGameEnd     Cue = "game_end"
	CueDrawOffer   Cue = "draw_offer"
	CueLowTime     Cue = "low_time"
	CueButtonClick Cue = "button_click"
)

// Sink receives cues for actual playback. Playback itself is outside this
// package; a nil Sink silently discards cues.
type Sink interface {
	Play(cue Cue, volume float64)
}

// Service selects cues and owns the persisted sound preferences. It is
// constructed and injected explicitly; preferences write through to the
// session store on every change.
type Service struct {
	mu      sync.Mutex
	store   *session.Store
	sink    Sink
	enabled bool
	volume  float64
}

// NewService builds a sound service with preferences loaded from the store.
func NewService(store *session.Store, sink Sink) *Service {
	prefs := store.SoundPrefs()
	return &Service{
		store:   store,
		sink:    sink,
		enabled: prefs.Enabled,
		volume:  prefs.Volume,
	}
}

// Play forwards a cue to the sink, honoring the enabled flag.
func (s *Service) Play(cue Cue) {
	s.mu.Lock()
	enabled, volume, sink := s.enabled, s.volume, s.sink
	s.mu.Unlock()

	if !enabled || sink == nil {
		return
	}
	sink.Play(cue, volume)
}

// SetEnabled toggles sound and persists the preference.
func (s *Service) SetEnabled(enabled bool) error {
	s.mu.Lock()
	s.enabled = enabled
	prefs := session.SoundPrefs{Enabled: s.enabled, Volume: s.volume}
	s.mu.Unlock()
	return s.store.SaveSoundPrefs(prefs)
}

// SetVolume adjusts the volume, clamped to [0, 1], and persists it.
func (s *Service) SetVolume(volume float64) error {
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	s.mu.Lock()
	s.volume = volume
	prefs := session.SoundPrefs{Enabled: s.enabled, Volume: s.volume}
	s.mu.Unlock()
	return s.store.SaveSoundPrefs(prefs)
}

// Enabled reports whether sound is on.
func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Volume returns the current volume.
func (s *Service) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// ForMove picks the cue for a just-played move: capture beats castle beats
// check beats the plain move sound.
func ForMove(m game.Move, gaveCheck bool) Cue {
	switch {
	case m.IsCapture():
		return CueCapture
	case isCastle(m.From, m.To):
		return CueCastle
	case gaveCheck:
		return CueCheck
	default:
		return CueMove
	}
}

func isCastle(from, to string) bool {
	return (from == "e1" && (to == "g1" || to == "c1")) ||
		(from == "e8" && (to == "g8" || to == "c8"))
}
