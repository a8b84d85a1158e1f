package sound

import (
	"testing"

	"chessroom/internal/game"
	"chessroom/internal/session"
)

type fakeSink struct {
	played []Cue
}

func (f *fakeSink) Play(cue Cue, volume float64) {
	f.played = append(f.played, cue)
}

func newTestService(t *testing.T) (*Service, *fakeSink) {
	t.Helper()
	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	sink := &fakeSink{}
	return NewService(store, sink), sink
}

func TestForMove(t *testing.T) {
	cases := []struct {
		name      string
		move      game.Move
		gaveCheck bool
		want      Cue
	}{
		{"plain move", game.Move{From: "e2", To: "e4"}, false, CueMove},
		{"capture", game.Move{From: "e4", To: "d5", Captured: "p"}, false, CueCapture},
		{"capture with check wins", game.Move{From: "e4", To: "d5", Captured: "p"}, true, CueCapture},
		{"white short castle", game.Move{From: "e1", To: "g1"}, false, CueCastle},
		{"black long castle", game.Move{From: "e8", To: "c8"}, false, CueCastle},
		{"check", game.Move{From: "f3", To: "b7"}, true, CueCheck},
	}
	for _, c := range cases {
		if got := ForMove(c.move, c.gaveCheck); got != c.want {
			t.Errorf("%s: ForMove = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPlayHonorsEnabledFlag(t *testing.T) {
	svc, sink := newTestService(t)

	svc.Play(CueMove)
	if len(sink.played) != 1 {
		t.Fatalf("expected the cue to reach the sink")
	}

	if err := svc.SetEnabled(false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	svc.Play(CueMove)
	if len(sink.played) != 1 {
		t.Fatalf("disabled service must not forward cues")
	}
}

func TestVolumeClampedAndPersisted(t *testing.T) {
	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	svc := NewService(store, nil)

	if err := svc.SetVolume(1.7); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if svc.Volume() != 1 {
		t.Fatalf("volume = %v, want clamped to 1", svc.Volume())
	}

	// A service constructed later sees the written-through preference.
	again := NewService(store, nil)
	if again.Volume() != 1 {
		t.Fatalf("volume not persisted, got %v", again.Volume())
	}
}

func TestNilSinkDiscards(t *testing.T) {
	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	svc := NewService(store, nil)
	svc.Play(CueGameStart) // must not panic
}
