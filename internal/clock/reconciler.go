package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"chessroom/internal/game"
)

// Low-time thresholds the presentation layer keys warning styles off.
const (
	LowTimeThreshold      = time.Minute
	CriticalTimeThreshold = 30 * time.Second
)

const (
	// DefaultTickInterval is the local re-render cadence between
	// authoritative updates.
	DefaultTickInterval = 100 * time.Millisecond
	// DefaultResyncInterval is how often a timer sync is requested from the
	// server while a clock is running. Local wall-clock elapsed time is not
	// trusted beyond this interval.
	DefaultResyncInterval = 10 * time.Second
)

// Display is one rendered snapshot of the two countdowns.
type Display struct {
	White  time.Duration
	Black  time.Duration
	Active game.Role
}

// Reconciler keeps the two displayed countdowns aligned with the
// server-authoritative clock. The side to move counts down locally as
// authoritative_remaining - (now - server_timestamp); the other side stays
// frozen at its last authoritative value. A fine-grained local tick
// re-renders between updates, and a coarser periodic resync request corrects
// for client clock drift and dropped ticks.
type Reconciler struct {
	clk clockwork.Clock

	tickInterval   time.Duration
	resyncInterval time.Duration

	requestSync func()
	onTick      func(Display)

	mu        sync.Mutex
	white     time.Duration
	black     time.Duration
	turn      game.Role
	serverTS  time.Time
	paused    bool
	running   bool // game active and timers present
	haveState bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithIntervals overrides the tick and resync cadence.
func WithIntervals(tick, resync time.Duration) Option {
	return func(r *Reconciler) {
		r.tickInterval = tick
		r.resyncInterval = resync
	}
}

// WithRequestSync installs the resync intent emitter, normally the
// synchronizer's RequestTimerSync.
func WithRequestSync(fn func()) Option {
	return func(r *Reconciler) { r.requestSync = fn }
}

// WithOnTick installs the render callback invoked on every local tick and
// authoritative update.
func WithOnTick(fn func(Display)) Option {
	return func(r *Reconciler) { r.onTick = fn }
}

// New builds a Reconciler on the given clock. Tests pass a fake clock.
func New(clk clockwork.Clock, opts ...Option) *Reconciler {
	r := &Reconciler{
		clk:            clk,
		tickInterval:   DefaultTickInterval,
		resyncInterval: DefaultResyncInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ApplyGame adopts the timer block of an authoritative snapshot and resets
// the drift baseline.
func (r *Reconciler) ApplyGame(g *game.Game) {
	if g == nil || g.Timers == nil {
		r.mu.Lock()
		r.running = false
		r.haveState = false
		r.mu.Unlock()
		return
	}

	r.mu.Lock()
	r.white = time.Duration(g.Timers.WhiteTime) * time.Millisecond
	r.black = time.Duration(g.Timers.BlackTime) * time.Millisecond
	r.turn = g.Turn
	r.paused = g.Timers.IsPaused
	r.running = g.Status == game.StatusActive
	r.haveState = true
	if g.Timers.ServerTimestamp > 0 {
		r.serverTS = time.UnixMilli(g.Timers.ServerTimestamp)
	} else {
		r.serverTS = r.clk.Now()
	}
	r.mu.Unlock()

	r.render()
}

// ApplySync adopts a timer_sync payload: the displayed values snap to the
// authoritative figures immediately, overriding any locally drifted display.
func (r *Reconciler) ApplySync(white, black int64, turn game.Role, serverTimestamp int64, paused bool) {
	r.mu.Lock()
	r.white = time.Duration(white) * time.Millisecond
	r.black = time.Duration(black) * time.Millisecond
	r.turn = turn
	r.paused = paused
	r.running = true
	r.haveState = true
	if serverTimestamp > 0 {
		r.serverTS = time.UnixMilli(serverTimestamp)
	} else {
		r.serverTS = r.clk.Now()
	}
	r.mu.Unlock()

	r.render()
}

// Display computes the current countdown values. Only the side to move
// drains, and only while the game runs unpaused; nothing ever drops below
// zero.
func (r *Reconciler) Display() Display {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := Display{White: r.white, Black: r.black}
	if !r.haveState || !r.running || r.paused {
		return d
	}
	d.Active = r.turn

	elapsed := r.clk.Now().Sub(r.serverTS)
	if elapsed < 0 {
		elapsed = 0
	}
	switch r.turn {
	case game.RoleWhite:
		d.White = max(0, r.white-elapsed)
	case game.RoleBlack:
		d.Black = max(0, r.black-elapsed)
	}
	return d
}

// Run drives the local tick and the periodic resync until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	tick := r.clk.NewTicker(r.tickInterval)
	defer tick.Stop()
	resync := r.clk.NewTicker(r.resyncInterval)
	defer resync.Stop()

	log.Debug().
		Dur("tick", r.tickInterval).
		Dur("resync", r.resyncInterval).
		Msg("clock reconciler started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("clock reconciler stopped")
			return
		case <-tick.Chan():
			if r.active() {
				r.render()
			}
		case <-resync.Chan():
			if r.active() && r.requestSync != nil {
				r.requestSync()
			}
		}
	}
}

func (r *Reconciler) active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.haveState && r.running && !r.paused
}

func (r *Reconciler) render() {
	if r.onTick != nil {
		r.onTick(r.Display())
	}
}

// IsLowTime reports whether a countdown is under the warning threshold.
func IsLowTime(d time.Duration) bool { return d < LowTimeThreshold }

// IsCriticalTime reports whether a countdown is under the critical threshold.
func IsCriticalTime(d time.Duration) bool { return d < CriticalTimeThreshold }

// Format renders a countdown as m:ss, or h:mm:ss past the hour.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	minutes := total / 60
	seconds := total % 60
	if minutes >= 60 {
		return fmt.Sprintf("%d:%02d:%02d", minutes/60, minutes%60, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
