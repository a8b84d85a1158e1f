package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessroom/internal/board"
	"chessroom/internal/channel"
	"chessroom/internal/client"
	"chessroom/internal/clock"
	"chessroom/internal/config"
	"chessroom/internal/game"
	"chessroom/internal/session"
	"chessroom/internal/sound"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	roomID := flag.String("room", "", "room id to join (empty requests a new room)")
	name := flag.String("name", "", "display name override")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	store, err := session.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session store")
	}
	identity, err := store.Identity()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load identity")
	}
	if *name != "" && *name != identity.PlayerName {
		if identity, err = store.UpdateName(*name); err != nil {
			log.Fatal().Err(err).Msg("failed to update display name")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	socketCfg := channel.DefaultSocketConfig(cfg.ServerURL)
	socketCfg.MaxReconnects = cfg.Reconnect.MaxAttempts
	socketCfg.ReconnectWait = cfg.ReconnectWait()
	socket := channel.NewSocket(socketCfg)
	defer socket.Close()

	syncer := client.New(socket,
		client.WithNavigateAway(func(roomID string) {
			log.Warn().Str("room_id", roomID).Msg("room not found, leaving")
			stop()
		}),
		client.WithNotices(func(notice string) {
			log.Info().Msg(notice)
		}),
	)

	sounds := sound.NewService(store, nil)
	controller := board.NewController(syncer, syncer.SubmitMove, sounds)

	reconciler := clock.New(clockwork.NewRealClock(),
		clock.WithIntervals(cfg.TickInterval(), cfg.ResyncInterval()),
		clock.WithRequestSync(func() { _ = syncer.RequestTimerSync() }),
	)

	if err := socket.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}

	go reconciler.Run(ctx)
	go func() {
		if err := syncer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("synchronizer stopped")
		}
		stop()
	}()

	updates := syncer.Subscribe()
	go func() {
		for range updates {
			g := syncer.Game()
			if g == nil {
				continue
			}
			reconciler.ApplyGame(g)
			logState(g, reconciler)
			if e := syncer.Err(); e != nil {
				log.Warn().Str("kind", string(e.Kind)).Msg(e.Message)
			}
		}
	}()

	if err := syncer.Join(identity.GuestID, *roomID, identity.PlayerName); err != nil {
		log.Fatal().Err(err).Msg("failed to join")
	}

	go readCommands(ctx, controller)

	<-ctx.Done()
	log.Info().Msg("shutting down")
}

// readCommands drives the selection controller from stdin: "e2e4" plays a
// move as two square clicks, "mark e4" toggles an annotation, and
// back/fwd/start/latest walk the move history.
func readCommands(ctx context.Context, controller *board.Controller) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "back":
			controller.StepBack()
		case "fwd":
			controller.StepForward()
		case "start":
			controller.ShowStart()
		case "latest":
			controller.ShowLatest()
		case "mark":
			if len(fields) == 2 {
				controller.RightClick(fields[1])
			}
		default:
			if len(fields[0]) == 4 {
				controller.ClickSquare(fields[0][:2])
				controller.ClickSquare(fields[0][2:])
			} else {
				log.Warn().Str("input", line).Msg("unrecognized command")
			}
		}
	}
}

func logState(g *game.Game, reconciler *clock.Reconciler) {
	display := reconciler.Display()
	ev := log.Info().
		Str("room_id", g.RoomID).
		Str("status", string(g.Status)).
		Str("turn", string(g.Turn)).
		Int("moves", len(g.Moves)).
		Str("white_clock", clock.Format(display.White)).
		Str("black_clock", clock.Format(display.Black))
	if len(g.Moves) > 0 {
		ev = ev.Str("last_move", g.Moves[len(g.Moves)-1].SAN)
	}
	if g.Status == game.StatusCompleted {
		ev = ev.Str("result", string(g.Result)).Str("reason", string(g.EndReason))
	}
	ev.Msg("game state")
}
