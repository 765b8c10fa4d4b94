// Package main provides the player state machine CLI.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playerfsm/internal/app/notification"
	"github.com/osa030/playerfsm/internal/app/observer"
	"github.com/osa030/playerfsm/internal/app/playback"
	"github.com/osa030/playerfsm/internal/domain/player"
	"github.com/osa030/playerfsm/internal/infra/config"
	"github.com/osa030/playerfsm/internal/infra/logger"
)

var (
	app        = kingpin.New("playerctl", "Player playback state machine")
	configPath = app.Flag("config", "Path to config file").Default("config/playerctl.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: from config)").String()

	// table command
	tableCmd = app.Command("table", "Print the transition table")

	// send command
	sendCmd    = app.Command("send", "Send events to a new machine and print each resulting state")
	sendEvents = sendCmd.Arg("events", "Event names (PLAY_BEGIN, PLAY, PAUSE)").Required().Strings()

	// replay command
	replayCmd  = app.Command("replay", "Send events read from a file, one per line")
	replayFile = replayCmd.Arg("file", "Event file ('-' for stdin)").Required().String()

	// repl command
	replCmd = app.Command("repl", "Read events interactively from stdin")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == tableCmd.FullCommand() {
		printTable(os.Stdout)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	closeLog, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closeLog()

	if err := run(command, cfg); err != nil {
		zlog.Error().Msgf("playerctl: %v", err)
		closeLog()
		os.Exit(1)
	}
}

// run executes the selected command. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(command string, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	switch command {
	case sendCmd.FullCommand():
		events, err := player.ParseEvents(*sendEvents)
		if err != nil {
			return err
		}
		s.replay(ctx, os.Stdout, events)
	case replayCmd.FullCommand():
		events, err := readEventFile(*replayFile)
		if err != nil {
			return err
		}
		s.replay(ctx, os.Stdout, events)
	case replCmd.FullCommand():
		return s.repl(ctx, os.Stdin, os.Stdout)
	}

	s.printHistory(os.Stdout)
	return nil
}

// session wires a controller to the configured observers.
type session struct {
	controller *playback.Controller
	manager    *notification.Manager
	histories  []*observer.History
}

func newSession(cfg *config.Config) (*session, error) {
	manager := notification.NewManager(cfg.Notification.SendTimeout())

	observers, err := observer.NewFromConfig(cfg.Observers)
	if err != nil {
		return nil, errors.Wrap(err, "invalid observer config")
	}

	s := &session{manager: manager}
	for _, o := range observers {
		id := manager.Subscribe(o.Stream)
		zlog.Debug().Msgf("subscribed observer: type=%s id=%s", o.Type, id)
		if h, ok := o.Stream.(*observer.History); ok {
			s.histories = append(s.histories, h)
		}
	}

	s.controller = playback.NewController(playback.Config{
		NotifyNoOps: cfg.Playback.NotifyNoOps,
	}, manager)
	return s, nil
}

func (s *session) close() {
	s.manager.Close()
}

func (s *session) replay(ctx context.Context, w io.Writer, events []player.Event) {
	states := s.controller.Replay(ctx, events)
	for i, st := range states {
		fmt.Fprintf(w, "%-10s -> %s\n", events[i], st)
	}
}

func (s *session) repl(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintf(w, "%s: %s (type 'help' for commands)\n", player.MachineID, s.controller.CurrentState())

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return errors.Wrap(err, "failed to read input")
				default:
					return nil
				}
			}
			if quit := s.handleLine(ctx, w, line); quit {
				return nil
			}
		}
	}
}

// handleLine executes one REPL line and reports whether the REPL should exit.
func (s *session) handleLine(ctx context.Context, w io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return false
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(w, "commands: state, events, history, table, quit; or an event name")
	case "state":
		fmt.Fprintln(w, s.controller.CurrentState())
	case "events":
		fmt.Fprintln(w, joinEvents(player.AcceptedEvents(s.controller.CurrentState())))
	case "history":
		s.printHistory(w)
	case "table":
		printTable(w)
	default:
		event, err := player.ParseEvent(line)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return false
		}
		before := s.controller.CurrentState()
		after := s.controller.Send(ctx, event)
		if before == after {
			fmt.Fprintf(w, "%s (ignored)\n", after)
		} else {
			fmt.Fprintf(w, "%s -> %s\n", before, after)
		}
	}
	return false
}

func (s *session) printHistory(w io.Writer) {
	for _, h := range s.histories {
		for _, n := range h.Entries() {
			fmt.Fprintf(w, "#%d %s --%s--> %s\n", n.SequenceNo, n.From, n.Event, n.To)
		}
	}
}

func printTable(w io.Writer) {
	events := player.Events()
	fmt.Fprintf(w, "%-14s", "state")
	for _, e := range events {
		fmt.Fprintf(w, "%-14s", e)
	}
	fmt.Fprintln(w)
	for _, st := range player.States() {
		fmt.Fprintf(w, "%-14s", st)
		for _, e := range events {
			cell := "-"
			if to, ok := player.Transition(st, e); ok {
				cell = to.String()
			}
			fmt.Fprintf(w, "%-14s", cell)
		}
		fmt.Fprintln(w)
	}
}

func joinEvents(events []player.Event) string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.String()
	}
	return strings.Join(names, " ")
}

// readEventFile reads event names, one per line. Blank lines and lines
// starting with '#' are skipped.
func readEventFile(path string) ([]player.Event, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open event file")
		}
		defer f.Close()
		r = f
	}
	return parseEventLines(r)
}

func parseEventLines(r io.Reader) ([]player.Event, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read events")
	}
	return player.ParseEvents(names)
}
