// Package main provides the terminal player entry point.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/tonearm/wavedeck/internal/app/surface"
	"github.com/tonearm/wavedeck/internal/app/widget"
	"github.com/tonearm/wavedeck/internal/infra/beepengine"
	"github.com/tonearm/wavedeck/internal/infra/config"
	"github.com/tonearm/wavedeck/internal/infra/logger"
)

var (
	app        = kingpin.New("wavedeck", "wavedeck terminal audio player")
	configPath = app.Flag("config", "Path to config file").Default("config/player.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()
	audioURL   = app.Arg("url", "Audio URL or local file to load").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Output: cfg.Logging.Output,
		Level:  cfg.Logging.Level,
		File:   cfg.Logging.File,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// run executes the player loop. Using a separate function ensures defer
// statements run even when returning with an error.
func run(cfg *config.Config) error {
	url := *audioURL
	if url == "" {
		url = cfg.Player.AudioURL
	}
	if url == "" {
		return errors.New("no audio url: pass one as argument or set player.audio_url")
	}

	opts, err := cfg.WaveViewOptions()
	if err != nil {
		return err
	}

	eng := beepengine.New(beepengine.Config{
		CacheDir: cfg.Engine.CacheDir,
		Tick:     cfg.Tick(),
		View:     opts,
	})
	defer eng.Close()

	term := surface.NewTerm(os.Stdout, cfg.Player.Width, eng.View())

	w := widget.New(eng, term)
	defer w.Close()

	initTerminal()
	defer cleanupTerminal()

	zlog.Info().Msgf("Loading %s", url)
	if err := w.LoadAudio(url); err != nil {
		return errors.Wrap(err, "failed to load audio")
	}

	keyCh := make(chan byte, 4)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				keyCh <- buf[0]
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	waveTicker := time.NewTicker(cfg.Tick())
	defer waveTicker.Stop()

	step := float64(cfg.Player.SeekStepSec)

	for {
		select {
		case <-sigCh:
			zlog.Info().Msg("Received shutdown signal")
			return nil

		case key := <-keyCh:
			switch key {
			case 'q':
				return nil
			case ' ':
				term.Toggle()
			case 's':
				w.Stop()
			case 'r':
				if err := w.LoadAudio(url); err != nil {
					zlog.Error().Msgf("Reload failed: %v", err)
				}
			case 'h', ',':
				w.Seek(w.CurrentTime() - step)
			case 'l', '.':
				w.Seek(w.CurrentTime() + step)
			}

		case <-waveTicker.C:
			term.DrawWaveform(eng.Peaks(cfg.Player.Width), eng.Progress())
		}
	}
}

// initTerminal puts the terminal into cbreak mode and hides the cursor.
func initTerminal() {
	_ = exec.Command("stty", "-F", "/dev/tty", "cbreak", "min", "1", "-echo").Run()
	fmt.Print("\033[2J\033[?25l")
}

// cleanupTerminal restores the terminal.
func cleanupTerminal() {
	_ = exec.Command("stty", "-F", "/dev/tty", "sane").Run()
	fmt.Print("\033[?25h\033[2J\033[H")
}
