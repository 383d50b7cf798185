// Package main implements the nescore player and headless runner.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sqweek/dialog"

	"nescore/internal/app"
	"nescore/internal/debugserver"
	"nescore/internal/logger"
	"nescore/internal/statsview"
	"nescore/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (a file picker opens when omitted in GUI mode)")
		configFile = flag.String("config", app.GetDefaultConfigPath(), "Path to configuration file")
		nogui      = flag.Bool("nogui", false, "Run without a window (headless mode)")
		frames     = flag.Int("frames", 600, "Frames to run in headless mode")
		dumpEvery  = flag.Int("dump", 0, "Write every n-th headless frame as PNG to the screenshots directory")
		wavFile    = flag.String("wav", "", "Record the audio stream to a WAV file (bare names go to the recordings directory)")
		regionName = flag.String("region", "", "Override the console region (auto, ntsc, pal)")
		logLevel   = flag.String("loglevel", "", "Override the log level (debug, info, warn, error)")
		debugAddr  = flag.String("debug-addr", "", "Serve the gRPC debug service on this address")
		statsAddr  = flag.String("stats-addr", "", "Serve runtime statistics on this address (statsview builds)")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		return
	}
	if *showVer {
		version.PrintBuildInfo(os.Stdout, "nescore")
		return
	}

	config := app.NewConfig()
	if err := config.LoadFromFile(*configFile); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *regionName != "" {
		config.Emulation.Region = *regionName
	}
	if *logLevel != "" {
		config.Debug.LogLevel = *logLevel
	}
	if *debugAddr != "" {
		config.Debug.DebugAddr = *debugAddr
	}
	if *statsAddr != "" {
		config.Debug.StatsAddr = *statsAddr
	}

	level, err := logger.ParseLevel(config.Debug.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logs := logger.New(level)
	logs.SetEcho(os.Stderr)

	if !*nogui && *romFile == "" {
		path, err := dialog.File().Filter("NES ROM", "nes").Title("Open ROM").Load()
		if errors.Is(err, dialog.ErrCancelled) {
			return
		}
		if err != nil {
			log.Fatalf("Failed to pick a ROM: %v", err)
		}
		*romFile = path
	}
	if *romFile == "" {
		log.Fatal("ROM file required for headless mode")
	}

	application, err := app.NewApplication(config, logs, app.Options{Headless: *nogui, DumpEvery: *dumpEvery})
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("Application cleanup error: %v", err)
		}
	}()

	if err := application.LoadROM(*romFile); err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}
	if *wavFile != "" {
		if err := application.RecordAudio(*wavFile); err != nil {
			log.Fatalf("Failed to start recording: %v", err)
		}
	}

	if addr := config.Debug.DebugAddr; addr != "" {
		srv := debugserver.NewServer(application.Emulator(), logs)
		go func() {
			if err := srv.ListenAndServe(addr); err != nil {
				logs.Errorf("debugserver", "%v", err)
			}
		}()
		defer srv.Stop()
	}
	if addr := config.Debug.StatsAddr; addr != "" {
		statsview.Launch(addr, logs)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *nogui {
		err = application.RunFrames(*frames)
	} else {
		err = application.Run(ctx)
	}
	if err != nil {
		log.Printf("Emulation stopped: %v", err)
		return
	}

	fmt.Printf("Frames: %d  Session: %v\n", application.GetFrameCount(), application.GetUptime().Round(time.Second))
}

func printUsage() {
	fmt.Println("nescore - NES emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nescore [options]                        # Pick a ROM and play")
	fmt.Println("  nescore -rom <file> [options]            # Play a ROM")
	fmt.Println("  nescore -nogui -rom <file> -frames <n>   # Run headless")
	fmt.Println("  nescore -rom <file> -debug-addr :50051   # Play and serve nesdbg")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (default):")
	fmt.Println("  Arrow keys  D-Pad")
	fmt.Println("  X / Z       A / B")
	fmt.Println("  Enter       Start")
	fmt.Println("  Right Shift Select")
	fmt.Println("  Mouse       Zapper (port 2)")
	fmt.Println("  F5          Reset")
	fmt.Println("  Escape      Quit")
}
