package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/dastanaron/barswitch/internal/commands"
	"github.com/dastanaron/barswitch/internal/config"
	"github.com/dastanaron/barswitch/internal/logger"
	"github.com/dastanaron/barswitch/internal/store"
	"github.com/dastanaron/barswitch/internal/switcher"
	"github.com/dastanaron/barswitch/internal/ui"

	"github.com/joho/godotenv"
)

func main() {
	importPath := flag.String("import", "", "Path to HTML bookmarks file to load onto the bar")
	exportPath := flag.String("export", "", "Path to HTML bookmarks file to export the bar to")
	clearDoubles := flag.Bool("clear-doubles", false, "Remove duplicate bookmarks (same URL) from the bar")
	toggle := flag.Bool("toggle", false, "Toggle the bar between the Private and Work sets and exit")
	dbPath := flag.String("db", "", "Path to database file (default: ~/.barswitch/barswitch.db)")
	flag.Parse()

	// Optional .env next to the binary or in the working directory
	godotenv.Load()

	cfg := config.NewConfig()
	if *dbPath != "" {
		cfg.WithDBPath(*dbPath)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sw := switcher.New(st, cfg.Debounce, cfg.Cooldown)
	if err := sw.Bootstrap(ctx); err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer sw.Stop()

	// Handle import command
	if *importPath != "" {
		importCmd := commands.NewImportCommand(st)
		if err := importCmd.Execute(ctx, *importPath); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		// The import changed the bar; persist it into the active backup.
		if err := sw.SaveNow(ctx); err != nil {
			log.Fatalf("Save after import failed: %v", err)
		}
		return
	}

	// Handle export command
	if *exportPath != "" {
		exportCmd := commands.NewExportCommand(st)
		if err := exportCmd.Execute(ctx, *exportPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		return
	}

	// Handle clear doubles command
	if *clearDoubles {
		clearCmd := commands.NewClearDoublesCommand(st)
		if err := clearCmd.Execute(ctx); err != nil {
			log.Fatalf("Clear doubles failed: %v", err)
		}
		if err := sw.SaveNow(ctx); err != nil {
			log.Fatalf("Save after clear doubles failed: %v", err)
		}
		return
	}

	// Handle one-shot toggle
	if *toggle {
		if err := sw.Toggle(ctx); err != nil {
			log.Fatalf("Toggle failed: %v", err)
		}
		return
	}

	// Run TUI application with auto-save watching the store
	sw.Watch(ctx)
	app := ui.NewApp(st, sw)

	if err := app.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
