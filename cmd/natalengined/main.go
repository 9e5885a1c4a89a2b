// natalengined serves natal-chart computation over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/astromirror/natalengine/internal/config"
	"github.com/astromirror/natalengine/internal/constants"
	"github.com/astromirror/natalengine/internal/engine"
	"github.com/astromirror/natalengine/internal/ephemeris"
	"github.com/astromirror/natalengine/internal/log"
	"github.com/astromirror/natalengine/internal/refdata"
	"github.com/astromirror/natalengine/internal/server"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file (omit for built-in defaults)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("natalengined %s\n", constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Default()
	if *cfgFile != "" {
		loaded, err := config.Load(*cfgFile)
		if err != nil {
			log.Errorf("Failed to load configuration: %v", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	tables, err := loadTables(cfg.RefData)
	if err != nil {
		log.Errorf("Failed to load reference tables: %v", err)
		os.Exit(1)
	}
	log.Infof("Reference tables loaded (version %s)", tables.Version)

	eph := ephemeris.New(ephemeris.Config{DataDir: cfg.Ephemeris.DataDir})
	if eph.HighPrecision() {
		log.Info("Ephemeris running in VSOP87 high-precision mode")
	} else {
		log.Warnf("Ephemeris running in analytic fallback mode: %v", eph.ProbeErr())
	}

	e := engine.New(eph, tables, cfg.Ephemeris.AllowFallback)
	srv := server.New(cfg.HTTP, e, log.GetSugaredLogger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	srv.Start(ctx, &wg)

	<-ctx.Done()
	wg.Wait()
}

// loadTables builds the configured reference-data provider and loads the
// tables once for the process lifetime.
func loadTables(cfg config.RefDataConfig) (*refdata.Tables, error) {
	var provider refdata.Provider
	switch cfg.Source {
	case "embedded":
		provider = refdata.NewEmbeddedProvider()
	case "csv":
		provider = refdata.NewCSVProvider(cfg.Path)
	case "sqlite":
		p, err := refdata.NewSQLiteProvider(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening reference database: %w", err)
		}
		provider = p
	default:
		return nil, fmt.Errorf("unsupported refdata source: %s", cfg.Source)
	}
	defer provider.Close()

	return provider.LoadTables()
}
