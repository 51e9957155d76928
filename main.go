package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/peterje/shelll/internal/config"
	"github.com/peterje/shelll/internal/db"
	"github.com/peterje/shelll/internal/events"
	"github.com/peterje/shelll/internal/focus"
	"github.com/peterje/shelll/internal/preflight"
	ptymgr "github.com/peterje/shelll/internal/pty"
	"github.com/peterje/shelll/internal/server"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var version = "dev"

var (
	flagAddr      string
	flagDataDir   string
	flagConfig    string
	flagNoHistory bool
)

var rootCmd = &cobra.Command{
	Use:           "shelll",
	Short:         "Local terminal sessions over HTTP and WebSocket",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session server (default)",
	RunE:  runServe,
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Print the frontmost and running applications",
	RunE:  runApps,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shelll %s\n", version)
	},
}

func init() {
	bindFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, appsCmd, versionCmd)
}

func bindFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flagAddr, "addr", config.DefaultAddr, "listen address")
	pf.StringVar(&flagDataDir, "data-dir", "", "data directory (default $SHELLL_DATA_DIR or ~/.shelll)")
	pf.StringVar(&flagConfig, "config", "", "config file (default <data-dir>/config.toml)")
	pf.BoolVar(&flagNoHistory, "no-history", false, "do not record session history")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves settings from defaults, the config file, the
// environment and finally any flags given explicitly. The data directory is
// settled first since it locates the config file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	dataDir, err := config.ResolveDataDir(flagDataDir)
	if err != nil {
		return config.Config{}, err
	}
	path := flagConfig
	if path == "" {
		path = config.Path(dataDir)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = flagAddr
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flags.Changed("no-history") && flagNoHistory {
		cfg.History = false
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("Shelll - Local Terminal Sessions")
	fmt.Println("================================")
	fmt.Println()

	fmt.Println("Running preflight checks...")
	shellStatus, _ := preflight.CheckAll(ptymgr.DefaultShell)
	fmt.Println()

	var database *sql.DB
	if cfg.History {
		database, err = openHistory(cfg.DataDir)
		if err != nil {
			return err
		}
		defer database.Close()
	}

	hub := events.NewHub()
	mgr := ptymgr.NewManager(hub, ptymgr.DefaultSpawner())
	inspector := focus.NewInspector()
	monitor := focus.NewMonitor(inspector, hub, focus.WithSelfNames(cfg.SelfNames...))

	srv := server.New(server.Deps{
		DB:             database,
		Hub:            hub,
		PtyMgr:         mgr,
		Inspector:      inspector,
		Monitor:        monitor,
		Shell:          shellStatus,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.LoggingMiddleware(server.RecoveryMiddleware(srv.OriginMiddleware(srv))),
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		fmt.Printf("\nReceived %s, shutting down...\n", sig)

		monitor.Stop()
		mgr.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(ctx)
	}()

	fmt.Printf("Server running at http://%s\n", cfg.Addr)
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	fmt.Println("Server stopped.")
	return nil
}

func openHistory(dataDir string) (*sql.DB, error) {
	database, err := db.Open(dataDir)
	if err != nil {
		return nil, err
	}
	schema, err := migrationsFS.ReadFile("migrations/001_initial.sql")
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	if err := db.Migrate(database, string(schema)); err != nil {
		database.Close()
		return nil, err
	}
	n, err := db.CleanupStale(database)
	if err != nil {
		log.Printf("Failed to clean up stale sessions: %v", err)
	} else if n > 0 {
		log.Printf("Cleaned up %d stale sessions", n)
	}
	return database, nil
}

func runApps(cmd *cobra.Command, _ []string) error {
	inspector := focus.NewInspector()
	if !focus.Supported {
		fmt.Fprintln(cmd.ErrOrStderr(), "Application inspection is not supported on this platform")
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if name, ok := inspector.FrontmostApplicationName(ctx); ok {
		fmt.Fprintf(out, "Frontmost: %s\n", name)
	} else {
		fmt.Fprintln(out, "Frontmost: (unknown)")
	}
	for _, app := range inspector.RunningApplications(ctx) {
		if app.BundleID != "" {
			fmt.Fprintf(out, "  %s (%s)\n", app.Name, app.BundleID)
		} else {
			fmt.Fprintf(out, "  %s\n", app.Name)
		}
	}
	return nil
}
