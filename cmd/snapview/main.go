package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kicadcollab/snapview/internal/config"
	"github.com/kicadcollab/snapview/internal/database"
	"github.com/kicadcollab/snapview/internal/identity"
	"github.com/kicadcollab/snapview/internal/logging"
	"github.com/kicadcollab/snapview/internal/review"
	"github.com/kicadcollab/snapview/internal/server"
	"github.com/kicadcollab/snapview/internal/store"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "snapview",
		Short: "Schematic snapshot review tooling",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(newServeCommand(), newInspectCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("snapshot-dir", defaults.GetString("snapshot.dir"), "Directory holding the snapshot bundle")
	cmd.PersistentFlags().String("base-url", defaults.GetString("base.url"), "Base URL of a running snapshot server")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path for viewer state")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Float64("panel-width", defaults.GetFloat64("panel.width"), "Width of the comment side panel in pixels")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "snapshot.dir", "snapshot-dir")
	bindFlag(cmd, "base.url", "base-url")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "panel.width", "panel-width")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Host a snapshot bundle directory over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load a snapshot from a server and report diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd)
		},
	}
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if appConfig.SnapshotDir == "" {
		return errors.New("snapshot.dir is required for serve")
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	handler, err := server.NewHTTPHandler(server.Dependencies{
		SnapshotDir: appConfig.SnapshotDir,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("snapshot server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.String("snapshot_dir", appConfig.SnapshotDir))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func runInspect(cmd *cobra.Command) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if appConfig.BaseURL == "" {
		return errors.New("base.url is required for inspect")
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	identityService := identity.NewService(identity.ServiceConfig{Logger: logger})
	if db, dbErr := database.OpenSQLite(appConfig.DatabasePath, logger); dbErr != nil {
		logger.Warn("viewer database unavailable, continuing without persistence", zap.Error(dbErr))
	} else {
		identityService = identity.NewService(identity.ServiceConfig{Database: db, Logger: logger})
	}

	viewerStore, err := store.New(store.Config{
		BaseURL:        appConfig.BaseURL,
		Identity:       identityService,
		Logger:         logger,
		SidePanelWidth: appConfig.SidePanelWidth,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := viewerStore.LoadSnapshot(ctx); err != nil {
		return fmt.Errorf("snapshot load failed: %w", err)
	}
	if err := viewerStore.LoadComponents(ctx); err != nil {
		return fmt.Errorf("component load failed: %w", err)
	}
	if err := viewerStore.LoadComments(ctx); err != nil {
		return fmt.Errorf("comment load failed: %w", err)
	}

	index := viewerStore.Index()
	counts := viewerStore.Review().CountByStatus()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "components: %d\n", len(viewerStore.Components()))
	fmt.Fprintf(out, "comment threads: %d (%d open, %d resolved)\n",
		counts.Total, counts.Open, counts.Resolved)
	if len(index.Warnings) == 0 {
		fmt.Fprintln(out, "index warnings: none")
	} else {
		fmt.Fprintf(out, "index warnings: %d\n", len(index.Warnings))
		for _, warning := range index.Warnings {
			fmt.Fprintf(out, "  - %s\n", warning)
		}
	}

	filter := review.FilterOpen
	for _, root := range viewerStore.Review().RootsByStatus(filter) {
		anchor := "general"
		if ref, anchored := root.AnchorRef(); anchored {
			anchor = ref
		}
		fmt.Fprintf(out, "open: [%s] %s: %s\n", anchor, root.Author, root.Content)
	}

	return nil
}
