package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jeryldev/sprintboard/internal/api"
	"github.com/jeryldev/sprintboard/internal/config"
	"github.com/jeryldev/sprintboard/internal/logging"
	"github.com/jeryldev/sprintboard/internal/session"
	"github.com/jeryldev/sprintboard/internal/store"
	"github.com/jeryldev/sprintboard/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	cfgFile string

	cfg       *config.Config
	logger    *logrus.Logger
	logCloser io.Closer
	db        *store.DB
)

var rootCmd = &cobra.Command{
	Use:          "sb",
	Short:        "Terminal sprint board",
	Long:         "A terminal Kanban board for the tasks of your team's current sprint.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		v := config.New()
		if err := config.BindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		var err error
		if cfg, err = config.Load(v, cfgFile); err != nil {
			return err
		}
		if logger, logCloser, err = logging.New(cfg.Log); err != nil {
			return err
		}
		if db, err = store.Open(cfg.DataDir); err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		logger.WithField("command", cmd.CommandPath()).Debug("starting")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := cfg.RequireGroup(); err != nil {
			return err
		}
		app := tui.NewApp(client, tui.Options{
			GroupID:  cfg.GroupID,
			Store:    db,
			Poller:   session.NewPoller(client, cfg.PollInterval, logger),
			Rollback: cfg.RollbackOnFailure,
			Log:      logger,
		})
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(commandContext(cmd)))
		_, err = p.Run()
		return err
	},
}

// Execute runs the root command. The database and log file are closed
// even when the command fails, which skips PersistentPostRunE.
func Execute() error {
	defer closeAll()
	return rootCmd.Execute()
}

// newClient builds an API client from the loaded settings.
func newClient() (*api.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return api.New(cfg.APIURL,
		api.WithToken(cfg.Token),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
	), nil
}

func closeAll() error {
	var err error
	if db != nil {
		err = db.Close()
		db = nil
	}
	if logCloser != nil {
		if cerr := logCloser.Close(); err == nil {
			err = cerr
		}
		logCloser = nil
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/sprintboard/config.yaml)")
	pf.String("api-url", "", "Platform API base URL")
	pf.String("token", "", "Bearer token for the platform API")
	pf.Int64("group", 0, "Group id")
	pf.Int64("management", 0, "Management (course offering) id")
	pf.String("data-dir", "", "Directory for the local database")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "", `Log file, or "-" for stderr`)
	pf.BoolVar(&jsonOutput, "json", false, "Output as JSON")
}
