package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/mxdesk/internal/config"
	"github.com/jask/mxdesk/internal/database"
	"github.com/jask/mxdesk/internal/database/repository"
	"github.com/jask/mxdesk/internal/logging"
	"github.com/jask/mxdesk/internal/proposal"
	"github.com/jask/mxdesk/internal/service"
	"github.com/jask/mxdesk/internal/tui"
)

var verbose bool

// env is everything a command needs once config and the store are up.
type env struct {
	cfg       config.Config
	db        *sql.DB
	log       *zap.Logger
	proposals *service.ProposalService
	samples   *service.SampleService
}

func (e *env) Close() {
	_ = e.log.Sync()
	_ = e.db.Close()
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(cfg.Log.Path, level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.OpenMigrated(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	sessions := repository.NewSessionRepo(db)
	return &env{
		cfg: cfg,
		db:  db,
		log: logger,
		proposals: &service.ProposalService{
			Proposals: repository.NewProposalRepo(db),
			Session:   sessions,
			Log:       logger.Named("proposals"),
		},
		samples: &service.SampleService{
			Samples: repository.NewSampleRepo(db),
			Queue:   repository.NewQueueRepo(db),
			Session: sessions,
			Log:     logger.Named("samples"),
		},
	}, nil
}

var rootCmd = &cobra.Command{
	Use:           "mxdesk",
	Short:         "Beamline desk for proposal login and manual sample entry",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		rules, err := e.cfg.SampleRules()
		if err != nil {
			e.log.Warn("invalid manual sample config, using defaults", zap.Error(err))
		}
		app := tui.New(ctx, e.proposals, e.samples, tui.Options{
			Route: e.cfg.UI.Route,
			Rules: rules,
			Now:   time.Now,
			Log:   e.log.Named("tui"),
		})
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
		err = config.Watch(func(c config.Config, err error) {
			if err != nil {
				e.log.Warn("config reload failed", zap.Error(err))
				return
			}
			rules, rerr := c.SampleRules()
			p.Send(tui.RulesChangedMsg{Rules: rules, Err: rerr})
		})
		if err != nil {
			e.log.Warn("config watch disabled", zap.Error(err))
		}

		e.log.Info("starting ui", zap.String("route", e.cfg.UI.Route), zap.String("db", e.cfg.Database.Path))
		_, err = p.Run()
		return err
	},
}

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List proposals, highest number first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		return printProposals(cmd.Context(), cmd.OutOrStdout(), e.proposals)
	},
}

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Print the sample tracking list",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		loc, err := e.cfg.Location()
		if err != nil {
			e.log.Warn("falling back to UTC", zap.Error(err))
		}
		return printSamples(cmd.Context(), cmd.OutOrStdout(), e.samples, loc)
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Print the data collection queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		return printQueue(cmd.Context(), cmd.OutOrStdout(), e.samples)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear samples, queue and session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		m := &service.MaintenanceService{DB: e.db}
		if err := m.Reset(cmd.Context()); err != nil {
			return err
		}
		e.log.Info("store reset")
		fmt.Fprintln(cmd.OutOrStdout(), "reset done")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var forceInit bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective settings to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.OutOrStdout(), forceInit)
	},
}

func initConfig(w io.Writer, force bool) error {
	path, err := config.Init(force)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "wrote", path)
	return nil
}

func printProposals(ctx context.Context, w io.Writer, s *service.ProposalService) error {
	items, err := s.List(ctx)
	if err != nil {
		return err
	}
	current, _, err := s.Selected(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tPROPOSAL\tTITLE\tPERSON")
	for _, it := range proposal.SortedByNumber(items) {
		mark := ""
		if it.DisplayID() == current.DisplayID() {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, it.DisplayID(), it.Title, it.Person)
	}
	return tw.Flush()
}

func printSamples(ctx context.Context, w io.Writer, s *service.SampleService, loc *time.Location) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	mounted, err := s.Mounted(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tPREFIX\tNAME\tACRONYM\tLOCATION\tADDED")
	for _, smp := range list {
		mark := ""
		if mounted != nil && mounted.SampleID == smp.SampleID {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", mark, smp.DefaultPrefix, smp.SampleName,
			smp.ProteinAcronym, smp.Location, smp.CreatedAt.In(loc).Format("2006-01-02 15:04:05 MST"))
	}
	return tw.Flush()
}

func printQueue(ctx context.Context, w io.Writer, s *service.SampleService) error {
	entries, err := s.QueueEntries(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "queue is empty")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPREFIX\tSAMPLE ID")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, e.Sample.DefaultPrefix, e.Sample.SampleID)
	}
	return tw.Flush()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(proposalsCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(resetCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
