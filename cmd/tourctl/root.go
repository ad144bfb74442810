package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neexbeast/tourfront/internal/config"
	"github.com/neexbeast/tourfront/internal/logger"
	"github.com/neexbeast/tourfront/internal/tour"
)

const fetchFailed = "Failed to fetch tours"

// tourSource is what the commands need from the tour API.
type tourSource interface {
	FetchAll(ctx context.Context, scope tour.Scope) ([]tour.Tour, error)
	Detail(ctx context.Context, id string) (*tour.TourDetail, error)
}

// app carries the state shared by all subcommands.
type app struct {
	output  string
	verbose bool

	log    *zap.Logger
	source tourSource
}

// newRootCmd builds the command tree. A non-nil source replaces the HTTP
// client built from configuration.
func newRootCmd(source tourSource) *cobra.Command {
	a := &app{source: source}

	root := &cobra.Command{
		Use:           "tourctl",
		Short:         "Browse the tour catalogue from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.output, "output", "o", formatTable, "Output format: table, json or yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(a.listCmd(), a.detailCmd(), a.browseCmd())
	return root
}

func (a *app) setup() error {
	if err := validateFormat(a.output); err != nil {
		return err
	}

	level := "warn"
	if a.verbose {
		level = "debug"
	}
	log, err := logger.New(level, "console")
	if err != nil {
		return err
	}
	a.log = log

	if a.source != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateClient(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.source = tour.NewClient(tour.Options{
		BaseURL:  cfg.TourAPIBaseURL,
		Tokens:   tour.StaticToken(cfg.TourAPIToken),
		PageSize: cfg.TourPageSize,
		MaxPages: cfg.TourMaxPages,
		Timeout:  cfg.TourAPITimeout,
		Logger:   log,
	})
	return nil
}

func (a *app) listCmd() *cobra.Command {
	var (
		location string
		filter   tour.FilterState
		sortBy   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every tour in a location",
		Long: `Fetch every page of the search endpoint for a location, then filter and
sort the accumulated list locally.

Filters are case-sensitive substring matches, except --price which must equal
the sale price exactly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := tour.ParseSortOrder(sortBy)
			if err != nil {
				return err
			}

			tours, err := a.source.FetchAll(cmd.Context(), tour.NewScope(location))
			if err != nil {
				a.log.Debug("fetch failed", zap.Error(err))
				return fmt.Errorf("%s: %w", fetchFailed, err)
			}

			return renderTours(cmd.OutOrStdout(), a.output, tour.Apply(tours, filter, order))
		},
	}

	f := cmd.Flags()
	f.StringVar(&location, "location", "", "Location id (empty or \"all\" for every location)")
	f.StringVar(&filter.Price, "price", "", "Exact sale price")
	f.StringVar(&filter.Language, "language", "", "Text the title must contain")
	f.StringVar(&filter.Duration, "duration", "", "Text the duration must contain")
	f.StringVar(&filter.Time, "time", "", "Text the duration must contain")
	f.StringVar(&sortBy, "sort", string(tour.SortRecommended), "recommended, price-low-high or price-high-low")
	return cmd
}

func (a *app) detailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detail <id>",
		Short: "Show a single tour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := a.source.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderDetail(cmd.OutOrStdout(), a.output, detail)
		},
	}
}

func (a *app) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactive listing session",
		Long: `Start an interactive session reading commands from stdin:

  location <id|all>   load a location (drops the current list)
  price <value>       exact sale price filter
  language <text>     title filter
  duration <text>     duration filter
  time <text>         duration filter
  clear               remove all filters
  sort <order>        recommended, price-low-high or price-high-low
  show                print the current list
  quit                leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := &browser{
				session: tour.NewSession(a.source),
				out:     cmd.OutOrStdout(),
				format:  a.output,
			}
			return b.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}
