// Command votegraph transforms raw Eurovision vote records into a
// weighted directed graph between countries, written as edge and node
// list CSV files for downstream network analysis.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-votegraph/infrastructure/csvstore"
	"github.com/ahrav/go-votegraph/infrastructure/middleware"
	"github.com/ahrav/go-votegraph/internal/application"
	"github.com/ahrav/go-votegraph/internal/domain"
	"github.com/ahrav/go-votegraph/internal/ports"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "votegraph",
		Short: "Eurovision vote graph builder",
		Long: `Votegraph preprocesses Eurovision contest vote records into a weighted
directed graph between countries.

It merges votes with contestant metadata, applies round, threshold,
participation and selection filters, normalizes points with a
configurable weighting strategy, and emits an edge list and a node list
as comma-delimited files.`,
		Version: version,
	}

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(countriesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// inputFlags are the record-set locations shared by all subcommands.
type inputFlags struct {
	votes       string
	contestants string
	cultural    string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.votes, "votes", "votes.csv", "path to the votes CSV")
	cmd.Flags().StringVar(&f.contestants, "contestants", "contestants.csv", "path to the contestants CSV")
	cmd.Flags().StringVar(&f.cultural, "cultural", "", "path to the optional cultural dimensions CSV")
}

// loadConfig assembles the pipeline configuration from an optional YAML
// file overlaid with any explicitly set flags.
func loadConfig(cmd *cobra.Command, configPath string) (application.Config, error) {
	cfg := application.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = application.LoadConfigFromFile(configPath)
		if err != nil {
			return application.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("weighting") {
		v, _ := flags.GetString("weighting")
		cfg.Weighting = domain.WeightingMethod(v)
	}
	if flags.Changed("min-participations") {
		cfg.MinParticipations, _ = flags.GetInt("min-participations")
	}
	if flags.Changed("top3-only") {
		cfg.Top3Only, _ = flags.GetBool("top3-only")
	}
	if flags.Changed("final-only") {
		cfg.FinalOnly, _ = flags.GetBool("final-only")
	}
	if flags.Changed("countries") {
		cfg.SelectedCountries, _ = flags.GetStringSlice("countries")
	}
	if flags.Changed("keep-zero-edges") {
		keep, _ := flags.GetBool("keep-zero-edges")
		cfg.DropZeroEdges = !keep
	}

	if err := cfg.Validate(); err != nil {
		return application.Config{}, err
	}
	return cfg, nil
}

func registerConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to a YAML pipeline configuration")
	cmd.Flags().String("weighting", string(domain.WeightNone),
		"weighting method: none, by_participation, by_total, by_both")
	cmd.Flags().Int("min-participations", 1, "minimum participation count for a country to be kept")
	cmd.Flags().Bool("top3-only", false, "keep only votes awarding 8 or more points")
	cmd.Flags().Bool("final-only", false, "keep only final-round votes")
	cmd.Flags().StringSlice("countries", nil, "restrict output to these country names")
	cmd.Flags().Bool("keep-zero-edges", false, "keep edges whose summed weight is zero")
}

func buildCmd() *cobra.Command {
	var in inputFlags
	var edgesOut, nodesOut, metricsListen string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the edge and node lists from the input record sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}

			var metrics ports.MetricsCollector
			if metricsListen != "" {
				metrics = middleware.NewPrometheusMetrics()
				go func() {
					http.Handle("/metrics", promhttp.Handler())
					if err := http.ListenAndServe(metricsListen, nil); err != nil {
						logger.Error("metrics listener failed", "err", err)
					}
				}()
				logger.Info("serving metrics", "addr", metricsListen)
			}

			opts := []application.Option{application.WithLogger(logger)}
			if metrics != nil {
				opts = append(opts, application.WithMetrics(metrics))
			}
			pipeline, err := application.NewPipeline(cfg, opts...)
			if err != nil {
				return err
			}

			store := csvstore.NewStore(in.votes, in.contestants, in.cultural,
				csvstore.WithLogger(logger))
			records, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}

			graph, err := pipeline.Run(cmd.Context(), records)
			if err != nil {
				return err
			}
			logger.Info("pipeline complete",
				"nodes", len(graph.Nodes),
				"edges", len(graph.Edges),
				"weighting", string(cfg.Weighting),
			)

			writer := csvstore.NewWriter(edgesOut, nodesOut)
			if err := writer.Write(graph); err != nil {
				return err
			}

			fmt.Printf("Wrote %d edges to %s and %d nodes to %s\n",
				len(graph.Edges), edgesOut, len(graph.Nodes), nodesOut)
			return nil
		},
	}

	in.register(cmd)
	registerConfigFlags(cmd)
	cmd.Flags().StringVar(&edgesOut, "edges-out", "eurovision_edgelist.csv", "edge list output path")
	cmd.Flags().StringVar(&nodesOut, "nodes-out", "eurovision_nodelist.csv", "node list output path")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "address to expose Prometheus metrics on (disabled when empty)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func countriesCmd() *cobra.Command {
	var in inputFlags
	var verbose bool

	cmd := &cobra.Command{
		Use:   "countries",
		Short: "List selectable country names after the participation filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			// Selection is what this command enumerates options for;
			// never apply it here.
			cfg.SelectedCountries = nil

			pipeline, err := application.NewPipeline(cfg, application.WithLogger(logger))
			if err != nil {
				return err
			}

			store := csvstore.NewStore(in.votes, in.contestants, in.cultural,
				csvstore.WithLogger(logger))
			records, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}

			graph, err := pipeline.Run(cmd.Context(), records)
			if err != nil {
				return err
			}

			for _, node := range graph.Nodes {
				fmt.Printf("%s\t%s\t%d\n", node.CountryID, node.CountryName, node.ParticipationCount)
			}
			return nil
		},
	}

	in.register(cmd)
	registerConfigFlags(cmd)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
