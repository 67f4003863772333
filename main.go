package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/platformatic/pprof-to-md/internal/config"
	"github.com/platformatic/pprof-to-md/internal/logging"
	"github.com/platformatic/pprof-to-md/internal/metrics"
	"github.com/platformatic/pprof-to-md/render"
)

var version = "dev"

type cli struct {
	configPath  string
	output      string
	metricsAddr string

	// Flag values; applied over the config file only when set.
	sampleIndex int
	autoSelect  bool
	threshold   float64
	maxPaths    int
	format      string
	topN        int
	maxDepth    int
	logLevel    string
	logHuman    bool

	cfg    config.Config
	logger zerolog.Logger
}

func main() {
	if err := newRootCmd(&cli{}).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pprof-to-md [flags] <profile-uri>",
		Short: "Turn pprof profiles into hotspot, critical path and call tree reports",
		Long: `pprof-to-md analyzes a pprof profile and renders the result as markdown.

Examples:
  pprof-to-md cpu.pb.gz                      # markdown report on stdout
  pprof-to-md --auto-select heap.pb.gz       # pick inuse_space/alloc_space automatically
  pprof-to-md --format json -o out.json cpu.pb.gz
  pprof-to-md serve                          # MCP server over stdio`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args[0])
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML configuration file")
	pf.IntVar(&c.sampleIndex, "sample-index", 0, "measurement column to analyze")
	pf.BoolVar(&c.autoSelect, "auto-select", false, "pick the measurement column from the profile kind")
	pf.Float64Var(&c.threshold, "threshold", 0, "minimum self share (0..1) for hotspots")
	pf.IntVar(&c.maxPaths, "max-paths", 0, "maximum number of critical paths")
	pf.StringVar(&c.logLevel, "log-level", "", "only this level and above is logged")
	pf.BoolVar(&c.logHuman, "log-human", false, "human friendly logs instead of json")

	f := rootCmd.Flags()
	f.StringVar(&c.format, "format", "", fmt.Sprintf("output format %v", render.Formats))
	f.IntVarP(&c.topN, "top", "n", 0, "number of hotspots to render (0 = all)")
	f.IntVar(&c.maxDepth, "max-depth", 0, "call tree depth to render (0 = unlimited)")
	f.StringVarP(&c.output, "output", "o", "", "write the report to this file instead of stdout")

	rootCmd.AddCommand(c.serveCmd(), versionCmd())
	return rootCmd
}

// setup loads the config file, applies explicitly set flags and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("sample-index") {
		idx := c.sampleIndex
		cfg.Analysis.SampleIndex = &idx
	}
	if flags.Changed("auto-select") {
		cfg.Analysis.AutoSelect = c.autoSelect
	}
	if flags.Changed("threshold") {
		cfg.Analysis.HotspotThreshold = c.threshold
	}
	if flags.Changed("max-paths") {
		cfg.Analysis.MaxPaths = c.maxPaths
	}
	if flags.Changed("format") {
		cfg.Render.Format = c.format
	}
	if flags.Changed("top") {
		cfg.Render.TopN = c.topN
	}
	if flags.Changed("max-depth") {
		cfg.Render.MaxTreeDepth = c.maxDepth
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if flags.Changed("log-human") {
		cfg.Log.Human = c.logHuman
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.cfg = cfg
	c.logger = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Human)
	return nil
}

func (c *cli) run(cmd *cobra.Command, uri string) (err error) {
	p := &pipeline{logger: c.logger}
	result, err := p.analyze(cmd.Context(), uri, c.cfg)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		w = f
	}
	return render.Write(w, c.cfg.Render.Format, result, c.cfg.RenderOptions())
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis tools over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			h := &toolHandlers{
				pipeline: &pipeline{logger: c.logger, metrics: metrics.New(reg)},
				cfg:      c.cfg,
			}

			if c.metricsAddr != "" {
				srv := &http.Server{
					Addr:              c.metricsAddr,
					Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					c.logger.Info().Str("addr", c.metricsAddr).Msg("serving metrics")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						c.logger.Error().Err(err).Msg("metrics server stopped")
					}
				}()
				defer srv.Close()
			}

			c.logger.Info().Str("version", version).Msg("starting MCP server via stdio")
			if err := server.ServeStdio(newMCPServer(h, version)); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&c.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. ':9090')")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
