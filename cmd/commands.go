package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/okian/fairpay/internal/adapters/render"
	service "github.com/okian/fairpay/internal/app"
	"github.com/okian/fairpay/internal/config"
	"github.com/okian/fairpay/internal/dataset"
	"github.com/okian/fairpay/internal/domain/curve"
	"github.com/okian/fairpay/internal/domain/equity"
	"github.com/okian/fairpay/internal/domain/model"
	"github.com/okian/fairpay/pkg/logger"
	"github.com/okian/fairpay/pkg/metrics"
	"github.com/spf13/cobra"
)

// Default equity sampling: seed stage through a little past IPO.
const (
	defaultEquityFrom = equity.Seed
	defaultEquityTo   = 1.5
	defaultEquityStep = 0.25
)

var errPartialCandidate = errors.New("--productivity and --salary must be given together")

// cli carries state shared by every subcommand once the root pre-run has
// loaded configuration and logging.
type cli struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	log     logger.Logger
	metrics *metrics.Manager
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "fairpay",
		Short: "Calibrate salaries for internal consistency and against the market",
		Long: `fairpay fits a power-law market curve to the salaries a company pays,
lifts employees who earn less than a less productive colleague, and ranks
everyone by the raise they are owed.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		c.calibrateCmd(),
		c.candidateCmd(),
		c.equityCmd(),
		c.generateCmd(),
	)
	return root
}

// setup loads config (defaults -> optional file -> env) and initializes logging.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if c.configPath == "" {
		c.configPath = os.Getenv(config.EnvConfigPath)
	}

	cfg, err := config.LoadFrom(ctx, c.configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		return err
	}

	c.cfg = cfg
	c.log = logger.Get()
	c.metrics = metrics.Default()
	return nil
}

func (c *cli) newService(cfg *config.Config) *service.Service {
	fitter := curve.NewFitter(
		curve.WithMethod(cfg.Solver.Method),
		curve.WithMaxIterations(cfg.Solver.MaxIterations),
		curve.WithTolerance(cfg.Solver.Tolerance),
	)
	return service.New(
		service.WithLogger(c.log),
		service.WithMetrics(c.metrics),
		service.WithFitter(fitter),
		service.WithBandBounds(cfg.BandBounds()),
		service.WithInitialGuess(cfg.Guess()),
		service.WithMarketMultiplier(cfg.MarketMultiplier),
	)
}

// loadDataset prefers inline samples over the named built-in dataset.
func loadDataset(cfg *config.Config) (model.Dataset, error) {
	if len(cfg.Samples) > 0 {
		return model.NewDataset(cfg.Points()...)
	}
	return dataset.Builtin(cfg.Dataset)
}

type calibrateFlags struct {
	dataset     string
	output      string
	metricsFile string
	watch       bool
}

func (c *cli) calibrateCmd() *cobra.Command {
	f := &calibrateFlags{}
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Run a full calibration and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			apply := func(cfg *config.Config) {
				if cmd.Flags().Changed("dataset") {
					cfg.Dataset = f.dataset
					cfg.Samples = nil
				}
				if cmd.Flags().Changed("output") {
					cfg.Output = f.output
				}
				if cmd.Flags().Changed("metrics-file") {
					cfg.MetricsFile = f.metricsFile
				}
			}

			apply(c.cfg)
			if err := config.Validate(c.cfg); err != nil {
				return err
			}
			if !f.watch {
				return c.calibrate(ctx, cmd, c.cfg)
			}

			if c.configPath == "" {
				return errors.New("--watch needs a config file")
			}
			if err := c.calibrate(ctx, cmd, c.cfg); err != nil {
				c.log.Error(ctx, "calibration failed", logger.Error(err))
			}
			return config.Watch(ctx, c.configPath, c.log, func(next *config.Config) {
				apply(next)
				if err := config.Validate(next); err != nil {
					c.log.Error(ctx, "reloaded config rejected", logger.Error(err))
					return
				}
				if err := c.calibrate(ctx, cmd, next); err != nil {
					c.log.Error(ctx, "calibration failed", logger.Error(err))
				}
			})
		},
	}
	cmd.Flags().StringVar(&f.dataset, "dataset", "", fmt.Sprintf("built-in dataset %v (overrides config samples)", dataset.Names()))
	cmd.Flags().StringVar(&f.output, "output", "", "json or table (overrides config)")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after each run")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "re-run whenever the config file changes")
	return cmd
}

// calibrate runs one calibration. A partial report is still printed before
// the run error is returned.
func (c *cli) calibrate(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	d, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	report, runErr := c.newService(cfg).Run(ctx, d)
	if report != nil {
		if err := render.Report(cmd.OutOrStdout(), cfg.Output, report); err != nil {
			return err
		}
	}
	if cfg.MetricsFile != "" {
		if err := c.metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		c.log.Debug(ctx, "metrics written", logger.String("path", cfg.MetricsFile))
	}
	return runErr
}

func (c *cli) candidateCmd() *cobra.Command {
	var (
		offer  model.SamplePoint
		name   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "candidate",
		Short: "Assess a salary offer against the current employees",
		Long: `Assess a salary offer against the current employees. The offer comes from
--productivity and --salary, else the config's candidate section, else the
built-in example offer.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			if cmd.Flags().Changed("dataset") {
				cfg.Dataset, cfg.Samples = name, nil
			}
			if cmd.Flags().Changed("output") {
				cfg.Output = output
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			// flags, then the config's candidate section, then the example offer
			hasProductivity, hasSalary := cmd.Flags().Changed("productivity"), cmd.Flags().Changed("salary")
			switch {
			case hasProductivity != hasSalary:
				return errPartialCandidate
			case hasProductivity:
			case cfg.Candidate != nil:
				offer = model.SamplePoint{Productivity: cfg.Candidate.Productivity, Salary: cfg.Candidate.Salary}
			default:
				offer = dataset.ExampleOffer
				c.log.Info(cmd.Context(), "no candidate given; assessing the example offer",
					logger.Float64("productivity", offer.Productivity),
					logger.Float64("salary", offer.Salary),
				)
			}

			d, err := loadDataset(cfg)
			if err != nil {
				return err
			}
			a, err := c.newService(cfg).Assess(cmd.Context(), d, offer)
			if err != nil {
				return err
			}
			return render.Assessment(cmd.OutOrStdout(), cfg.Output, a)
		},
	}
	cmd.Flags().Float64Var(&offer.Productivity, "productivity", 0, "candidate productivity")
	cmd.Flags().Float64Var(&offer.Salary, "salary", 0, "offered salary")
	cmd.Flags().StringVar(&name, "dataset", "", "built-in dataset (overrides config samples)")
	cmd.Flags().StringVar(&output, "output", "", "json or table (overrides config)")
	return cmd
}

func (c *cli) equityCmd() *cobra.Command {
	var (
		from, to, step float64
		output         string
	)
	cmd := &cobra.Command{
		Use:   "equity",
		Short: "Print the perceived value multiple of equity by company stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			points, err := equity.Series(from, to, step)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output") {
				output = c.cfg.Output
			}
			return render.Equity(cmd.OutOrStdout(), output, points)
		},
	}
	cmd.Flags().Float64Var(&from, "from", defaultEquityFrom, "first stage (0 = seed, 1 = IPO)")
	cmd.Flags().Float64Var(&to, "to", defaultEquityTo, "end stage, exclusive")
	cmd.Flags().Float64Var(&step, "step", defaultEquityStep, "stage step")
	cmd.Flags().StringVar(&output, "output", "", "json or table (overrides config)")
	return cmd
}

func (c *cli) generateCmd() *cobra.Command {
	var (
		params   model.CurveParams
		count    int
		minX     float64
		maxX     float64
		noise    float64
		seed     uint64
		defaults = dataset.NewGenerator()
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a synthetic samples block drawn from a power-law curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen := dataset.NewGenerator(
				dataset.WithCount(count),
				dataset.WithProductivityRange(minX, maxX),
				dataset.WithNoise(noise),
				dataset.WithSeed(seed),
			)
			d, err := gen.Generate(params)
			if err != nil {
				return err
			}

			samples := make([]map[string]any, 0, d.Len())
			for _, p := range d.Points() {
				samples = append(samples, map[string]any{
					"productivity": p.Productivity,
					"salary":       p.Salary,
				})
			}
			out, err := yaml.Parser().Marshal(map[string]any{"samples": samples})
			if err != nil {
				return err
			}
			c.log.Debug(cmd.Context(), "generated samples", logger.Int("count", d.Len()))
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().Float64Var(&params.Alpha, "alpha", 0, "curve scale")
	cmd.Flags().Float64Var(&params.Beta, "beta", 0, "curve exponent")
	cmd.Flags().IntVar(&count, "count", defaults.Count(), "number of employees")
	cmd.Flags().Float64Var(&minX, "min", defaults.MinProductivity(), "lowest productivity")
	cmd.Flags().Float64Var(&maxX, "max", defaults.MaxProductivity(), "highest productivity, exclusive")
	cmd.Flags().Float64Var(&noise, "noise", 0, "standard deviation of multiplicative salary noise")
	cmd.Flags().Uint64Var(&seed, "seed", defaults.Seed(), "random seed")
	_ = cmd.MarkFlagRequired("alpha")
	_ = cmd.MarkFlagRequired("beta")
	return cmd
}
