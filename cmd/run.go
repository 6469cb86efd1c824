package cmd

import (
	"fmt"
	"os"

	"github.com/iti/rngstream"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iti/fattree"
)

var (
	runOutput   string
	runMarkdown string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the failure sweep and report per-rate statistics",
	Long: `Build the Fat-Tree for the configured k, then for each failure rate in
the grid run the configured number of independent trials, each with a
fresh random set of link failures, and print the reduced reachability
and path-length statistics as a table.`,
	RunE: runSweep,
}

func init() {
	runCmd.Flags().Int("k", 8, "Fat-Tree port count (even, >= 2)")
	runCmd.Flags().Int("runs", 100, "independent trials per failure rate")
	runCmd.Flags().Int("samples", 500, "host pairs sampled per trial (ignored when exhaustive)")
	runCmd.Flags().Float64("max-fail-rate", 15.0, "top of the failure rate grid, percent")
	runCmd.Flags().Int("penalty", 0, "hop count recorded for unreachable pairs")
	runCmd.Flags().Uint64("seed", 1000, "master seed for the per-trial RNG streams")
	runCmd.Flags().Int("workers", 1, "goroutines executing trials")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "write the sweep dataset to this file (yaml or json)")
	runCmd.Flags().StringVar(&runMarkdown, "markdown", "", "write the statistics table as markdown to this file")
	_ = viper.BindPFlags(runCmd.Flags())
}

// loadExpCfg assembles the experiment configuration: file first when
// --config is given, then flag and environment overrides via viper.
func loadExpCfg(cmd *cobra.Command) (*fattree.ExpCfg, error) {
	cfg := fattree.CreateExpCfg("fattree-robustness")

	if cfgFile != "" {
		fileCfg, err := fattree.ReadExpCfg(cfgFile, fattree.IsYAML(cfgFile), nil)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	override := func(name string, set func()) {
		if cmd.Flags().Changed(name) || cfgFile == "" {
			set()
		}
	}
	override("k", func() { cfg.K = viper.GetInt("k") })
	override("runs", func() { cfg.Runs = viper.GetInt("runs") })
	override("samples", func() { cfg.Samples = viper.GetInt("samples") })
	override("max-fail-rate", func() { cfg.MaxFailRate = viper.GetFloat64("max-fail-rate") })
	override("penalty", func() { cfg.Penalty = viper.GetInt("penalty") })
	override("seed", func() { cfg.Seed = viper.GetUint64("seed") })
	override("workers", func() { cfg.Workers = viper.GetInt("workers") })

	return cfg, validateExpCfg(cfg)
}

// validateExpCfg enforces the parameter ranges the core does not
// police itself (the core only rejects a malformed k).
func validateExpCfg(cfg *fattree.ExpCfg) error {
	if cfg.Runs < 1 {
		return fmt.Errorf("runs must be >= 1, got %d", cfg.Runs)
	}
	if cfg.Samples < 1 {
		return fmt.Errorf("samples must be >= 1, got %d", cfg.Samples)
	}
	if cfg.MaxFailRate < 0.0 || cfg.MaxFailRate > 100.0 {
		return fmt.Errorf("max-fail-rate must lie in [0,100], got %g", cfg.MaxFailRate)
	}
	if cfg.Penalty < 0 {
		return fmt.Errorf("penalty must be >= 0, got %d", cfg.Penalty)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadExpCfg(cmd)
	if err != nil {
		return err
	}

	topo, err := fattree.BuildFatTree(cfg.K)
	if err != nil {
		return err
	}

	log.Info().
		Int("k", cfg.K).
		Int("hosts", topo.Params.TotalHosts).
		Int("links", topo.Params.TotalLinks).
		Int("runs", cfg.Runs).
		Uint64("seed", cfg.Seed).
		Msg("starting failure sweep")

	rngstream.SetRngStreamMasterSeed(cfg.Seed)
	result := fattree.Sweep(topo, *cfg)

	displaySweep(result)

	if runOutput != "" {
		if err := result.WriteToFile(runOutput); err != nil {
			return err
		}
		log.Info().Str("file", runOutput).Msg("wrote sweep dataset")
	}
	if runMarkdown != "" {
		if err := os.WriteFile(runMarkdown, []byte(sweepTable(result).RenderMarkdown()+"\n"), 0o644); err != nil {
			return err
		}
		log.Info().Str("file", runMarkdown).Msg("wrote markdown table")
	}
	return nil
}

func sweepTable(result fattree.SweepResult) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		"Fail Rate (%)",
		"Reachability (%)",
		"Avg Path (hops)",
		"StdDev Reach",
		"StdDev Hops",
	})
	t.AppendRows(lo.Map(result.Stats, func(s fattree.FailRateStat, _ int) table.Row {
		return table.Row{
			fmt.Sprintf("%.1f", s.FailRate),
			fmt.Sprintf("%.2f", s.MeanReachability*100.0),
			fmt.Sprintf("%.4f", s.MeanHops),
			fmt.Sprintf("%.4f", s.StdDevReachability),
			fmt.Sprintf("%.4f", s.StdDevHops),
		}
	}))
	return t
}

func displaySweep(result fattree.SweepResult) {
	t := sweepTable(result)
	t.SetOutputMirror(os.Stdout)
	t.Render()
}
