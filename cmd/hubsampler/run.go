package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
	"github.com/jpfeil/hubsampler/pkg/storage"
)

var runFlags struct {
	sampler string
	study   string
	db      string
	trials  int
	jobs    int
}

// benchmark is the built-in bi-objective test problem (Schaffer N.1):
// minimize x^2 and (x-2)^2 over x in [-10, 10]. Its Pareto front is
// the segment x in [0, 2], which makes sampler behavior easy to eyeball.
var benchmarkSpace = core.SearchSpace{
	"x": core.FloatDistribution{Low: -10, High: 10},
}

func benchmark(trial *core.Trial) ([]float64, error) {
	x, ok := trial.ParamFloat("x")
	if !ok {
		return nil, errors.New(errors.InvalidInput, "trial is missing parameter x")
	}
	return []float64{x * x, (x - 2) * (x - 2)}, nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Optimize the built-in benchmark objective",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		registry := core.NewSamplerRegistry()
		cfg.RegisterSamplers(registry)
		sampler, err := registry.Create(runFlags.sampler)
		if err != nil {
			return err
		}

		store, err := openStorage(runFlags.db)
		if err != nil {
			return err
		}
		defer store.Close()

		study := core.NewStudy(store,
			core.WithStudyID(runFlags.study),
			core.WithSampler(sampler),
			core.WithDirections(core.DirectionMinimize, core.DirectionMinimize),
		)

		err = study.Optimize(cmd.Context(), benchmarkSpace, benchmark, runFlags.trials,
			core.WithNJobs(runFlags.jobs))
		if err != nil {
			return err
		}

		completed, err := study.CompletedTrials()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "study %s: %d trials completed\n",
			study.ID(), len(completed))
		return nil
	},
}

func openStorage(path string) (core.Storage, error) {
	if path == "" {
		return storage.NewMemoryStorage(), nil
	}
	return storage.NewSQLiteStorage(storage.SQLiteConfig{Path: path, EnableWAL: true})
}

func init() {
	runCmd.Flags().StringVar(&runFlags.sampler, "sampler", "nsgaiiwit", "sampler plugin to run")
	runCmd.Flags().StringVar(&runFlags.study, "study", "benchmark", "study identifier")
	runCmd.Flags().StringVar(&runFlags.db, "db", "", "SQLite trial database (empty: in-memory)")
	runCmd.Flags().IntVar(&runFlags.trials, "trials", 100, "number of trials to run")
	runCmd.Flags().IntVar(&runFlags.jobs, "jobs", 1, "concurrent objective evaluations")
	rootCmd.AddCommand(runCmd)
}
