// Package hubsampler provides pluggable samplers for
// hyperparameter-optimization studies.
//
// Two samplers ship with the module:
//
//   - nsgaiiwit: an NSGA-II multi-objective genetic sampler whose
//     generation bookkeeping tolerates trials that existed before the
//     sampler was attached. Pre-existing completed trials are folded
//     into the first population instead of being ignored.
//
//   - carbo: a Bayesian-optimization sampler built on a
//     Gaussian-process surrogate over the numeric search space, scored
//     by a configurable acquisition function, with random startup
//     trials.
//
// Samplers implement the core.Sampler plugin surface and are driven by
// the study engine in pkg/core, which owns trial storage, objective
// evaluation, and the search-space type system. Trial stores live in
// pkg/storage (in-memory and SQLite), YAML configuration in
// pkg/config, and Arrow/Parquet trial export in pkg/export.
//
// Simple Example:
//
//	import (
//	    "github.com/jpfeil/hubsampler/pkg/core"
//	    "github.com/jpfeil/hubsampler/pkg/samplers/nsgaiiwit"
//	    "github.com/jpfeil/hubsampler/pkg/storage"
//	)
//
//	func main() {
//	    sampler, err := nsgaiiwit.New(
//	        nsgaiiwit.WithPopulationSize(20),
//	        nsgaiiwit.WithSeed(42),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    study := core.NewStudy(storage.NewMemoryStorage(),
//	        core.WithSampler(sampler),
//	        core.WithDirections(core.DirectionMinimize, core.DirectionMinimize),
//	    )
//
//	    space := core.SearchSpace{
//	        "x": core.FloatDistribution{Low: -5, High: 5},
//	        "y": core.IntDistribution{Low: 0, High: 10},
//	    }
//	    err = study.Optimize(context.Background(), space, objective, 200)
//	}
package hubsampler
