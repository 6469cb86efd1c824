package fattree

// trial.go runs the randomized failure experiment: one trial degrades
// the pristine topology with a fresh random draw, probes a host pair
// set, and reduces the probe outcomes to per-trial means; a sweep
// repeats that for a grid of failure rates and reduces the trial means
// to one statistic per rate.
//
// Randomness is never drawn from a hidden package-wide source.  Every
// trial owns an rngstream created under a deterministic naming scheme
// ("trial-<rate>-<run>"), and streams for a rate are all created
// before any trial starts, so a run seeded with
// rngstream.SetRngStreamMasterSeed reproduces bit-identical results
// regardless of how many workers execute the trials.

import (
	"fmt"
	"sync"

	"github.com/iti/rngstream"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// A TrialResult is the reduction of one randomized trial: the fraction
// of probed pairs that stayed reachable, and the mean hop count with
// the penalty substituted for unreachable pairs.
type TrialResult struct {
	FailRate     float64
	Reachability float64
	MeanHops     float64
	Pairs        int
}

// A FailRateStat reduces the trials run at one failure rate.  The
// standard deviations are computed across trial means and express the
// run-to-run spread at that rate; they are 0 when only one trial ran.
type FailRateStat struct {
	FailRate           float64 `json:"failrate" yaml:"failrate"`
	MeanReachability   float64 `json:"meanreachability" yaml:"meanreachability"`
	MeanHops           float64 `json:"meanhops" yaml:"meanhops"`
	StdDevReachability float64 `json:"stddevreachability" yaml:"stddevreachability"`
	StdDevHops         float64 `json:"stddevhops" yaml:"stddevhops"`
	Trials             int     `json:"trials" yaml:"trials"`
}

// A SweepResult is the final artifact of an experiment: one
// FailRateStat per tested failure rate, in increasing rate order.
type SweepResult struct {
	K       int            `json:"k" yaml:"k"`
	Runs    int            `json:"runs" yaml:"runs"`
	Samples int            `json:"samples" yaml:"samples"`
	Penalty int            `json:"penalty" yaml:"penalty"`
	Stats   []FailRateStat `json:"stats" yaml:"stats"`
}

// RunTrial executes one independent trial at the given failure rate:
// a fresh Bernoulli failure draw over every link, a host pair set per
// the selection policy, and one connectivity probe per pair.  The rng
// is the trial's private stream; nothing else draws from it.
func RunTrial(topo *Topology, failRate float64, nSamples, penalty int, rng *rngstream.RngStream) TrialResult {
	degraded := Degrade(topo, failRate, rng)
	pairs := SelectHostPairs(topo, nSamples, rng)
	samples := SamplePairs(degraded, pairs, penalty)

	reached := 0
	hopSum := 0
	for _, sr := range samples {
		if sr.Reached {
			reached++
		}
		hopSum += sr.Hops
	}

	numPairs := len(samples)
	return TrialResult{
		FailRate:     failRate,
		Reachability: float64(reached) / float64(numPairs),
		MeanHops:     float64(hopSum) / float64(numPairs),
		Pairs:        numPairs,
	}
}

// FailRatePoints returns the default failure-rate grid for a sweep up
// to maxFailRate: the graded points 0,1,2,3,4,5,7,10,15 percent,
// continued in 5-point steps beyond 15, truncated at maxFailRate and
// always ending on it.  The grid is ascending and always starts at 0.
func FailRatePoints(maxFailRate float64) []float64 {
	base := []float64{0, 1, 2, 3, 4, 5, 7, 10, 15}

	points := make([]float64, 0, len(base))
	for _, r := range base {
		if r <= maxFailRate {
			points = append(points, r)
		}
	}
	for r := 20.0; r <= maxFailRate; r += 5.0 {
		points = append(points, r)
	}
	if len(points) == 0 || points[len(points)-1] < maxFailRate {
		points = append(points, maxFailRate)
	}
	return points
}

// trialStreamName is the documented naming scheme for per-trial RNG
// streams.
func trialStreamName(failRate float64, run int) string {
	return fmt.Sprintf("trial-%g-%d", failRate, run)
}

// Sweep runs the full experiment over the topology: for each failure
// rate in the grid, cfg.Runs independent trials, reduced to one
// FailRateStat.  Trials execute across cfg.Workers goroutines (1 when
// unset); because every trial draws only from its own pre-created
// stream and results are reduced positionally, the worker count never
// changes the output.  Sweep cannot fail: a fully disconnected draw is
// a valid data point, not an error.
func Sweep(topo *Topology, cfg ExpCfg) SweepResult {
	rates := cfg.FailRates
	if len(rates) == 0 {
		rates = FailRatePoints(cfg.MaxFailRate)
	} else {
		rates = slices.Clone(rates)
		slices.Sort(rates)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	result := SweepResult{
		K:       topo.K,
		Runs:    cfg.Runs,
		Samples: cfg.Samples,
		Penalty: cfg.Penalty,
		Stats:   make([]FailRateStat, 0, len(rates)),
	}

	for _, rate := range rates {
		// streams are created sequentially, before any trial starts,
		// so stream identity depends on the sweep order alone
		rngs := make([]*rngstream.RngStream, cfg.Runs)
		for run := 0; run < cfg.Runs; run++ {
			rngs[run] = rngstream.New(trialStreamName(rate, run))
		}

		trials := make([]TrialResult, cfg.Runs)
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for run := 0; run < cfg.Runs; run++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(run int) {
				defer wg.Done()
				defer func() { <-sem }()
				trials[run] = RunTrial(topo, rate, cfg.Samples, cfg.Penalty, rngs[run])
			}(run)
		}
		wg.Wait()

		result.Stats = append(result.Stats, reduceTrials(rate, trials))
	}

	return result
}

// reduceTrials folds the trial means at one failure rate into a
// FailRateStat using a commutative combiner, so trial completion order
// is irrelevant.
func reduceTrials(failRate float64, trials []TrialResult) FailRateStat {
	reach := make([]float64, len(trials))
	hops := make([]float64, len(trials))
	for idx, tr := range trials {
		reach[idx] = tr.Reachability
		hops[idx] = tr.MeanHops
	}

	frs := FailRateStat{
		FailRate:         failRate,
		MeanReachability: stat.Mean(reach, nil),
		MeanHops:         stat.Mean(hops, nil),
		Trials:           len(trials),
	}
	if len(trials) > 1 {
		frs.StdDevReachability = stat.StdDev(reach, nil)
		frs.StdDevHops = stat.StdDev(hops, nil)
	}
	return frs
}
