package nsgaiiwit

import (
	"math"
	"sort"

	"github.com/jpfeil/hubsampler/pkg/core"
)

// ConstraintsFunc evaluates a completed trial's constraint values.
// A value greater than zero means the constraint is violated by that
// amount; zero or negative means satisfied.
type ConstraintsFunc func(trial *core.Trial) []float64

// violation sums the positive parts of a trial's constraint values.
func violation(constraints []float64) float64 {
	var total float64
	for _, c := range constraints {
		if c > 0 {
			total += c
		}
	}
	return total
}

// dominates reports whether trial a dominates trial b under the
// study's objective directions, applying constrained domination when a
// constraints function is configured: a feasible trial dominates an
// infeasible one, and between two infeasible trials the smaller total
// violation wins.
func (s *Sampler) dominates(study *core.Study, a, b *core.Trial) bool {
	if s.constraintsFunc != nil {
		va := violation(s.constraintsFunc(a))
		vb := violation(s.constraintsFunc(b))
		if va == 0 && vb > 0 {
			return true
		}
		if va > 0 && vb == 0 {
			return false
		}
		if va > 0 && vb > 0 {
			return va < vb
		}
	}
	return paretoDominates(study.NormalizedValues(a), study.NormalizedValues(b))
}

// paretoDominates implements strict Pareto dominance on minimized
// objective vectors.
func paretoDominates(a, b []float64) bool {
	betterInAny := false
	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			betterInAny = true
		}
	}
	return betterInAny
}

// nonDominatedSort partitions a population into fronts: front 0 holds
// the non-dominated trials, front 1 the trials dominated only by front
// 0, and so on. Within a front, trial order follows trial number so
// the sort is reproducible.
func (s *Sampler) nonDominatedSort(study *core.Study, population []*core.Trial) [][]*core.Trial {
	n := len(population)
	dominatedBy := make([][]int, n)
	dominationCount := make([]int, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case s.dominates(study, population[i], population[j]):
				dominatedBy[i] = append(dominatedBy[i], j)
				dominationCount[j]++
			case s.dominates(study, population[j], population[i]):
				dominatedBy[j] = append(dominatedBy[j], i)
				dominationCount[i]++
			}
		}
	}

	var fronts [][]*core.Trial
	var current []int
	for i := 0; i < n; i++ {
		if dominationCount[i] == 0 {
			current = append(current, i)
		}
	}

	for len(current) > 0 {
		front := make([]*core.Trial, 0, len(current))
		for _, i := range current {
			front = append(front, population[i])
		}
		sort.Slice(front, func(a, b int) bool { return front[a].Number < front[b].Number })
		fronts = append(fronts, front)

		var next []int
		for _, i := range current {
			for _, j := range dominatedBy[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		current = next
	}

	return fronts
}

// crowdingDistanceSort orders one front by descending crowding
// distance, the NSGA-II diversity measure: boundary solutions rank
// first, then solutions in sparse objective-space regions. Ties break
// on trial number for reproducibility.
func crowdingDistanceSort(study *core.Study, front []*core.Trial) []*core.Trial {
	n := len(front)
	if n <= 2 {
		return front
	}

	values := make([][]float64, n)
	for i, t := range front {
		values[i] = study.NormalizedValues(t)
	}
	distance := make([]float64, n)

	nObjectives := len(study.Directions())
	order := make([]int, n)
	for m := 0; m < nObjectives; m++ {
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return values[order[a]][m] < values[order[b]][m] })

		lo, hi := values[order[0]][m], values[order[n-1]][m]
		distance[order[0]] = math.Inf(1)
		distance[order[n-1]] = math.Inf(1)
		if hi == lo {
			continue
		}
		for k := 1; k < n-1; k++ {
			distance[order[k]] += (values[order[k+1]][m] - values[order[k-1]][m]) / (hi - lo)
		}
	}

	sorted := append([]*core.Trial(nil), front...)
	index := make(map[*core.Trial]int, n)
	for i, t := range front {
		index[t] = i
	}
	sort.Slice(sorted, func(a, b int) bool {
		da, db := distance[index[sorted[a]]], distance[index[sorted[b]]]
		if da != db {
			return da > db
		}
		return sorted[a].Number < sorted[b].Number
	})
	return sorted
}

// selectElite truncates a parent population to the target population
// size using non-dominated sorting with crowding-distance tie-breaks.
// Populations at or under the target pass through unchanged.
func (s *Sampler) selectElite(study *core.Study, population []*core.Trial) []*core.Trial {
	if len(population) <= s.populationSize {
		return population
	}

	elite := make([]*core.Trial, 0, s.populationSize)
	for _, front := range s.nonDominatedSort(study, population) {
		if len(elite)+len(front) <= s.populationSize {
			elite = append(elite, front...)
			continue
		}
		remaining := s.populationSize - len(elite)
		byCrowding := crowdingDistanceSort(study, front)
		elite = append(elite, byCrowding[:remaining]...)
		break
	}
	return elite
}
