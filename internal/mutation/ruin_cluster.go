package mutation

import (
	"sort"

	"routesolver/internal/cluster"
	"routesolver/internal/core"
)

// ClusterRemoval removes whole spatial clusters of jobs found by density
// clustering. A table of (minPts, epsilon) pairs is precomputed per problem
// so each run only picks a pair, jitters epsilon and clusters.
type ClusterRemoval struct {
	problem *core.Problem
	params  []clusterParams
	limit   core.RemovalLimit
}

type clusterParams struct {
	minPts  int
	epsilon float64
}

// NewClusterRemoval precomputes epsilon estimates for cluster sizes in
// [sizeMin, sizeMax). Sizes below 3 are raised to 3.
func NewClusterRemoval(p *core.Problem, sizeMin, sizeMax int, limit core.RemovalLimit) *ClusterRemoval {
	lo := max(sizeMin, 3)
	hi := max(min(sizeMax, len(p.Jobs)), lo+1)
	var params []clusterParams
	for minPts := lo; minPts < hi; minPts++ {
		params = append(params, clusterParams{minPts: minPts, epsilon: estimateEpsilon(p, minPts-1)})
	}
	return &ClusterRemoval{problem: p, params: params, limit: limit}
}

// estimateEpsilon feeds the per-job distance to the nth nearest neighbor,
// averaged across all fleet profiles, into the k-distance knee estimator.
func estimateEpsilon(p *core.Problem, nthNeighbor int) float64 {
	costs := make([]float64, len(p.Jobs))
	for profile := range p.Profiles {
		for j := range p.Jobs {
			ns := p.Neighbors(profile, j)
			if nthNeighbor < len(ns) {
				costs[j] += ns[nthNeighbor].Cost
			}
		}
	}
	for j := range costs {
		costs[j] /= float64(len(p.Profiles))
	}
	return cluster.EstimateEpsilon(costs)
}

func (r *ClusterRemoval) Run(ctx *core.RefinementContext, s *core.Solution) *core.Solution {
	assigned := s.AssignedJobs()
	target := r.limit.Count(len(assigned))
	if target == 0 || len(r.params) == 0 {
		return s
	}
	pick := r.params[ctx.Random.Int(0, len(r.params)-1)]
	eps := ctx.Random.Float(pick.epsilon*0.9, pick.epsilon*1.1)
	profile := ctx.Random.Int(0, len(ctx.Problem.Profiles)-1)

	neighborFn := func(job int, eps float64) []int {
		var out []int
		for _, nb := range r.problem.Neighbors(profile, job) {
			if nb.Cost >= eps {
				break // neighbors are sorted ascending by cost
			}
			out = append(out, nb.Job)
		}
		return out
	}
	clusters := cluster.Clusters(len(r.problem.Jobs), eps, pick.minPts, neighborFn)
	if len(clusters) == 0 {
		return s
	}
	ctx.Random.Shuffle(len(clusters), func(i, j int) { clusters[i], clusters[j] = clusters[j], clusters[i] })
	sort.SliceStable(clusters, func(a, b int) bool { return len(clusters[a]) < len(clusters[b]) })

	inSolution := map[int]bool{}
	for _, j := range assigned {
		inSolution[j] = true
	}
	var victims []int
	for _, c := range clusters {
		for _, j := range c {
			if len(victims) >= target {
				break // overshoot policy: truncate the last cluster
			}
			if inSolution[j] {
				victims = append(victims, j)
			}
		}
		if len(victims) >= target {
			break
		}
	}
	s.Remove(victims)
	return s
}
