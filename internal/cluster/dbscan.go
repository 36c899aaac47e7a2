package cluster

// NeighborhoodFn returns the points within eps of the given point, excluding
// the point itself.
type NeighborhoodFn func(point int, eps float64) []int

// Clusters groups points [0, n) into density clusters. A point is a core
// point when it has at least minPts-1 neighbors within eps; clusters grow by
// absorbing every point reachable from a core point. Points reachable from
// no core point stay unclustered. Each returned cluster is non-empty and the
// clusters are disjoint.
func Clusters(n int, eps float64, minPts int, neighbors NeighborhoodFn) [][]int {
	const (
		unvisited = 0
		noise     = 1
		clustered = 2
	)
	state := make([]int, n)
	var out [][]int
	for p := 0; p < n; p++ {
		if state[p] != unvisited {
			continue
		}
		ns := neighbors(p, eps)
		if len(ns) < minPts-1 {
			state[p] = noise
			continue
		}
		cluster := []int{p}
		state[p] = clustered
		queue := append([]int(nil), ns...)
		for len(queue) > 0 {
			q := queue[0]
			queue = queue[1:]
			if state[q] == clustered {
				continue
			}
			wasNoise := state[q] == noise
			state[q] = clustered
			cluster = append(cluster, q)
			if wasNoise {
				continue // border point: absorbed but not expanded
			}
			qs := neighbors(q, eps)
			if len(qs) >= minPts-1 {
				queue = append(queue, qs...)
			}
		}
		out = append(out, cluster)
	}
	return out
}
