package geometry

import "sort"

// ConvexHull computes the convex hull of lon-first positions using the
// monotone chain algorithm. The result is in counter-clockwise order
// without the closing point. Degenerate inputs (fewer than 3 distinct
// points) return the distinct points themselves.
func ConvexHull(pts [][]float64) [][]float64 {
	uniq := dedupe(pts)
	if len(uniq) < 3 {
		return uniq
	}

	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i][0] != uniq[j][0] {
			return uniq[i][0] < uniq[j][0]
		}
		return uniq[i][1] < uniq[j][1]
	})

	var lower [][]float64
	for _, p := range uniq {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper [][]float64
	for i := len(uniq) - 1; i >= 0; i-- {
		p := uniq[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Last point of each chain is the first point of the other.
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// cross returns the z component of (b-a) x (c-a).
// Positive means a->b->c turns counter-clockwise.
func cross(a, b, c []float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func dedupe(pts [][]float64) [][]float64 {
	seen := make(map[[2]float64]struct{}, len(pts))
	out := make([][]float64, 0, len(pts))
	for _, p := range pts {
		key := [2]float64{p[0], p[1]}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
