// Package pathorder is the path/order optimizer (spec.md §4.B): given a
// bag of closed loops and open polylines plus a start point, it chooses a
// visit order and, for closed loops, a seam vertex.
package pathorder

import (
	"math"
	"math/rand"

	"slicecore/model"
)

// SeamType selects how a closed loop's start vertex (seam) is chosen.
type SeamType int

const (
	SeamShortest SeamType = iota
	SeamSharpestCorner
	SeamUserSpecified
	SeamRandom
	SeamWeighted
)

// CornerPreference biases SeamSharpestCorner/SeamWeighted toward concave or
// convex corners.
type CornerPreference int

const (
	CornerNone CornerPreference = iota
	CornerInner
	CornerOuter
)

// Config configures one optimizer run.
type Config struct {
	SeamType         SeamType
	CornerPreference CornerPreference
	UserSeamPoint    model.Point
	DetectChains     bool
	Rand             *rand.Rand
}

// sharpnessK is the angle-to-score scaling factor from spec.md §4.B
// ("K≈10000").
const sharpnessK = 10000.0

// chainThreshold is the endpoint-coincidence threshold used by chain
// detection (spec.md §4.B, "5 µm").
const chainThreshold model.Micrometer = 5

// Input is one candidate to order: a closed loop or an open polyline.
type Input struct {
	Path   model.Path
	Closed bool
}

// Ordered is one scheduled visit.
type Ordered struct {
	SourceIndex int
	StartVertex int
	IsClosed    bool
	Backwards   bool
}

// endpoint returns the point the path ends on after being visited starting
// at startVertex (closed: back to the same vertex; open, forwards: last
// point; open, backwards: first point).
func endpoint(in Input, startVertex int, backwards bool) model.Point {
	if in.Closed {
		return in.Path[startVertex]
	}
	if backwards {
		return in.Path[0]
	}
	return in.Path[len(in.Path)-1]
}

// Order runs the greedy nearest-unvisited walk described in spec.md §4.B.
// Ties (equal scores/distances) keep the first candidate encountered,
// preserving the "tolerant" behaviour spec.md §9 asks to keep, including
// for a wholly-empty input list (returns an empty, non-nil-panicking
// result).
func Order(start model.Point, inputs []Input, cfg Config) []Ordered {
	work := make([]Input, len(inputs))
	copy(work, inputs)

	if cfg.DetectChains {
		for i := range work {
			if work[i].Closed || len(work[i].Path) < 2 {
				continue
			}
			p := work[i].Path
			if p[0].Sub(p[len(p)-1]).ShorterThanOrEqual(chainThreshold) {
				work[i].Closed = true
			}
		}
	}

	precomputed := make([]int, len(work))
	hasPrecomputed := make([]bool, len(work))
	for i, in := range work {
		if !in.Closed || len(in.Path) == 0 {
			continue
		}
		switch cfg.SeamType {
		case SeamSharpestCorner, SeamUserSpecified, SeamRandom:
			precomputed[i] = precomputeSeam(in.Path, cfg)
			hasPrecomputed[i] = true
		}
	}

	visited := make([]bool, len(work))
	current := start
	var result []Ordered

	for range work {
		bestIdx := -1
		bestStart := 0
		bestBackwards := false
		bestDist2 := int64(math.MaxInt64)

		for i, in := range work {
			if visited[i] {
				continue
			}
			if len(in.Path) == 0 {
				// Tolerate empty candidates: they sort last by infinite
				// distance but are never skipped upstream (§9 open
				// question: preserve the tolerant behaviour).
				if bestIdx == -1 {
					bestIdx = i
				}
				continue
			}

			if in.Closed {
				var vertex int
				if hasPrecomputed[i] {
					vertex = precomputed[i]
				} else {
					vertex = seamVertex(in.Path, current, cfg)
				}
				d2 := current.Dist2(in.Path[vertex])
				if d2 < bestDist2 {
					bestDist2 = d2
					bestIdx = i
					bestStart = vertex
					bestBackwards = false
				}
				continue
			}

			// Open polyline: choose the nearer endpoint.
			firstD2 := current.Dist2(in.Path[0])
			lastD2 := current.Dist2(in.Path[len(in.Path)-1])
			if firstD2 <= lastD2 {
				if firstD2 < bestDist2 {
					bestDist2 = firstD2
					bestIdx = i
					bestStart = 0
					bestBackwards = false
				}
			} else {
				if lastD2 < bestDist2 {
					bestDist2 = lastD2
					bestIdx = i
					bestStart = len(in.Path) - 1
					bestBackwards = true
				}
			}
		}

		if bestIdx == -1 {
			break
		}

		visited[bestIdx] = true
		result = append(result, Ordered{
			SourceIndex: bestIdx,
			StartVertex: bestStart,
			IsClosed:    work[bestIdx].Closed,
			Backwards:   bestBackwards,
		})
		if len(work[bestIdx].Path) > 0 {
			current = endpoint(work[bestIdx], bestStart, bestBackwards)
		}
	}

	return result
}

// precomputeSeam picks the seam vertex for seam types that don't depend on
// the live travel position (spec.md §4.B step 3).
func precomputeSeam(path model.Path, cfg Config) int {
	switch cfg.SeamType {
	case SeamRandom:
		r := cfg.Rand
		if r == nil {
			r = rand.New(rand.NewSource(1))
		}
		return r.Intn(len(path))
	case SeamUserSpecified:
		return seamVertex(path, cfg.UserSeamPoint, cfg)
	default: // SeamSharpestCorner
		return seamVertex(path, model.Point{}, cfg)
	}
}

// seamVertex evaluates every vertex of path against spec.md §4.B's scoring
// rule and returns the minimum-score one (ties keep the first).
func seamVertex(path model.Path, target model.Point, cfg Config) int {
	n := len(path)
	best := 0
	bestScore := math.Inf(1)

	for i := 0; i < n; i++ {
		prev := path[(i-1+n)%n]
		v := path[i]
		next := path[(i+1)%n]
		concavity := cornerConcavity(prev, v, next)

		var score float64
		switch cfg.SeamType {
		case SeamShortest:
			score = float64(v.Dist(target)) / 1e6
		case SeamSharpestCorner:
			score = -math.Abs(concavity) * sharpnessK
			score += cornerBias(concavity, cfg.CornerPreference)
		case SeamUserSpecified:
			score = float64(v.Dist(target)) / 1e6
			if cornerMismatch(concavity, cfg.CornerPreference) {
				score += 1e6
			}
		case SeamWeighted:
			score = float64(v.Dist(target))/1e6 - math.Abs(concavity)*sharpnessK
			if concavity > 0 {
				score *= 2
			}
		default:
			score = float64(v.Dist(target)) / 1e6
		}

		if score < bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// cornerConcavity maps angle(prev,v,next) to [-1,1], positive meaning
// concave (spec.md §4.B).
func cornerConcavity(prev, v, next model.Point) float64 {
	d1 := v.Sub(prev)
	d2 := next.Sub(v)
	turn := math.Atan2(float64(d1.Cross(d2)), float64(d1.Dot(d2)))
	// A CCW (outer-loop) contour turns left (positive) at convex corners
	// and right (negative) at concave ones; flip sign so positive = concave.
	return -turn / math.Pi
}

func cornerBias(concavity float64, pref CornerPreference) float64 {
	switch pref {
	case CornerInner:
		if concavity > 0 {
			return -sharpnessK / 10
		}
	case CornerOuter:
		if concavity < 0 {
			return -sharpnessK / 10
		}
	}
	return 0
}

func cornerMismatch(concavity float64, pref CornerPreference) bool {
	switch pref {
	case CornerInner:
		return concavity <= 0
	case CornerOuter:
		return concavity >= 0
	}
	return false
}
