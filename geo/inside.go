package geo

import "slicecore/model"

// PointInsidePath reports whether p lies inside the closed loop path using
// even-odd ray casting. The loop is not required to be explicitly closed.
func PointInsidePath(path model.Path, p model.Point) bool {
	inside := false
	n := len(path)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := path[i], path[j]
		if (pi.Y() > p.Y()) != (pj.Y() > p.Y()) {
			xIntersect := float64(pj.X()-pi.X())*float64(p.Y()-pi.Y())/float64(pj.Y()-pi.Y()) + float64(pi.X())
			if float64(p.X()) < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// PointInside reports whether p is inside polygons under even-odd
// semantics: inside the outer loop(s) and outside any hole.
func PointInside(polygons model.Paths, p model.Point) bool {
	inside := false
	for _, path := range polygons {
		if PointInsidePath(path, p) {
			inside = !inside
		}
	}
	return inside
}

// PartContaining returns the index of the first SliceLayerPart whose
// outline contains p, or -1 if none does.
func PartContaining(parts []model.SliceLayerPart, p model.Point) int {
	for i, part := range parts {
		if PointInside(part.Outline, p) {
			return i
		}
	}
	return -1
}
