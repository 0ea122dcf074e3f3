// Copyright 2022  Il Sub Bang
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ptm

// facet is a single triangular face of a convex hull: three vertex
// indices into the original point slice, wound counter-clockwise as
// seen from outside, plus the outward-pointing unit plane normal.
type facet struct {
	v      [3]int
	normal Vec3d
}

// convexHull is the output of hull construction (spec.md 4.4): the facet
// list, the overall barycentre of the input points, and an ok flag the
// matcher uses to short-circuit on degenerate input.
type convexHull struct {
	facets     []facet
	barycentre Vec3d
	ok         bool
}

// buildConvexHull computes the incremental 3-D convex hull of points.
// Degenerate input (coplanar or collinear) yields ok=false and
// ErrHullDegenerate, per spec.md 4.4.
func buildConvexHull(points []Vec3d) (convexHull, error) {
	n := len(points)
	if n < 4 {
		return convexHull{}, ErrHullDegenerate
	}

	barycentre := Vec3d{}
	for _, p := range points {
		barycentre = barycentre.add(p)
	}
	barycentre = barycentre.scale(1 / float64(n))

	i0, i1, i2, i3, ok := initialTetrahedron(points)
	if !ok {
		return convexHull{}, ErrHullDegenerate
	}

	// Facets are oriented against the initial tetrahedron's centroid,
	// which stays strictly inside every later hull; the overall
	// barycentre can lie on or outside a facet plane of a partial hull.
	interior := points[i0].add(points[i1]).add(points[i2]).add(points[i3]).scale(0.25)

	used := map[int]bool{i0: true, i1: true, i2: true, i3: true}
	facets := make([]facet, 0, maxFacets)
	facets = append(facets,
		orientFacet(points, interior, i0, i1, i2),
		orientFacet(points, interior, i0, i1, i3),
		orientFacet(points, interior, i0, i2, i3),
		orientFacet(points, interior, i1, i2, i3),
	)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		facets = insertHullPoint(points, interior, facets, i)
	}

	if len(facets) != 2*n-4 {
		return convexHull{}, ErrHullDegenerate
	}

	return convexHull{facets: facets, barycentre: barycentre, ok: true}, nil
}

// orientFacet builds the facet (a,b,c) and flips its winding if needed
// so the plane normal points away from barycentre.
func orientFacet(points []Vec3d, barycentre Vec3d, a, b, c int) facet {
	pa, pb, pc := points[a], points[b], points[c]
	normal := pb.sub(pa).cross(pc.sub(pa))
	centroid := pa.add(pb).add(pc).scale(1.0 / 3)
	if normal.dot(centroid.sub(barycentre)) < 0 {
		b, c = c, b
		pb, pc = pc, pb
		normal = pb.sub(pa).cross(pc.sub(pa))
	}
	return facet{v: [3]int{a, b, c}, normal: normal.normalized()}
}

// insertHullPoint adds point index p to the hull described by facets,
// removing facets visible from p and closing the resulting horizon with
// new facets through p.
func insertHullPoint(points []Vec3d, barycentre Vec3d, facets []facet, p int) []facet {
	pt := points[p]

	visible := make([]bool, len(facets))
	anyVisible := false
	for i, f := range facets {
		d := pt.sub(points[f.v[0]]).dot(f.normal)
		if d > epsilon {
			visible[i] = true
			anyVisible = true
		}
	}
	if !anyVisible {
		// p lies inside (or on) the current hull; it contributes no new
		// facet. This should not occur for a genuine neighbour shell,
		// but is handled gracefully: the caller's facet-count check
		// will reject the result downstream if it matters.
		return facets
	}

	keptEdges := map[[2]int]bool{}
	for i, f := range facets {
		if visible[i] {
			continue
		}
		keptEdges[[2]int{f.v[0], f.v[1]}] = true
		keptEdges[[2]int{f.v[1], f.v[2]}] = true
		keptEdges[[2]int{f.v[2], f.v[0]}] = true
	}

	var horizon [][2]int
	for i, f := range facets {
		if !visible[i] {
			continue
		}
		edges := [3][2]int{{f.v[0], f.v[1]}, {f.v[1], f.v[2]}, {f.v[2], f.v[0]}}
		for _, e := range edges {
			if keptEdges[[2]int{e[1], e[0]}] {
				horizon = append(horizon, e)
			}
		}
	}

	kept := make([]facet, 0, len(facets))
	for i, f := range facets {
		if !visible[i] {
			kept = append(kept, f)
		}
	}
	for _, e := range horizon {
		kept = append(kept, orientFacet(points, barycentre, p, e[0], e[1]))
	}
	return kept
}

// initialTetrahedron selects four points spanning non-zero volume to
// seed the incremental hull, by the classic farthest-point construction:
// farthest pair, then farthest from that line, then farthest from that
// plane.
func initialTetrahedron(points []Vec3d) (int, int, int, int, bool) {
	n := len(points)
	i0 := 0
	i1 := 1
	best := -1.0
	for i := 1; i < n; i++ {
		if d := _pointSquareDist(points[i0], points[i]); d > best {
			best = d
			i1 = i
		}
	}
	if best < epsilon {
		return 0, 0, 0, 0, false
	}

	i2 := -1
	best = -1.0
	line := points[i1].sub(points[i0])
	for i := 0; i < n; i++ {
		if i == i0 || i == i1 {
			continue
		}
		perp := points[i].sub(points[i0]).cross(line)
		if d := perp.normSq(); d > best {
			best = d
			i2 = i
		}
	}
	if i2 < 0 || best < epsilon {
		return 0, 0, 0, 0, false
	}

	normal := points[i1].sub(points[i0]).cross(points[i2].sub(points[i0]))
	i3 := -1
	best = -1.0
	for i := 0; i < n; i++ {
		if i == i0 || i == i1 || i == i2 {
			continue
		}
		if d := absf(points[i].sub(points[i0]).dot(normal)); d > best {
			best = d
			i3 = i
		}
	}
	if i3 < 0 || best < epsilon {
		return 0, 0, 0, 0, false
	}

	return i0, i1, i2, i3, true
}
