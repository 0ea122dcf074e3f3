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

import (
	"math"
	"sort"
)

// Workspace is the per-thread scratch buffer the matcher needs. It plays
// the role of the original engine's `voronoi_initialize_local` handle:
// reusable vertex/face buffers owned by exactly one calling goroutine for
// the duration of that goroutine's processing session. Sharing a
// Workspace across goroutines is undefined, mirroring spec.md 5.
type Workspace struct {
	planeNormals []Vec3d
	planeOffsets []float64
	planeNbr     []int
	vertices     []Vec3d
	vertexPlanes [][3]int
}

// NewWorkspace allocates a Workspace. Callers should keep one per
// goroutine and reuse it across queries.
func NewWorkspace() *Workspace {
	return &Workspace{
		planeNormals: make([]Vec3d, 0, MaxInputPoints+6),
		planeOffsets: make([]float64, 0, MaxInputPoints+6),
		planeNbr:     make([]int, 0, MaxInputPoints+6),
		vertices:     make([]Vec3d, 0, maxFacets),
		vertexPlanes: make([][3]int, 0, maxFacets),
	}
}

// Close releases the Workspace's buffers. It mirrors
// `voronoi_uninitialize_local`; after Close the Workspace must not be
// reused.
func (ws *Workspace) Close() {
	ws.planeNormals = nil
	ws.planeOffsets = nil
	ws.planeNbr = nil
	ws.vertices = nil
	ws.vertexPlanes = nil
}

// calculateSolidAngle returns the solid angle subtended at the origin by
// the spherical triangle R1,R2,R3 (each assumed unit norm), via the
// L'Huilier/Van Oosterom-Strackee formula (spec.md 4.1).
func calculateSolidAngle(r1, r2, r3 Vec3d) float64 {
	numerator := r1.dot(r2.cross(r3))
	denominator := 1 + r1.dot(r2) + r2.dot(r3) + r3.dot(r1)
	return math.Abs(2 * math.Atan2(numerator, denominator))
}

// defaultVoronoiCellBuilder computes the Voronoi cell of the origin
// against the half-space bisectors induced by points, by direct vertex
// enumeration: every triple of bounding planes (including six large
// axis-aligned box planes to close the cell) is solved for their common
// point, and kept if it lies inside every other half-space. This
// replaces a general-purpose Voronoi library (spec.md 1 treats the cell
// primitive as an external black box); for the bounded N<=18 case here
// it is both simpler and allocation-bounded.
func defaultVoronoiCellBuilder(ws *Workspace, points []Vec3d) ([]voronoiFace, bool) {
	n := len(points)
	if n < 3 {
		return nil, false
	}

	maxNorm := 0.0
	for _, p := range points {
		if ns := p.normSq(); ns > maxNorm {
			maxNorm = ns
		}
	}
	k := 10 * math.Sqrt(maxNorm)
	if k == 0 {
		return nil, false
	}

	ws.planeNormals = ws.planeNormals[:0]
	ws.planeOffsets = ws.planeOffsets[:0]
	ws.planeNbr = ws.planeNbr[:0]

	for i, p := range points {
		ws.planeNormals = append(ws.planeNormals, p)
		ws.planeOffsets = append(ws.planeOffsets, p.normSq()/2)
		ws.planeNbr = append(ws.planeNbr, i)
	}
	// Six bounding-box half-spaces close off the (otherwise unbounded)
	// intersection of bisector half-spaces, matching the original's
	// v->init(-k,k,-k,k,-k,k) call.
	box := []Vec3d{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for _, n := range box {
		ws.planeNormals = append(ws.planeNormals, n)
		ws.planeOffsets = append(ws.planeOffsets, k)
		ws.planeNbr = append(ws.planeNbr, -1)
	}

	numPlanes := len(ws.planeNormals)
	ws.vertices = ws.vertices[:0]
	ws.vertexPlanes = ws.vertexPlanes[:0]

	for i := 0; i < numPlanes; i++ {
		for j := i + 1; j < numPlanes; j++ {
			for l := j + 1; l < numPlanes; l++ {
				v, ok := intersectThreePlanes(
					ws.planeNormals[i], ws.planeOffsets[i],
					ws.planeNormals[j], ws.planeOffsets[j],
					ws.planeNormals[l], ws.planeOffsets[l],
				)
				if !ok {
					continue
				}
				if !insideAllHalfSpaces(v, ws.planeNormals, ws.planeOffsets, i, j, l) {
					continue
				}
				ws.vertices = append(ws.vertices, v)
				ws.vertexPlanes = append(ws.vertexPlanes, [3]int{i, j, l})
			}
		}
	}

	if len(ws.vertices) < 4 {
		return nil, false
	}

	faces := make([]voronoiFace, 0, n)
	for planeIdx := 0; planeIdx < numPlanes; planeIdx++ {
		var faceVerts []Vec3d
		for vi, pl := range ws.vertexPlanes {
			if pl[0] == planeIdx || pl[1] == planeIdx || pl[2] == planeIdx {
				faceVerts = append(faceVerts, ws.vertices[vi])
			}
		}
		if len(faceVerts) < 3 {
			continue
		}
		orderFaceVertices(faceVerts, ws.planeNormals[planeIdx])
		for i := range faceVerts {
			faceVerts[i] = faceVerts[i].normalized()
		}
		faces = append(faces, voronoiFace{neighbour: ws.planeNbr[planeIdx], vertices: faceVerts})
	}

	return faces, true
}

// intersectThreePlanes solves for the point x satisfying x.ni = di for
// i in {1,2,3} via Cramer's rule, returning ok=false when the planes are
// (near-)parallel.
func intersectThreePlanes(n1 Vec3d, d1 float64, n2 Vec3d, d2 float64, n3 Vec3d, d3 float64) (Vec3d, bool) {
	det := n1.dot(n2.cross(n3))
	if absf(det) < epsilon {
		return Vec3d{}, false
	}
	// Cramer's rule: x = (d1*(n2 x n3) + d2*(n3 x n1) + d3*(n1 x n2)) / det
	num := n2.cross(n3).scale(d1).
		add(n3.cross(n1).scale(d2)).
		add(n1.cross(n2).scale(d3))
	return num.scale(1 / det), true
}

// insideAllHalfSpaces reports whether v satisfies v.n <= d (within
// epsilon) for every plane except the three that generated v.
func insideAllHalfSpaces(v Vec3d, normals []Vec3d, offsets []float64, skip ...int) bool {
	for m := range normals {
		if m == skip[0] || m == skip[1] || m == skip[2] {
			continue
		}
		if v.dot(normals[m])-offsets[m] > epsilon {
			return false
		}
	}
	return true
}

// orderFaceVertices sorts a convex polygon's vertices into winding order
// around their centroid, projected into the plane with normal n. This is
// required before fan-triangulating the face for the solid-angle sum.
func orderFaceVertices(verts []Vec3d, n Vec3d) {
	centroid := Vec3d{}
	for _, v := range verts {
		centroid = centroid.add(v)
	}
	centroid = centroid.scale(1 / float64(len(verts)))

	u := verts[0].sub(centroid)
	if u.normSq() < epsilon {
		u = arbitraryPerpendicular(n)
	}
	u = u.normalized()
	w := n.normalized().cross(u)

	angle := make([]float64, len(verts))
	for i, v := range verts {
		d := v.sub(centroid)
		angle[i] = math.Atan2(d.dot(w), d.dot(u))
	}
	sort.Sort(&byAngle{verts: verts, angle: angle})
}

type byAngle struct {
	verts []Vec3d
	angle []float64
}

func (b *byAngle) Len() int      { return len(b.verts) }
func (b *byAngle) Swap(i, j int) { b.verts[i], b.verts[j] = b.verts[j], b.verts[i]; b.angle[i], b.angle[j] = b.angle[j], b.angle[i] }
func (b *byAngle) Less(i, j int) bool { return b.angle[i] < b.angle[j] }

func arbitraryPerpendicular(n Vec3d) Vec3d {
	if absf(n.X) < 0.9 {
		return Vec3d{1, 0, 0}.cross(n)
	}
	return Vec3d{0, 1, 0}.cross(n)
}

// sortHelper carries a candidate neighbour's face area and squared
// distance for the ordering comparator (spec.md 4.1).
type sortHelper struct {
	area     float64
	distSq   float64
	ordering int
}

// lessSortHelper implements "decreasing area, ties broken by increasing
// squared distance", exactly mirroring the original's sorthelper_compare.
func lessSortHelper(a, b sortHelper) bool {
	if a.area > b.area {
		return true
	}
	if a.area < b.area {
		return false
	}
	return a.distSq < b.distSq
}

// orderNeighbours implements spec.md 4.1: it builds the Voronoi cell of
// the origin against points, computes each surviving face's solid angle,
// and returns a permutation of indices into points sorted by decreasing
// face solid angle (ties broken by increasing squared distance; a point
// with no face sorts last with area 0).
//
// minNeighbours is the smallest neighbour count any candidate template
// the caller is about to try needs; orderNeighbours returns
// ErrInsufficientNeighbours when fewer points than that survive Voronoi
// clipping with a real face, since no candidate could possibly match
// (spec.md 4.1 "fails if fewer than the template minimum survive").
// Pass 0 to skip the check (e.g. when the caller enforces its own
// minimum beforehand).
func orderNeighbours(ws *Workspace, points []Vec3d, builder VoronoiCellBuilder, minNeighbours int) ([]int, error) {
	n := len(points)
	if builder == nil {
		builder = defaultVoronoiCellBuilder
	}

	faces, ok := builder(ws, points)
	areas := make([]float64, n)
	surviving := 0
	if ok {
		for _, f := range faces {
			if f.neighbour < 0 || len(f.vertices) < 3 {
				continue
			}
			total := 0.0
			u, v := f.vertices[0], f.vertices[1]
			for i := 2; i < len(f.vertices); i++ {
				w := f.vertices[i]
				total += calculateSolidAngle(u, v, w)
				v = w
			}
			areas[f.neighbour] = total
			surviving++
		}
	}
	if surviving < minNeighbours {
		return nil, ErrInsufficientNeighbours
	}

	helpers := make([]sortHelper, n)
	for i, p := range points {
		helpers[i] = sortHelper{area: areas[i], distSq: p.normSq(), ordering: i}
	}
	sort.SliceStable(helpers, func(i, j int) bool { return lessSortHelper(helpers[i], helpers[j]) })

	order := make([]int, n)
	for i, h := range helpers {
		order[i] = h.ordering
	}
	return order, nil
}
