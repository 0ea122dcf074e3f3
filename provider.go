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

// This file documents the two external collaborators the matcher calls
// out to (spec.md 1, 6): the host simulation's neighbour-list provider,
// and the Voronoi cell primitive. Both are treated as black boxes by the
// core; this package supplies one concrete, dependency-free
// implementation of each so the library is usable standalone, but
// callers may substitute their own (a production host typically already
// has a faster neighbour list and a Voro++-backed Voronoi cell).

// NeighbourProvider yields up to max candidate neighbours of atom, in the
// atom's local frame, relative to atom's own position. It mirrors the
// C callback `provider(ctx, atom, max, out_indices, out_species, out_pos)`
// of spec.md 6: entries may be returned in arbitrary order. A negative
// count (via the error return) signals failure.
type NeighbourProvider interface {
	Neighbours(atom int, max int) (indices []int, species []int32, positions []Vec3d, err error)
}

// NeighbourProviderFunc adapts a plain function to a NeighbourProvider.
type NeighbourProviderFunc func(atom int, max int) ([]int, []int32, []Vec3d, error)

// Neighbours implements NeighbourProvider.
func (f NeighbourProviderFunc) Neighbours(atom int, max int) ([]int, []int32, []Vec3d, error) {
	return f(atom, max)
}

// voronoiFace is one face of a Voronoi cell: the index (into the input
// point slice) of the neighbour whose half-space bounds this face, and
// the face's vertices projected onto the unit sphere centred at the
// cell's generating point, wound consistently so consecutive vertices
// share an edge.
type voronoiFace struct {
	neighbour int
	vertices  []Vec3d
}

// VoronoiCellBuilder computes the Voronoi cell of the origin against the
// half-spaces induced by points (each point places a bisecting plane
// between the origin and itself), and returns one face per point that
// survives in the cell boundary. ok is false when the construction is
// degenerate (e.g. fewer than 4 independent planes).
//
// This is the "black-box service" of spec.md 1: the core only consumes
// this contract, never a specific Voronoi implementation.
type VoronoiCellBuilder func(ws *Workspace, points []Vec3d) (faces []voronoiFace, ok bool)
