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

const (
	// MaxInputPoints bounds the central atom plus its candidate neighbours.
	// Index rejects larger inputs, and the Workspace's Voronoi buffers and
	// the hull's facet list are pre-sized from it; the matcher still
	// allocates its per-query slices and maps.
	MaxInputPoints = 19

	// MaxNeighbours is MaxInputPoints minus the central atom.
	MaxNeighbours = MaxInputPoints - 1

	// maxFacets bounds the triangular facet list of the convex hull of
	// MaxInputPoints points (2V-4 for a simplicial polyhedron).
	maxFacets = 2*MaxInputPoints - 4

	// maxEdges bounds the facet-adjacency edge list (3 per facet, each
	// shared by two facets).
	maxEdges = 3 * maxFacets / 2

	// epsilon is the general floating point closeness threshold used to
	// detect degenerate geometry (coplanar/collinear input, zero-area faces).
	epsilon = 1e-10

	// qcpMaxNewtonIterations bounds Newton's method when solving the QCP
	// quartic for its largest eigenvalue.
	qcpMaxNewtonIterations = 50

	// qcpConvergenceFactor scales E0 to obtain the Newton convergence
	// threshold: iteration stops once |delta lambda| < qcpConvergenceFactor*E0.
	qcpConvergenceFactor = 1e-11

	// fccAlloyVertices is the number of vertices (central included) the
	// alloy classifier inspects: 1 central + 12 FCC neighbours.
	fccAlloyVertices = 13
)

// MatchType identifies the structure a neighbourhood was matched against.
type MatchType int

// Structure tags, mirroring the public type constants of the original
// engine (MATCH_SC, MATCH_FCC, ...).
const (
	MatchNone MatchType = iota
	MatchSC
	MatchFCC
	MatchHCP
	MatchICO
	MatchBCC
	MatchDCub
	MatchDHex
	MatchGraphene
)

func (t MatchType) String() string {
	switch t {
	case MatchSC:
		return "sc"
	case MatchFCC:
		return "fcc"
	case MatchHCP:
		return "hcp"
	case MatchICO:
		return "ico"
	case MatchBCC:
		return "bcc"
	case MatchDCub:
		return "dcub"
	case MatchDHex:
		return "dhex"
	case MatchGraphene:
		return "graphene"
	default:
		return "none"
	}
}

// Flags selects which templates a query should attempt to match against.
type Flags uint32

// Individual template flags and the all-enabled mask.
const (
	FlagSC Flags = 1 << iota
	FlagFCC
	FlagHCP
	FlagICO
	FlagBCC
	FlagDCub
	FlagDHex
	FlagGraphene

	FlagAll = FlagSC | FlagFCC | FlagHCP | FlagICO | FlagBCC | FlagDCub | FlagDHex | FlagGraphene
)

// AlloyType identifies the chemically-ordered FCC sub-structure inferred
// from species labels under the matched permutation.
type AlloyType int

// Alloy tags, mirroring the original engine's ALLOY_* constants.
const (
	AlloyNone AlloyType = iota
	AlloyPure
	AlloyL12Cu
	AlloyL12Au
	AlloyL10
)

func (a AlloyType) String() string {
	switch a {
	case AlloyPure:
		return "pure"
	case AlloyL12Cu:
		return "l12-cu"
	case AlloyL12Au:
		return "l12-au"
	case AlloyL10:
		return "l10"
	default:
		return "none"
	}
}
