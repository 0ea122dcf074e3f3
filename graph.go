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
	"hash/fnv"
	"sort"
)

// facetGraph is the facet-adjacency graph of a convex hull (spec.md 4.5):
// for each vertex, the sorted, de-duplicated list of vertices it shares a
// facet edge with.
type facetGraph struct {
	adjacency [][]int
	degree    []int
}

// buildFacetGraph derives vertex degrees and adjacency from a hull's
// facet list.
func buildFacetGraph(facets []facet, numVertices int) facetGraph {
	seen := make([]map[int]bool, numVertices)
	for i := range seen {
		seen[i] = map[int]bool{}
	}
	addEdge := func(a, b int) {
		if a != b {
			seen[a][b] = true
			seen[b][a] = true
		}
	}
	for _, f := range facets {
		addEdge(f.v[0], f.v[1])
		addEdge(f.v[1], f.v[2])
		addEdge(f.v[2], f.v[0])
	}

	g := facetGraph{adjacency: make([][]int, numVertices), degree: make([]int, numVertices)}
	for v := 0; v < numVertices; v++ {
		nbrs := make([]int, 0, len(seen[v]))
		for u := range seen[v] {
			nbrs = append(nbrs, u)
		}
		sort.Ints(nbrs)
		g.adjacency[v] = nbrs
		g.degree[v] = len(nbrs)
	}
	return g
}

// maxDegree returns the largest vertex degree in the graph.
func (g facetGraph) maxDegree() int {
	m := 0
	for _, d := range g.degree {
		if d > m {
			m = d
		}
	}
	return m
}

// canonicalForm computes the canonical vertex relabelling of a
// vertex-coloured undirected graph, plus its edge code and 64-bit hash
// (spec.md 4.5). colours partitions vertices into classes that may never
// be merged by the relabelling (species class for coloured matching).
//
// The algorithm is individualisation-refinement: iterative colour
// refinement by (colour, multiset of neighbour colours) until stable,
// then, for any colour class left with more than one vertex, a
// backtracking search individualises one vertex at a time and keeps the
// lexicographically smallest resulting edge code across the full
// refinement tree. This is a true isomorphism invariant: two coloured
// graphs with the same structure always produce the same canonical form,
// which is the property spec.md 4.5 requires ("two graphs with distinct
// canonical forms never match").
//
// Highly symmetric, uniformly-coloured graphs can widen the search tree;
// this has not been a problem in practice for the template sizes here
// (n <= 18), but no hard iteration cap is enforced.
func canonicalForm(g facetGraph, colours []int) (labelling []int, edgeCode []byte, hash uint64) {
	initial := refineColours(g, colours)

	best := canonicalSearch(g, initial, nil)
	edgeCode = edgeCodeFor(g, best)

	h := fnv.New64a()
	h.Write(edgeCode)
	return best, edgeCode, h.Sum64()
}

// refineColours runs 1-WL style colour refinement to a fixed point,
// returning a colour assignment as a slice of class indices (not
// necessarily canonical order yet).
func refineColours(g facetGraph, colours []int) []int {
	n := len(g.adjacency)
	cur := append([]int(nil), colours...)

	for {
		type sig struct {
			colour int
			nbrs   string
		}
		sigs := make([]sig, n)
		for v := 0; v < n; v++ {
			nbrColours := make([]int, len(g.adjacency[v]))
			for i, u := range g.adjacency[v] {
				nbrColours[i] = cur[u]
			}
			sort.Ints(nbrColours)
			sigs[v] = sig{colour: cur[v], nbrs: encodeInts(nbrColours)}
		}

		uniq := map[sig]int{}
		keys := make([]sig, 0, n)
		for _, s := range sigs {
			if _, ok := uniq[s]; !ok {
				uniq[s] = 0
				keys = append(keys, s)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].colour != keys[j].colour {
				return keys[i].colour < keys[j].colour
			}
			return keys[i].nbrs < keys[j].nbrs
		})
		for i, k := range keys {
			uniq[k] = i
		}

		next := make([]int, n)
		for v := 0; v < n; v++ {
			next[v] = uniq[sigs[v]]
		}
		// Refinement only ever splits classes, never merges them, so an
		// unchanged class count means the partition has reached its
		// fixed point.
		stable := classCounts(cur) == len(keys)
		cur = next
		if stable {
			break
		}
	}
	return cur
}

func classCounts(colours []int) int {
	seen := map[int]bool{}
	for _, c := range colours {
		seen[c] = true
	}
	return len(seen)
}

func encodeInts(xs []int) string {
	b := make([]byte, 0, len(xs)*4)
	for _, x := range xs {
		b = append(b, byte(x>>24), byte(x>>16), byte(x>>8), byte(x))
	}
	return string(b)
}

// canonicalSearch performs the individualisation-refinement backtrack
// described on canonicalForm, returning the lexicographically smallest
// labelling (vertex index -> canonical position) found.
func canonicalSearch(g facetGraph, colours []int, best []int) []int {
	n := len(g.adjacency)
	classes := groupByColour(colours)

	allSingleton := true
	for _, cls := range classes {
		if len(cls) > 1 {
			allSingleton = false
			break
		}
	}

	if allSingleton {
		labelling := make([]int, n)
		for pos, cls := range classes {
			labelling[cls[0]] = pos
		}
		if best == nil || lessEdgeCode(g, labelling, best) {
			return labelling
		}
		return best
	}

	for _, cls := range classes {
		if len(cls) <= 1 {
			continue
		}
		for _, v := range cls {
			individualised := append([]int(nil), colours...)
			individualised[v] = individualised[v]*n + n // unique, larger than any existing colour
			refined := refineColours(g, individualised)
			best = canonicalSearch(g, refined, best)
		}
		break
	}
	return best
}

// groupByColour returns, for each distinct colour in ascending order, the
// sorted list of vertices carrying it.
func groupByColour(colours []int) [][]int {
	groups := map[int][]int{}
	for v, c := range colours {
		groups[c] = append(groups[c], v)
	}
	keys := make([]int, 0, len(groups))
	for c := range groups {
		keys = append(keys, c)
	}
	sort.Ints(keys)
	out := make([][]int, len(keys))
	for i, c := range keys {
		sort.Ints(groups[c])
		out[i] = groups[c]
	}
	return out
}

// edgeCodeFor returns the sorted, relabelled edge list of g under
// labelling, flattened into bytes (two bytes per edge endpoint pair).
func edgeCodeFor(g facetGraph, labelling []int) []byte {
	type edge struct{ a, b int }
	edgeSet := map[edge]bool{}
	for v, nbrs := range g.adjacency {
		for _, u := range nbrs {
			a, b := labelling[v], labelling[u]
			if a > b {
				a, b = b, a
			}
			edgeSet[edge{a, b}] = true
		}
	}
	edges := make([]edge, 0, len(edgeSet))
	for e := range edgeSet {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})

	code := make([]byte, 0, 2*len(edges))
	for _, e := range edges {
		code = append(code, byte(e.a), byte(e.b))
	}
	return code
}

// lessEdgeCode reports whether labelling a yields a lexicographically
// smaller edge code than labelling b.
func lessEdgeCode(g facetGraph, a, b []int) bool {
	ca, cb := edgeCodeFor(g, a), edgeCodeFor(g, b)
	if len(ca) != len(cb) {
		return len(ca) < len(cb)
	}
	for i := range ca {
		if ca[i] != cb[i] {
			return ca[i] < cb[i]
		}
	}
	return false
}
