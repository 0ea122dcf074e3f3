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

// findAutomorphisms enumerates every colour- and adjacency-preserving
// permutation of g's vertices: the permutations alpha such that for all
// u,v, u~v in g iff alpha(u)~alpha(v), and colours[u] == colours[alpha(u)].
//
// This plays the role of the original engine's pre-tabulated
// automorphism table (spec.md 9 "automorphism tables pre-computed"): the
// original ships a literal array compiled ahead of time, generated by an
// offline tool. Since that table is not part of original_source/ (it is
// data, not code), this module derives the same table once, at package
// init, via backtracking search, and caches it for the process lifetime
// -- satisfying the same "read-only after initialisation, any number of
// threads may read concurrently" contract (spec.md 5).
func findAutomorphisms(g facetGraph, colours []int) [][]int {
	n := len(g.adjacency)
	adjSet := make([]map[int]bool, n)
	for v, nbrs := range g.adjacency {
		adjSet[v] = make(map[int]bool, len(nbrs))
		for _, u := range nbrs {
			adjSet[v][u] = true
		}
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = -1
	}
	used := make([]bool, n)

	var out [][]int
	var search func(i int)
	search = func(i int) {
		if i == n {
			cp := append([]int(nil), perm...)
			out = append(out, cp)
			return
		}
		for cand := 0; cand < n; cand++ {
			if used[cand] || colours[cand] != colours[i] {
				continue
			}
			consistent := true
			for j := 0; j < i; j++ {
				if adjSet[i][j] != adjSet[cand][perm[j]] {
					consistent = false
					break
				}
			}
			if !consistent {
				continue
			}
			perm[i] = cand
			used[cand] = true
			search(i + 1)
			used[cand] = false
			perm[i] = -1
		}
	}
	search(0)
	return out
}
