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

// fccFaceSubsets are the three {100}-face-parallel 4-vertex subsets of
// the FCC template, by template vertex index (central excluded):
// indices 1-4 lie in the z=0 plane, 5-8 in y=0, 9-12 in x=0, matching
// fccPoints' construction order. Hard-coded to the first three faces of
// the template, per spec.md 9 Open Question (b): this assumes that
// ordering rather than deriving it from the template's own geometry.
var fccFaceSubsets = [][]int{
	{1, 2, 3, 4},
	{5, 6, 7, 8},
	{9, 10, 11, 12},
}

// classifyAlloy inspects species under the matched FCC mapping (template
// index -> input index) and assigns a chemically-ordered sub-type
// (spec.md 4.9). mapping must have exactly fccAlloyVertices entries;
// callers only invoke this for a MatchFCC result.
func classifyAlloy(mapping []int, species []int32) AlloyType {
	if len(mapping) != fccAlloyVertices || len(species) == 0 {
		return AlloyNone
	}
	at := func(i int) int32 { return species[mapping[i]] }

	central := at(0)
	counts := map[int32]int{}
	for i := 1; i < fccAlloyVertices; i++ {
		s := at(i)
		if s != central {
			counts[s]++
		}
	}
	if len(counts) == 0 {
		return AlloyPure
	}
	if len(counts) != 1 {
		return AlloyNone
	}

	var b int32
	var n int
	for s, c := range counts {
		b, n = s, c
	}

	subsetAll := func(species int32) bool {
		for _, subset := range fccFaceSubsets {
			all := true
			for _, idx := range subset {
				if at(idx) != species {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
		return false
	}

	switch n {
	case 12:
		return AlloyL12Au
	case 4:
		if subsetAll(b) {
			return AlloyL12Cu
		}
		return AlloyNone
	case 8:
		if subsetAll(central) {
			return AlloyL10
		}
		return AlloyNone
	default:
		return AlloyNone
	}
}
