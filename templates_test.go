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
	"testing"
)

func TestTemplateLibraryDistinctHashesAmongEqualSizedStructures(t *testing.T) {
	byN := map[int][]*template{}
	for _, tmpl := range templateLibrary {
		byN[tmpl.n] = append(byN[tmpl.n], tmpl)
	}
	for n, group := range byN {
		if len(group) < 2 {
			continue
		}
		seen := map[uint64]MatchType{}
		for _, tmpl := range group {
			if other, ok := seen[tmpl.canonHash]; ok {
				t.Errorf("n=%d: %s and %s share canonical hash %d", n, tmpl.matchType, other, tmpl.canonHash)
			}
			seen[tmpl.canonHash] = tmpl.matchType
		}
	}
}

func TestTemplateAutomorphismsPreserveAdjacencyAndColour(t *testing.T) {
	for _, tmpl := range templateLibrary {
		if len(tmpl.automorphisms) == 0 {
			t.Errorf("%s: no automorphisms found (identity permutation always qualifies)", tmpl.matchType)
			continue
		}
		n := len(tmpl.graph.adjacency)
		adjSet := make([]map[int]bool, n)
		for v, nbrs := range tmpl.graph.adjacency {
			adjSet[v] = map[int]bool{}
			for _, u := range nbrs {
				adjSet[v][u] = true
			}
		}
		for _, alpha := range tmpl.automorphisms {
			if len(alpha) != n {
				t.Fatalf("%s: automorphism length %d, want %d", tmpl.matchType, len(alpha), n)
			}
			for v := 0; v < n; v++ {
				if tmpl.colours[v] != tmpl.colours[alpha[v]] {
					t.Errorf("%s: automorphism %v does not preserve colour at %d", tmpl.matchType, alpha, v)
				}
				for u := 0; u < n; u++ {
					if adjSet[v][u] != adjSet[alpha[v]][alpha[u]] {
						t.Errorf("%s: automorphism %v breaks adjacency (%d,%d)", tmpl.matchType, alpha, v, u)
					}
				}
			}
		}
	}
}

func TestTemplateIdealPointsNormalised(t *testing.T) {
	for _, tmpl := range templateLibrary {
		v := tmpl.variants[0]
		meanSq := sumNormSq(v.points) / float64(len(v.points))
		if meanSq < 0.999 || meanSq > 1.001 {
			t.Errorf("%s: ideal points mean squared norm = %v, want 1", tmpl.matchType, meanSq)
		}
	}
}

func TestTemplateVariantCounts(t *testing.T) {
	wantTwo := map[MatchType]bool{MatchDCub: true, MatchDHex: true, MatchHCP: true}
	for _, tmpl := range templateLibrary {
		want := 1
		if wantTwo[tmpl.matchType] {
			want = 2
		}
		if len(tmpl.variants) != want {
			t.Errorf("%s: len(variants) = %d, want %d", tmpl.matchType, len(tmpl.variants), want)
		}
	}
}

func TestReconstructMappingIdentityOperatorSelectsPrimitiveVariant(t *testing.T) {
	tmpl := templateForType(t, MatchDCub)
	mapping := identityMapping(len(tmpl.variants[0].points))

	remapped, variantIdx, ok := reconstructMapping(tmpl, quaternion{w: 1}, mapping)
	if !ok {
		t.Fatalf("reconstructMapping failed for the identity operator")
	}
	if variantIdx != 0 {
		t.Errorf("variantIdx = %d, want 0 (primitive) for the identity operator", variantIdx)
	}
	if !isPermutationOf(remapped, mapping) {
		t.Errorf("remapped mapping %v is not a permutation of %v", remapped, mapping)
	}
}

func TestReconstructMappingCosetRepresentativeSelectsConventionalVariant(t *testing.T) {
	for _, mt := range []MatchType{MatchDCub, MatchHCP, MatchDHex} {
		tmpl := templateForType(t, mt)
		g, ok := conventionalCosetRepresentative(mt)
		if !ok {
			t.Fatalf("%s: expected a coset representative", mt)
		}
		mapping := identityMapping(len(tmpl.variants[0].points))

		remapped, variantIdx, ok := reconstructMapping(tmpl, g, mapping)
		if !ok {
			t.Fatalf("%s: reconstructMapping failed for its own coset representative", mt)
		}
		if variantIdx != 1 {
			t.Errorf("%s: variantIdx = %d, want 1 (conventional) for the coset representative", mt, variantIdx)
		}
		if !isPermutationOf(remapped, mapping) {
			t.Errorf("%s: remapped mapping %v is not a permutation of %v", mt, remapped, mapping)
		}
	}
}

func TestInducedPermutationRejectsMismatchedSets(t *testing.T) {
	tmpl := templateForType(t, MatchDCub)
	base := tmpl.variants[0].points
	// An arbitrary rotation with no relation to either variant's point set
	// should not induce a consistent bijection onto it.
	g := quaternion{w: math.Cos(0.37), x: math.Sin(0.37)}
	if _, ok := inducedPermutation(base, base, g.rotationMatrix()); ok {
		t.Errorf("inducedPermutation reported success for an unrelated rotation")
	}
}

func templateForType(t *testing.T, mt MatchType) *template {
	t.Helper()
	for _, tmpl := range templateLibrary {
		if tmpl.matchType == mt {
			return tmpl
		}
	}
	t.Fatalf("no template for %s", mt)
	return nil
}

func isPermutationOf(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int]bool, len(a))
	for _, v := range a {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			return false
		}
	}
	return true
}

func TestBuildShellCounts(t *testing.T) {
	if got := len(dcubPoints()); got != 17 {
		t.Errorf("len(dcubPoints()) = %d, want 17", got)
	}
	if got := len(dhexPoints()); got != 17 {
		t.Errorf("len(dhexPoints()) = %d, want 17", got)
	}
	if got := len(graphenePoints()); got != 10 {
		t.Errorf("len(graphenePoints()) = %d, want 10", got)
	}
}
