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
	"testing"

	"github.com/stretchr/testify/require"
)

func findTemplate(t MatchType) *template {
	for _, tmpl := range templateLibrary {
		if tmpl.matchType == t {
			return tmpl
		}
	}
	return nil
}

func TestComputeDeformationGradientIdentityForUndeformedInput(t *testing.T) {
	for _, mt := range []MatchType{MatchSC, MatchFCC, MatchBCC, MatchICO, MatchHCP} {
		tmpl := findTemplate(mt)
		mapping := identityMapping(len(tmpl.variants[0].points))
		res := computeDeformationGradient(tmpl, 0, tmpl.variants[0].points, mapping)
		require.InDelta(t, 0, res.fRes, 1e-7, "matchType=%s", mt)
		require.True(t, res.hasPolar, "matchType=%s: expected a polar decomposition", mt)
		require.InDelta(t, 0, res.f.add(identity3().scale(-1)).frobeniusNormSq(), 1e-12, "matchType=%s: F != I", mt)
	}
}

func TestPolarDecompositionRecoversF(t *testing.T) {
	f := mat3{1.1, 0.05, 0, -0.02, 0.95, 0.01, 0, 0, 1.02}
	u, p, ok := polarDecomposition(f)
	if !ok {
		t.Fatalf("polarDecomposition failed on a well-conditioned matrix")
	}
	recon := u.mul(p)
	diff := recon.add(f.scale(-1))
	if diff.frobeniusNormSq() > 1e-12 {
		t.Errorf("U*P = %+v, want F = %+v", recon, f)
	}
}
