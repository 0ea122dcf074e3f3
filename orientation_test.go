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

func TestReduceOrientationMaximisesDotAtIdentity(t *testing.T) {
	q := quaternion{w: 0.8, x: 0.3, y: -0.4, z: 0.1}.normalized()
	for _, mt := range []MatchType{MatchSC, MatchFCC, MatchBCC, MatchICO, MatchHCP} {
		reduced, _, defined := reduceOrientation(q, mt, false)
		if !defined {
			t.Fatalf("%s: expected a defined fundamental zone", mt)
		}
		group := symmetryGroup(mt, false)
		bestDot := -1.0
		for _, g := range group {
			if d := absf(reduced.dot(g)); d > bestDot {
				bestDot = d
			}
		}
		if math.Abs(bestDot-absf(reduced.dot(quaternion{w: 1}))) > 1e-9 {
			t.Errorf("%s: identity is not the maximal-dot element of the reduced quaternion (best=%v, at-identity=%v)", mt, bestDot, absf(reduced.dot(quaternion{w: 1})))
		}
	}
}

func TestReduceOrientationUndefinedForGrapheneConventional(t *testing.T) {
	q := quaternion{w: 1}
	_, _, defined := reduceOrientation(q, MatchGraphene, true)
	if defined {
		t.Errorf("graphene conventional orientation should be undefined")
	}
}

func TestCubicRotationsCount(t *testing.T) {
	if got := len(cubicRotations()); got != 24 {
		t.Errorf("len(cubicRotations()) = %d, want 24", got)
	}
	if got := len(tetrahedralRotations()); got != 12 {
		t.Errorf("len(tetrahedralRotations()) = %d, want 12", got)
	}
	if got := len(icosahedralRotations()); got != 120 {
		t.Errorf("len(icosahedralRotations()) = %d, want 120", got)
	}
	if got := len(hcpPrimitiveRotations()); got != 12 {
		t.Errorf("len(hcpPrimitiveRotations()) = %d, want 12", got)
	}
	if got := len(hcpConventionalRotations()); got != 24 {
		t.Errorf("len(hcpConventionalRotations()) = %d, want 24", got)
	}
}

func TestCubicRotationsAreUnitQuaternions(t *testing.T) {
	for _, q := range cubicRotations() {
		if math.Abs(q.norm()-1) > 1e-9 {
			t.Errorf("cubic rotation %+v is not a unit quaternion (norm=%v)", q, q.norm())
		}
	}
}
