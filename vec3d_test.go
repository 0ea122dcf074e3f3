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

func TestVec3dDotCross(t *testing.T) {
	a := Vec3d{1, 0, 0}
	b := Vec3d{0, 1, 0}
	if got := a.dot(b); got != 0 {
		t.Errorf("dot = %v, want 0", got)
	}
	c := a.cross(b)
	if c != (Vec3d{0, 0, 1}) {
		t.Errorf("cross = %v, want (0,0,1)", c)
	}
}

func TestVec3dNormalized(t *testing.T) {
	v := Vec3d{3, 4, 0}
	n := v.normalized()
	if math.Abs(n.norm()-1) > 1e-12 {
		t.Errorf("norm = %v, want 1", n.norm())
	}
	zero := Vec3d{}.normalized()
	if zero != (Vec3d{}) {
		t.Errorf("normalized zero vector = %v, want zero", zero)
	}
}

func TestVec3dOuter(t *testing.T) {
	a := Vec3d{1, 2, 3}
	b := Vec3d{4, 5, 6}
	m := a.outer(b)
	want := mat3{4, 5, 6, 8, 10, 12, 12, 15, 18}
	if m != want {
		t.Errorf("outer = %+v, want %+v", m, want)
	}
}
