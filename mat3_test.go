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

import "testing"

func closeMat3(a, b mat3, tol float64) bool {
	diff := a.add(b.scale(-1))
	return diff.frobeniusNormSq() < tol*tol
}

func TestMat3Inverse(t *testing.T) {
	a := mat3{2, 0, 0, 0, 3, 0, 0, 0, 4}
	inv, ok := a.inverse()
	if !ok {
		t.Fatalf("inverse() failed for a non-singular matrix")
	}
	if !closeMat3(a.mul(inv), identity3(), 1e-9) {
		t.Errorf("a*inv = %+v, want identity", a.mul(inv))
	}
}

func TestMat3InverseSingular(t *testing.T) {
	a := mat3{}
	if _, ok := a.inverse(); ok {
		t.Errorf("inverse() of the zero matrix reported ok")
	}
}

func TestMat3ApplyIdentity(t *testing.T) {
	v := Vec3d{1, 2, 3}
	if got := identity3().apply(v); got != v {
		t.Errorf("identity3().apply(v) = %v, want %v", got, v)
	}
}
