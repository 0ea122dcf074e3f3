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

import "math"

// quaternion is a unit quaternion (w, x, y, z) representing a rotation.
type quaternion struct {
	w, x, y, z float64
}

func (q quaternion) norm() float64 {
	return math.Sqrt(q.w*q.w + q.x*q.x + q.y*q.y + q.z*q.z)
}

// normalized returns q scaled to unit norm.
func (q quaternion) normalized() quaternion {
	n := q.norm()
	if n == 0 {
		return quaternion{1, 0, 0, 0}
	}
	return quaternion{q.w / n, q.x / n, q.y / n, q.z / n}
}

// dot returns the dot product of two quaternions, treated as 4-vectors.
func (q quaternion) dot(o quaternion) float64 {
	return q.w*o.w + q.x*o.x + q.y*o.y + q.z*o.z
}

// negate flips the sign of every component. q and -q represent the same
// rotation; callers use this to canonicalise sign.
func (q quaternion) negate() quaternion {
	return quaternion{-q.w, -q.x, -q.y, -q.z}
}

// scale multiplies every component by s.
func (q quaternion) scale(s float64) quaternion {
	return quaternion{q.w * s, q.x * s, q.y * s, q.z * s}
}

// conjugate returns q's conjugate, the inverse rotation for a unit
// quaternion.
func (q quaternion) conjugate() quaternion {
	return quaternion{q.w, -q.x, -q.y, -q.z}
}

// mul returns the Hamilton product q*o.
func (q quaternion) mul(o quaternion) quaternion {
	return quaternion{
		w: q.w*o.w - q.x*o.x - q.y*o.y - q.z*o.z,
		x: q.w*o.x + q.x*o.w + q.y*o.z - q.z*o.y,
		y: q.w*o.y - q.x*o.z + q.y*o.w + q.z*o.x,
		z: q.w*o.z + q.x*o.y - q.y*o.x + q.z*o.w,
	}
}

// rotationMatrix returns the 3x3 proper-rotation matrix corresponding to q.
// q need not be normalised; the result is only a rotation matrix when it is.
func (q quaternion) rotationMatrix() mat3 {
	w, x, y, z := q.w, q.x, q.y, q.z
	return mat3{
		m00: w*w + x*x - y*y - z*z, m01: 2 * (x*y - w*z), m02: 2 * (x*z + w*y),
		m10: 2 * (x*y + w*z), m11: w*w - x*x + y*y - z*z, m12: 2 * (y*z - w*x),
		m20: 2 * (x*z - w*y), m21: 2 * (y*z + w*x), m22: w*w - x*x - y*y + z*z,
	}
}

// array returns q as [w, x, y, z], the output convention of Index.
func (q quaternion) array() [4]float64 {
	return [4]float64{q.w, q.x, q.y, q.z}
}
