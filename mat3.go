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

// mat3 is a 3x3 matrix stored in row-major order. It backs the inner
// product matrix M (QCP step 3), the deformation gradient F, and the
// polar-decomposition factors U and P.
type mat3 struct {
	m00, m01, m02 float64
	m10, m11, m12 float64
	m20, m21, m22 float64
}

func (a mat3) add(b mat3) mat3 {
	return mat3{
		a.m00 + b.m00, a.m01 + b.m01, a.m02 + b.m02,
		a.m10 + b.m10, a.m11 + b.m11, a.m12 + b.m12,
		a.m20 + b.m20, a.m21 + b.m21, a.m22 + b.m22,
	}
}

func (a mat3) scale(s float64) mat3 {
	return mat3{
		a.m00 * s, a.m01 * s, a.m02 * s,
		a.m10 * s, a.m11 * s, a.m12 * s,
		a.m20 * s, a.m21 * s, a.m22 * s,
	}
}

// mul returns a*b.
func (a mat3) mul(b mat3) mat3 {
	return mat3{
		a.m00*b.m00 + a.m01*b.m10 + a.m02*b.m20,
		a.m00*b.m01 + a.m01*b.m11 + a.m02*b.m21,
		a.m00*b.m02 + a.m01*b.m12 + a.m02*b.m22,

		a.m10*b.m00 + a.m11*b.m10 + a.m12*b.m20,
		a.m10*b.m01 + a.m11*b.m11 + a.m12*b.m21,
		a.m10*b.m02 + a.m11*b.m12 + a.m12*b.m22,

		a.m20*b.m00 + a.m21*b.m10 + a.m22*b.m20,
		a.m20*b.m01 + a.m21*b.m11 + a.m22*b.m21,
		a.m20*b.m02 + a.m21*b.m12 + a.m22*b.m22,
	}
}

// apply returns a*v.
func (a mat3) apply(v Vec3d) Vec3d {
	return Vec3d{
		a.m00*v.X + a.m01*v.Y + a.m02*v.Z,
		a.m10*v.X + a.m11*v.Y + a.m12*v.Z,
		a.m20*v.X + a.m21*v.Y + a.m22*v.Z,
	}
}

// transpose returns a^T.
func (a mat3) transpose() mat3 {
	return mat3{
		a.m00, a.m10, a.m20,
		a.m01, a.m11, a.m21,
		a.m02, a.m12, a.m22,
	}
}

// trace returns the sum of the diagonal elements.
func (a mat3) trace() float64 {
	return a.m00 + a.m11 + a.m22
}

func identity3() mat3 {
	return mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// det returns the determinant of a.
func (a mat3) det() float64 {
	return a.m00*(a.m11*a.m22-a.m12*a.m21) -
		a.m01*(a.m10*a.m22-a.m12*a.m20) +
		a.m02*(a.m10*a.m21-a.m11*a.m20)
}

// frobeniusNormSq returns the squared Frobenius norm of a.
func (a mat3) frobeniusNormSq() float64 {
	return a.m00*a.m00 + a.m01*a.m01 + a.m02*a.m02 +
		a.m10*a.m10 + a.m11*a.m11 + a.m12*a.m12 +
		a.m20*a.m20 + a.m21*a.m21 + a.m22*a.m22
}

// inverse returns a^-1 via the adjugate/determinant formula, and false
// when a is singular (determinant within epsilon of zero).
func (a mat3) inverse() (mat3, bool) {
	det := a.det()
	if absf(det) < epsilon {
		return mat3{}, false
	}
	invDet := 1 / det
	return mat3{
		(a.m11*a.m22 - a.m12*a.m21) * invDet,
		(a.m02*a.m21 - a.m01*a.m22) * invDet,
		(a.m01*a.m12 - a.m02*a.m11) * invDet,

		(a.m12*a.m20 - a.m10*a.m22) * invDet,
		(a.m00*a.m22 - a.m02*a.m20) * invDet,
		(a.m02*a.m10 - a.m00*a.m12) * invDet,

		(a.m10*a.m21 - a.m11*a.m20) * invDet,
		(a.m01*a.m20 - a.m00*a.m21) * invDet,
		(a.m00*a.m11 - a.m01*a.m10) * invDet,
	}, true
}

// array returns a's entries in row-major order, the output convention
// of Index for F, U, and P.
func (a mat3) array() [9]float64 {
	return [9]float64{a.m00, a.m01, a.m02, a.m10, a.m11, a.m12, a.m20, a.m21, a.m22}
}

// row returns the i-th row (0-indexed) as a vector.
func (a mat3) row(i int) Vec3d {
	switch i {
	case 0:
		return Vec3d{a.m00, a.m01, a.m02}
	case 1:
		return Vec3d{a.m10, a.m11, a.m12}
	default:
		return Vec3d{a.m20, a.m21, a.m22}
	}
}
