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

	"gonum.org/v1/gonum/mat"
)

// deformationResult is the output of the deformation-gradient step
// (spec.md 4.8): the gradient itself, its residual, and the optional
// one-sided polar factors.
type deformationResult struct {
	f        mat3
	fRes     float64
	u, p     mat3
	hasPolar bool
}

// computeDeformationGradient solves F = sum_i p'_mapping[i] (x) M+[:,i]
// for the variant'th point set of tmpl, where M+ is its pre-computed
// Penrose pseudo-inverse (spec.md 4.8). For an exact, undeformed
// template this reduces to F = I: M+ * R = I for the template's own
// point matrix R by the defining property of the pseudo-inverse, so
// substituting p' = r_i recovers the identity exactly (spec.md 8,
// invariant 7).
func computeDeformationGradient(tmpl *template, variant int, normalized []Vec3d, mapping []int) deformationResult {
	v := tmpl.variants[variant]
	n := len(v.points)

	f := mat3{}
	for i := 0; i < n; i++ {
		col := Vec3d{X: v.penrose[0][i], Y: v.penrose[1][i], Z: v.penrose[2][i]}
		f = f.add(normalized[mapping[i]].outer(col))
	}

	// Graphene is intrinsically two-dimensional: the ideal point matrix
	// has no out-of-plane extent, so the pseudo-inverse leaves the
	// z-column of F underdetermined. It is forced to identity so F
	// stays invertible (spec.md 9 "Graphene z-correction").
	if tmpl.matchType == MatchGraphene {
		f.m02, f.m12 = 0, 0
		f.m20, f.m21 = 0, 0
		f.m22 = 1
	}

	resSq := 0.0
	for i := 0; i < n; i++ {
		predicted := f.apply(v.points[i])
		diff := normalized[mapping[i]].sub(predicted)
		resSq += diff.normSq()
	}

	result := deformationResult{f: f, fRes: math.Sqrt(resSq)}
	if u, p, ok := polarDecomposition(f); ok {
		result.u, result.p, result.hasPolar = u, p, true
	}
	return result
}

// polarDecomposition computes the one-sided polar factors F = U*P (U
// orthogonal, P symmetric positive semi-definite) via the symmetric
// eigendecomposition of C = F^T*F (spec.md 4.8): P = sqrt(C), U = F*P^-1.
func polarDecomposition(f mat3) (u, p mat3, ok bool) {
	c := f.transpose().mul(f)
	sym := mat.NewSymDense(3, []float64{
		c.m00, c.m01, c.m02,
		c.m01, c.m11, c.m12,
		c.m02, c.m12, c.m22,
	})

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return mat3{}, mat3{}, false
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	sqrtVals := mat.NewDiagDense(3, []float64{
		math.Sqrt(math.Max(values[0], 0)),
		math.Sqrt(math.Max(values[1], 0)),
		math.Sqrt(math.Max(values[2], 0)),
	})

	var scaled, pDense mat.Dense
	scaled.Mul(&vectors, sqrtVals)
	pDense.Mul(&scaled, vectors.T())

	p = mat3{
		pDense.At(0, 0), pDense.At(0, 1), pDense.At(0, 2),
		pDense.At(1, 0), pDense.At(1, 1), pDense.At(1, 2),
		pDense.At(2, 0), pDense.At(2, 1), pDense.At(2, 2),
	}

	pInv, invertible := p.inverse()
	if !invertible {
		return mat3{}, mat3{}, false
	}
	return f.mul(pInv), p, true
}
