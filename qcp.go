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

	"github.com/pkg/errors"
)

// qcpResult is one candidate superposition: the optimal rotation
// quaternion, the scale factor, and the resulting RMSD.
type qcpResult struct {
	q     quaternion
	scale float64
	rmsd  float64
}

// innerProduct builds M = sum_i normalized[mapping[i]] (x) idealPoints[i],
// the 3x3 cross-covariance matrix QCP diagonalises (spec.md 4.6 step 3).
func innerProduct(idealPoints, normalized []Vec3d, mapping []int) mat3 {
	m := mat3{}
	for i, r := range idealPoints {
		m = m.add(normalized[mapping[i]].outer(r))
	}
	return m
}

// keyMatrix builds the 4x4 symmetric QCP key matrix from the 3x3 inner
// product matrix M (Liu & Theobald's construction).
func keyMatrix(m mat3) [4][4]float64 {
	Sxx, Sxy, Sxz := m.m00, m.m01, m.m02
	Syx, Syy, Syz := m.m10, m.m11, m.m12
	Szx, Szy, Szz := m.m20, m.m21, m.m22

	return [4][4]float64{
		{Sxx + Syy + Szz, Syz - Szy, Szx - Sxz, Sxy - Syx},
		{Syz - Szy, Sxx - Syy - Szz, Sxy + Syx, Szx + Sxz},
		{Szx - Sxz, Sxy + Syx, -Sxx + Syy - Szz, Syz + Szy},
		{Sxy - Syx, Szx + Sxz, Syz + Szy, -Sxx - Syy + Szz},
	}
}

// quarticCoefficients returns the coefficients of det(K - lambda*I) =
// lambda^4 - e1*lambda^3 + e2*lambda^2 - e3*lambda + e4, computed
// directly from K's entries via its elementary symmetric invariants
// (trace, sum of principal minors, determinant) rather than a
// hand-expanded symbolic form -- numerically equivalent, and free of
// the transcription risk a 9-term symbolic expansion would carry.
func quarticCoefficients(k [4][4]float64) (e1, e2, e3, e4 float64) {
	for i := 0; i < 4; i++ {
		e1 += k[i][i]
	}

	trace2 := 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			trace2 += k[i][j] * k[j][i]
		}
	}
	e2 = (e1*e1 - trace2) / 2

	for excl := 0; excl < 4; excl++ {
		e3 += principalMinor3(k, excl)
	}

	e4 = det4(k)
	return
}

// principalMinor3 returns the determinant of the 3x3 principal submatrix
// of k obtained by deleting row and column excl.
func principalMinor3(k [4][4]float64, excl int) float64 {
	var rows [3]int
	idx := 0
	for i := 0; i < 4; i++ {
		if i == excl {
			continue
		}
		rows[idx] = i
		idx++
	}
	m := mat3{
		k[rows[0]][rows[0]], k[rows[0]][rows[1]], k[rows[0]][rows[2]],
		k[rows[1]][rows[0]], k[rows[1]][rows[1]], k[rows[1]][rows[2]],
		k[rows[2]][rows[0]], k[rows[2]][rows[1]], k[rows[2]][rows[2]],
	}
	return m.det()
}

// det4 returns the determinant of a 4x4 matrix via cofactor expansion
// along the first row.
func det4(k [4][4]float64) float64 {
	sign := 1.0
	det := 0.0
	for col := 0; col < 4; col++ {
		minor := minor4(k, 0, col)
		det += sign * k[0][col] * minor.det()
		sign = -sign
	}
	return det
}

func minor4(k [4][4]float64, skipRow, skipCol int) mat3 {
	var vals [9]float64
	idx := 0
	for i := 0; i < 4; i++ {
		if i == skipRow {
			continue
		}
		for j := 0; j < 4; j++ {
			if j == skipCol {
				continue
			}
			vals[idx] = k[i][j]
			idx++
		}
	}
	return mat3{vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6], vals[7], vals[8]}
}

// largestEigenvalue solves the quartic characteristic polynomial of K
// for its largest root by Newton iteration starting at E0, bounded to
// qcpMaxNewtonIterations steps and accepted once |delta| falls below
// qcpConvergenceFactor*E0 (spec.md 4.6 step 4). Eigenvalues may coincide
// when the neighbourhood exactly matches the template; the iteration
// remains stable there since E0 is already the root in that case.
// converged is false when the iteration exhausts its budget without
// reaching that threshold or the derivative vanishes first, signalling
// the caller to skip this candidate (spec.md 4.6, 7).
func largestEigenvalue(k [4][4]float64, e0 float64) (lambda float64, converged bool) {
	e1, e2, e3, e4 := quarticCoefficients(k)

	poly := func(lambda float64) float64 {
		return lambda*lambda*lambda*lambda - e1*lambda*lambda*lambda + e2*lambda*lambda - e3*lambda + e4
	}
	dpoly := func(lambda float64) float64 {
		return 4*lambda*lambda*lambda - 3*e1*lambda*lambda + 2*e2*lambda - e3
	}

	lambda = e0
	threshold := qcpConvergenceFactor * e0
	for i := 0; i < qcpMaxNewtonIterations; i++ {
		d := dpoly(lambda)
		if d == 0 {
			return lambda, false
		}
		delta := poly(lambda) / d
		lambda -= delta
		if math.Abs(delta) < threshold {
			return lambda, true
		}
	}
	return lambda, false
}

// eigenvectorAt extracts the unit quaternion spanning the null space of
// K - lambda*I (spec.md 4.6 step 4): for each of the four ways to omit
// one row, the remaining three rows' generalised 4D cross product gives
// a vector orthogonal to them; the omission with the largest resulting
// norm is kept to avoid the degenerate branch where a near-dependent
// triple of rows would otherwise amplify rounding error.
func eigenvectorAt(k [4][4]float64, lambda float64) quaternion {
	var a [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a[i][j] = k[i][j]
		}
		a[i][i] -= lambda
	}

	var best [4]float64
	bestNormSq := -1.0
	for excl := 0; excl < 4; excl++ {
		var rows [3][4]float64
		idx := 0
		for i := 0; i < 4; i++ {
			if i == excl {
				continue
			}
			rows[idx] = a[i]
			idx++
		}
		cand := cross4(rows)
		n := cand[0]*cand[0] + cand[1]*cand[1] + cand[2]*cand[2] + cand[3]*cand[3]
		if n > bestNormSq {
			bestNormSq = n
			best = cand
		}
	}

	q := quaternion{best[0], best[1], best[2], best[3]}
	return q.normalized()
}

// cross4 returns the generalised 4D cross product of three 4-vectors: the
// vector orthogonal to all three, built from cofactor expansion exactly
// as the 3D cross product is built from 2x2 minors of a 2x3 matrix.
func cross4(rows [3][4]float64) [4]float64 {
	var d [4]float64
	for col := 0; col < 4; col++ {
		var m [3][3]float64
		for r := 0; r < 3; r++ {
			k := 0
			for c := 0; c < 4; c++ {
				if c == col {
					continue
				}
				m[r][k] = rows[r][c]
				k++
			}
		}
		det := mat3{m[0][0], m[0][1], m[0][2], m[1][0], m[1][1], m[1][2], m[2][0], m[2][1], m[2][2]}.det()
		sign := 1.0
		if col%2 == 1 {
			sign = -1.0
		}
		d[col] = sign * det
	}
	return d
}

// solveQCP computes the optimal rotation, scale, and RMSD superposing
// idealPoints onto normalized under mapping (spec.md 4.6 steps 3-6). G1
// and G2 are the (mapping-independent) sums of squared norms of
// idealPoints and normalized respectively, computed once per query.
// Returns ErrQCPNonConvergence when the Newton iteration for the
// largest eigenvalue fails to converge (spec.md 4.6, 7): the caller
// skips this candidate and continues with others.
func solveQCP(idealPoints, normalized []Vec3d, mapping []int, G1, G2 float64) (qcpResult, error) {
	n := len(idealPoints)
	m := innerProduct(idealPoints, normalized, mapping)
	// K is built from M^T so that its top eigenvector is the rotation
	// carrying idealPoints onto normalized, the direction k0 applies below.
	k := keyMatrix(m.transpose())

	e0 := (G1 + G2) / 2
	lambda, converged := largestEigenvalue(k, e0)
	if !converged {
		return qcpResult{}, errors.WithStack(ErrQCPNonConvergence)
	}
	q := eigenvectorAt(k, lambda)

	rot := q.rotationMatrix()
	k0 := 0.0
	for i, r := range idealPoints {
		k0 += rot.apply(r).dot(normalized[mapping[i]])
	}

	scale := 0.0
	if G2 != 0 {
		scale = k0 / G2
	}
	rmsd := math.Sqrt(absf(G1-scale*k0) / float64(n))

	return qcpResult{q: q, scale: scale, rmsd: rmsd}, nil
}
