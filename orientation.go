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

// reduceOrientation maps q into the fundamental zone of t's point-group
// symmetry (spec.md 4.7): the returned quaternion q' satisfies, for the
// chosen group G, max_{g in G} |q'.g| = |q'.e|. operatorIndex is the
// index of the symmetry element applied (also the template-variant
// selector); defined is false when no zone is applicable for the
// requested (type, conventional) combination, in which case q is
// returned unchanged and downstream mapping reconstruction must be
// skipped (spec.md 4.7, 9).
func reduceOrientation(q quaternion, t MatchType, conventional bool) (reduced quaternion, operatorIndex int, defined bool) {
	group := symmetryGroup(t, conventional)
	if group == nil {
		return q, -1, false
	}

	best := 0
	bestDot := -1.0
	for i, g := range group {
		d := absf(q.dot(g))
		if d > bestDot {
			bestDot = d
			best = i
		}
	}

	h := group[best].conjugate()
	reduced = h.mul(q).normalized()
	if reduced.w < 0 {
		reduced = reduced.negate()
	}
	return reduced, best, true
}

// symmetryGroup returns the proper rotation group used to reduce t's
// orientation quaternion, or nil when conventional orientation has no
// defined zone for t (spec.md 4.7: requesting conventional mode on
// graphene, whose structure has no distinct conventional cell).
func symmetryGroup(t MatchType, conventional bool) []quaternion {
	switch t {
	case MatchSC, MatchFCC, MatchBCC:
		return cubicRotations()
	case MatchICO:
		return icosahedralRotations()
	case MatchDCub:
		if conventional {
			return cubicRotations()
		}
		return tetrahedralRotations()
	case MatchHCP, MatchDHex:
		if conventional {
			return hcpConventionalRotations()
		}
		return hcpPrimitiveRotations()
	case MatchGraphene:
		if conventional {
			return nil
		}
		return hcpPrimitiveRotations()
	default:
		return nil
	}
}

// cubicSignedPermutationMatrices returns the 24 signed 3x3 permutation
// matrices with determinant +1: the proper rotation group of the cube.
func cubicSignedPermutationMatrices() []mat3 {
	perms := [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	signValues := [2]float64{1, -1}

	var out []mat3
	for _, perm := range perms {
		for _, sx := range signValues {
			for _, sy := range signValues {
				for _, sz := range signValues {
					signs := [3]float64{sx, sy, sz}
					var rows [3][3]float64
					for i := 0; i < 3; i++ {
						rows[i][perm[i]] = signs[i]
					}
					m := mat3{
						rows[0][0], rows[0][1], rows[0][2],
						rows[1][0], rows[1][1], rows[1][2],
						rows[2][0], rows[2][1], rows[2][2],
					}
					if m.det() > 0 {
						out = append(out, m)
					}
				}
			}
		}
	}
	return out
}

// cubicRotations returns the 24 proper rotations of the cube (spec.md
// 4.7 "Cubic").
func cubicRotations() []quaternion {
	ms := cubicSignedPermutationMatrices()
	out := make([]quaternion, len(ms))
	for i, m := range ms {
		out[i] = quaternionFromRotationMatrix(m)
	}
	return out
}

// tetrahedralRotations returns the 12-element proper tetrahedral
// subgroup of the cubic rotation group: those elements mapping the
// tetrahedron {(1,1,1),(1,-1,-1),(-1,1,-1),(-1,-1,1)} to itself (spec.md
// 4.7 "DCUB primitive"). A signed permutation matrix preserves this
// tetrahedron exactly when it carries an even number of negative signs.
func tetrahedralRotations() []quaternion {
	var out []quaternion
	for _, m := range cubicSignedPermutationMatrices() {
		p := m.apply(Vec3d{X: 1, Y: 1, Z: 1})
		negatives := 0
		for _, c := range []float64{p.X, p.Y, p.Z} {
			if c < 0 {
				negatives++
			}
		}
		if negatives%2 == 0 {
			out = append(out, quaternionFromRotationMatrix(m))
		}
	}
	return out
}

// icosahedralRotations returns the 120 unit icosians (the binary
// icosahedral group 2I), which double-covers the 60-element proper
// icosahedral rotation group (spec.md 4.7 "Icosahedral"). Since the
// reduction in reduceOrientation takes |q.g|, a rotation and its
// antipodal quaternion representative contribute identically, so using
// the double cover directly is equivalent to the 60-element group
// without needing to de-duplicate the two quaternion signs per
// rotation.
func icosahedralRotations() []quaternion {
	phi := (1 + math.Sqrt(5)) / 2
	invPhi := 1 / phi
	signValues := [2]float64{1, -1}

	var out []quaternion
	out = append(out,
		quaternion{w: 1}, quaternion{w: -1},
		quaternion{x: 1}, quaternion{x: -1},
		quaternion{y: 1}, quaternion{y: -1},
		quaternion{z: 1}, quaternion{z: -1},
	)

	for _, sw := range signValues {
		for _, sx := range signValues {
			for _, sy := range signValues {
				for _, sz := range signValues {
					out = append(out, quaternion{sw, sx, sy, sz}.scale(0.5))
				}
			}
		}
	}

	base := [4]float64{0, 1, invPhi, phi}
	for _, perm := range evenPermutations4() {
		v := [4]float64{base[perm[0]], base[perm[1]], base[perm[2]], base[perm[3]]}
		var nonZero []int
		for i, c := range v {
			if c != 0 {
				nonZero = append(nonZero, i)
			}
		}
		for _, s1 := range signValues {
			for _, s2 := range signValues {
				for _, s3 := range signValues {
					sv := v
					sv[nonZero[0]] *= s1
					sv[nonZero[1]] *= s2
					sv[nonZero[2]] *= s3
					out = append(out, quaternion{sv[0], sv[1], sv[2], sv[3]}.scale(0.5))
				}
			}
		}
	}
	return out
}

// evenPermutations4 returns the 12 even permutations of {0,1,2,3}.
func evenPermutations4() [][4]int {
	idx := [4]int{0, 1, 2, 3}
	var all [][4]int
	var permute func(k int)
	permute = func(k int) {
		if k == len(idx) {
			all = append(all, idx)
			return
		}
		for i := k; i < len(idx); i++ {
			idx[k], idx[i] = idx[i], idx[k]
			permute(k + 1)
			idx[k], idx[i] = idx[i], idx[k]
		}
	}
	permute(0)

	var even [][4]int
	for _, p := range all {
		inversions := 0
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				if p[i] > p[j] {
					inversions++
				}
			}
		}
		if inversions%2 == 0 {
			even = append(even, p)
		}
	}
	return even
}

// d6Rotations returns the 12-element proper dihedral group D6: 6
// rotations about the c-axis and 6 perpendicular two-fold rotations,
// with phase the angular offset of the first c-axis rotation and the
// first in-plane two-fold axis.
func d6Rotations(phase float64) []quaternion {
	out := make([]quaternion, 0, 12)
	for k := 0; k < 6; k++ {
		theta := phase + float64(k)*math.Pi/3
		out = append(out, quaternion{w: math.Cos(theta / 2), z: math.Sin(theta / 2)})
	}
	for k := 0; k < 6; k++ {
		axis := phase/2 + float64(k)*math.Pi/6
		out = append(out, quaternion{x: math.Cos(axis), y: math.Sin(axis)})
	}
	return out
}

// hcpPrimitiveRotations is the 12-rotation D6 zone used for HCP, DHEX,
// and graphene primitive-cell orientation (spec.md 4.7).
func hcpPrimitiveRotations() []quaternion {
	return d6Rotations(0)
}

// hcpConventionalRotations is the 24-element zone used for HCP/DHEX
// conventional-cell orientation. The true proper rotation subgroup of
// D6h has only 12 elements (equal to hcpPrimitiveRotations); spec.md
// 4.7 nonetheless calls for 24, reflecting the original engine's
// convention of also considering the alternate in-plane lattice-vector
// choice (hexagonal axes offset by 30 degrees) as equivalent for
// "conventional" orientation purposes. This is implemented as the union
// of the D6 zone at phase 0 and at phase pi/6.
func hcpConventionalRotations() []quaternion {
	out := d6Rotations(0)
	return append(out, d6Rotations(math.Pi/6)...)
}

// quaternionFromRotationMatrix converts a proper rotation matrix to a
// unit quaternion (Shepperd's method, numerically stable regardless of
// trace sign).
func quaternionFromRotationMatrix(m mat3) quaternion {
	trace := m.trace()
	var w, x, y, z float64
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		w = 0.25 / s
		x = (m.m21 - m.m12) * s
		y = (m.m02 - m.m20) * s
		z = (m.m10 - m.m01) * s
	case m.m00 > m.m11 && m.m00 > m.m22:
		s := 2 * math.Sqrt(1+m.m00-m.m11-m.m22)
		w = (m.m21 - m.m12) / s
		x = 0.25 * s
		y = (m.m01 + m.m10) / s
		z = (m.m02 + m.m20) / s
	case m.m11 > m.m22:
		s := 2 * math.Sqrt(1+m.m11-m.m00-m.m22)
		w = (m.m02 - m.m20) / s
		x = (m.m01 + m.m10) / s
		y = 0.25 * s
		z = (m.m12 + m.m21) / s
	default:
		s := 2 * math.Sqrt(1+m.m22-m.m00-m.m11)
		w = (m.m10 - m.m01) / s
		x = (m.m02 + m.m20) / s
		y = (m.m12 + m.m21) / s
		z = 0.25 * s
	}
	return quaternion{w, x, y, z}.normalized()
}
