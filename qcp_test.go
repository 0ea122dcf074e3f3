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

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func identityMapping(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}

func sumNormSq(points []Vec3d) float64 {
	s := 0.0
	for _, p := range points {
		s += p.normSq()
	}
	return s
}

func TestSolveQCPExactMatch(t *testing.T) {
	ideal := scPoints()
	mapping := identityMapping(len(ideal))
	G1 := sumNormSq(ideal)
	G2 := G1

	res, err := solveQCP(ideal, ideal, mapping, G1, G2)
	require.NoError(t, err)
	require.InDelta(t, 0, res.rmsd, 1e-8)
	require.InDelta(t, 1, res.scale, 1e-8)
}

func TestSolveQCPRotatedMatch(t *testing.T) {
	ideal := fccPoints()
	theta := 0.7
	q := quaternion{w: math.Cos(theta / 2), x: math.Sin(theta / 2)}
	rot := q.rotationMatrix()

	rotated := make([]Vec3d, len(ideal))
	for i, p := range ideal {
		rotated[i] = rot.apply(p)
	}

	mapping := identityMapping(len(ideal))
	G1 := sumNormSq(ideal)
	G2 := sumNormSq(rotated)

	res, err := solveQCP(ideal, rotated, mapping, G1, G2)
	require.NoError(t, err)
	require.InDelta(t, 0, res.rmsd, 1e-6)
}

func TestLargestEigenvalueNonConvergenceOnZeroKeyMatrix(t *testing.T) {
	var k [4][4]float64
	_, converged := largestEigenvalue(k, 0)
	if converged {
		t.Errorf("largestEigenvalue converged on a degenerate all-zero key matrix starting at e0=0, where the derivative vanishes on the first step")
	}
}

func TestSolveQCPNonConvergencePropagatesError(t *testing.T) {
	degenerate := []Vec3d{{0, 0, 0}, {0, 0, 0}}
	mapping := identityMapping(len(degenerate))

	_, err := solveQCP(degenerate, degenerate, mapping, 0, 0)
	if err == nil {
		t.Fatalf("expected ErrQCPNonConvergence for a degenerate all-zero point set")
	}
	if errors.Cause(err) != ErrQCPNonConvergence {
		t.Errorf("solveQCP error = %v, want a wrapped ErrQCPNonConvergence", err)
	}
}

func TestKeyMatrixSymmetric(t *testing.T) {
	m := mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	k := keyMatrix(m)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if k[i][j] != k[j][i] {
				t.Errorf("keyMatrix not symmetric at (%d,%d): %v vs %v", i, j, k[i][j], k[j][i])
			}
		}
	}
}
