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

	"github.com/stretchr/testify/require"
)

func TestIndexSC6Exact(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	res, err := Index(ws, nil, 0, scPoints(), nil, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchSC, res.Type)
	require.InDelta(t, 0, res.RMSD, 1e-7)
	require.InDelta(t, 0.5, res.InteratomicDistance, 1e-7)
}

func TestIndexFCC12ExactScaleAndLatticeConstant(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	points := fccPoints()
	species := make([]int32, len(points))
	res, err := Index(ws, nil, 0, points, species, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchFCC, res.Type)
	require.InDelta(t, 0, res.RMSD, 1e-7)
	require.InDelta(t, 1, res.Scale, 1e-6)
	require.InDelta(t, 1, res.LatticeConstant, 1e-6)
	require.Equal(t, AlloyPure, res.AlloyType)
}

func TestIndexBCC14Exact(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	res, err := Index(ws, nil, 0, bccPoints(), nil, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchBCC, res.Type)
	require.InDelta(t, 0, res.RMSD, 1e-7)
}

func TestIndexICOExact(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	res, err := Index(ws, nil, 0, icoPoints(), nil, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchICO, res.Type)
	require.InDelta(t, 0, res.RMSD, 1e-7)
}

func TestIndexRotationInvariance(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	q := quaternion{w: 0.6, x: -0.1, y: 0.2, z: 0.75}.normalized()
	rot := q.rotationMatrix()

	ideal := fccPoints()
	rotated := make([]Vec3d, len(ideal))
	for i, p := range ideal {
		rotated[i] = rot.apply(p)
	}

	res, err := Index(ws, nil, 0, rotated, nil, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchFCC, res.Type)
	require.InDelta(t, 0, res.RMSD, 1e-6)
	require.InDelta(t, 1, res.LatticeConstant, 1e-6)
}

func TestIndexScaleInvariance(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	const k = 3.25
	ideal := fccPoints()
	scaled := make([]Vec3d, len(ideal))
	for i, p := range ideal {
		scaled[i] = p.scale(k)
	}

	res, err := Index(ws, nil, 0, scaled, nil, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchFCC, res.Type)
	require.InDelta(t, 0, res.RMSD, 1e-6)
	require.InDelta(t, k, res.LatticeConstant, 1e-5)
	require.InDelta(t, k/math.Sqrt2, res.InteratomicDistance, 1e-5)
}

func TestIndexPermutationInvarianceOfOutputIndices(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	ideal := fccPoints()
	central := ideal[0]
	neighbours := append([]Vec3d{}, ideal[1:]...)

	// Reverse the neighbour order; the matched structure and residual
	// should not depend on the caller's input order, and OutputIndices
	// should still point back at the correct, permuted source indices.
	shuffled := make([]Vec3d, len(neighbours))
	for i, p := range neighbours {
		shuffled[len(neighbours)-1-i] = p
	}
	points := append([]Vec3d{central}, shuffled...)

	res, err := Index(ws, nil, 0, points, nil, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchFCC, res.Type)
	require.InDelta(t, 0, res.RMSD, 1e-6)
	require.NotNil(t, res.OutputIndices)
	require.Len(t, res.OutputIndices, len(ideal))

	// OutputIndices[0] is always the central atom.
	require.Equal(t, 0, res.OutputIndices[0])
	seen := make(map[int]bool)
	for _, idx := range res.OutputIndices {
		require.False(t, seen[idx], "duplicate output index %d", idx)
		seen[idx] = true
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(points))
	}
}

func TestIndexAlloyL12Au(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	points := fccPoints()
	species := make([]int32, len(points))
	for i := 1; i < len(species); i++ {
		species[i] = 1
	}

	res, err := Index(ws, nil, 0, points, species, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchFCC, res.Type)
	require.Equal(t, AlloyL12Au, res.AlloyType)
}

func TestIndexAlloyL12Cu(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	points := fccPoints()
	species := make([]int32, len(points))
	for _, i := range fccFaceSubsets[0] {
		species[i] = 1
	}

	res, err := Index(ws, nil, 0, points, species, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchFCC, res.Type)
	require.Equal(t, AlloyL12Cu, res.AlloyType)
}

func TestIndexTooManyPointsReturnsError(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	points := make([]Vec3d, MaxInputPoints+1)
	_, err := Index(ws, nil, 0, points, nil, FlagAll, false)
	if err == nil {
		t.Fatalf("expected an error for %d points (max %d)", len(points), MaxInputPoints)
	}
}

func TestIndexEmptyPointsIsNoMatch(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	res, err := Index(ws, nil, 0, nil, nil, FlagAll, false)
	require.NoError(t, err)
	require.Equal(t, MatchNone, res.Type)
}

func TestIndexFlagsRestrictCandidates(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	// An FCC neighbourhood offered only SC and BCC flags should find no
	// match, since its vertex count and canonical form fit neither.
	res, err := Index(ws, nil, 0, fccPoints(), nil, FlagSC|FlagBCC, false)
	require.NoError(t, err)
	require.Equal(t, MatchNone, res.Type)
}

func TestDiamondInnerHullOKRejectsDegenerateShell(t *testing.T) {
	coplanar := []shellPoint{
		{position: Vec3d{1, 0, 0}},
		{position: Vec3d{0, 1, 0}},
		{position: Vec3d{-1, 0, 0}},
		{position: Vec3d{0, -1, 0}},
	}
	if diamondInnerHullOK(coplanar) {
		t.Errorf("diamondInnerHullOK accepted a coplanar shell")
	}
}

func TestDiamondInnerHullOKAcceptsTetrahedralShell(t *testing.T) {
	primaries := tetrahedralDirections()
	shell := make([]shellPoint, len(primaries))
	for i, d := range primaries {
		shell[i] = shellPoint{position: d}
	}
	if !diamondInnerHullOK(shell) {
		t.Errorf("diamondInnerHullOK rejected a genuine tetrahedral shell")
	}
}
