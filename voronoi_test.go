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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderNeighboursReturnsFullOrderWhenMinimumMet(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	neighbours := scPoints()[1:]
	order, err := orderNeighbours(ws, neighbours, nil, len(neighbours))
	require.NoError(t, err)
	require.Len(t, order, len(neighbours))
}

func TestOrderNeighboursInsufficientNeighboursError(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	// Two points can never form a closed Voronoi cell (defaultVoronoiCellBuilder
	// requires at least 3), so zero faces survive regardless of geometry.
	neighbours := scPoints()[1:3]
	_, err := orderNeighbours(ws, neighbours, nil, 1)
	require.ErrorIs(t, err, ErrInsufficientNeighbours)
}

func TestOrderNeighboursZeroMinimumSkipsCheck(t *testing.T) {
	ws := NewWorkspace()
	defer ws.Close()

	neighbours := scPoints()[1:3]
	order, err := orderNeighbours(ws, neighbours, nil, 0)
	require.NoError(t, err)
	require.Len(t, order, len(neighbours))
}
