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

import "sort"

// shellPoint is one point of a two-shell expansion: its handle in the
// host simulation's index space, its position relative to the central
// atom, and its chemical species (-1 when species are not in use).
type shellPoint struct {
	handle   int
	position Vec3d
	species  int32
}

// buildTwoShellOrder implements spec.md 4.2: it takes the central atom's
// first primaryCount primary neighbours (by decreasing Voronoi face
// area), and for each, requests the provider's own neighbour list and
// keeps the secondaryCount members best aligned with the central atom's
// direction vector as seen from that primary neighbour, excluding the
// central atom itself. The result is ordered primary-major: all
// primaries, then each primary's secondaries in primary order.
func buildTwoShellOrder(ws *Workspace, provider NeighbourProvider, atom int, primaryCount, secondaryCount int) ([]shellPoint, error) {
	rawIdx, rawSpecies, rawPos, err := provider.Neighbours(atom, MaxNeighbours)
	if err != nil {
		return nil, ErrShellFailure
	}
	if len(rawPos) < primaryCount {
		return nil, ErrShellFailure
	}

	order, err := orderNeighbours(ws, rawPos, nil, primaryCount)
	if err != nil {
		return nil, ErrShellFailure
	}

	out := make([]shellPoint, 0, primaryCount*(1+secondaryCount))
	primaries := make([]shellPoint, primaryCount)
	for i := 0; i < primaryCount; i++ {
		idx := order[i]
		primaries[i] = shellPoint{handle: rawIdx[idx], position: rawPos[idx], species: speciesAt(rawSpecies, idx)}
	}
	out = append(out, primaries...)

	for _, prim := range primaries {
		secIdx, secSpecies, secPos, err := provider.Neighbours(prim.handle, MaxNeighbours)
		if err != nil {
			return nil, ErrShellFailure
		}

		type candidate struct {
			point    shellPoint
			alignDot float64
		}
		backDir := prim.position.scale(-1).normalized()

		var candidates []candidate
		for i, h := range secIdx {
			if h == atom {
				continue
			}
			globalPos := prim.position.add(secPos[i])
			dir := secPos[i].normalized()
			candidates = append(candidates, candidate{
				point:    shellPoint{handle: h, position: globalPos, species: speciesAt(secSpecies, i)},
				alignDot: dir.dot(backDir),
			})
		}
		if len(candidates) < secondaryCount {
			return nil, ErrShellFailure
		}

		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].alignDot > candidates[j].alignDot })
		for i := 0; i < secondaryCount; i++ {
			out = append(out, candidates[i].point)
		}
	}

	return out, nil
}

func speciesAt(species []int32, i int) int32 {
	if i < 0 || i >= len(species) {
		return -1
	}
	return species[i]
}
