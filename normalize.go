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

// normalizeResult holds the centroid-subtracted, scale-normalised points
// of spec.md 4.3, along with the scale factor sigma that was applied.
type normalizeResult struct {
	points []Vec3d
	sigma  float64
}

// normalizePoints translates points to their centroid and scales them so
// the mean squared vertex norm equals one (spec.md 4.3). The returned
// sigma is the scale factor applied; 1/sigma reconstructs the input
// scale.
func normalizePoints(points []Vec3d) normalizeResult {
	n := len(points)
	centroid := Vec3d{}
	for _, p := range points {
		centroid = centroid.add(p)
	}
	centroid = centroid.scale(1 / float64(n))

	centred := make([]Vec3d, n)
	meanSq := 0.0
	for i, p := range points {
		centred[i] = p.sub(centroid)
		meanSq += centred[i].normSq()
	}
	meanSq /= float64(n)

	sigma := 1.0
	if meanSq > 0 {
		sigma = 1 / math.Sqrt(meanSq)
	}

	out := make([]Vec3d, n)
	for i, p := range centred {
		out[i] = p.scale(sigma)
	}
	return normalizeResult{points: out, sigma: sigma}
}
