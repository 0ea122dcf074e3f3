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

import "errors"

// Precondition errors: the caller violated the entry point's contract.
// These are always surfaced, never recovered from.
var (
	ErrNotInitialized = errors.New("ptm: reference template library not initialized")
	ErrTooManyPoints  = errors.New("ptm: num_points exceeds MaxInputPoints")
)

// Recoverable errors: a single template or ordering attempt failed; the
// caller is not told directly, the offending candidate is just dropped
// from consideration (spec.md 7).
var (
	ErrInsufficientNeighbours = errors.New("ptm: fewer surviving neighbours than template minimum")
	ErrShellFailure           = errors.New("ptm: two-shell expansion could not be filled")
	ErrHullDegenerate         = errors.New("ptm: convex hull is degenerate (coplanar/collinear input)")
)

// Numerical errors: a QCP solve did not converge for one candidate
// automorphism; that candidate is skipped and others are still tried.
var (
	ErrQCPNonConvergence = errors.New("ptm: QCP Newton iteration failed to converge")
)
