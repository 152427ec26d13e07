// SPDX-License-Identifier: MIT

// Package phase segments a production envelope into flux regimes by
// locating abrupt changes of the secant slope along one of its curves.
//
// Detection never fails: envelopes with fewer than three points have no
// interior slope change and yield no boundaries. Adjacent boundaries on a
// jagged curve are all reported; merging them is left to the caller.
package phase
