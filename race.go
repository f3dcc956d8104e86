// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package ringio

// RaceEnabled is true when the race detector is active.
// Tests use it to skip cross-goroutine ring and stream tests: slot contents
// are plain memory ordered by acquire/release on the counters, which the
// detector cannot observe.
const RaceEnabled = true
