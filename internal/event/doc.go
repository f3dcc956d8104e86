// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package event provides readiness-notification primitives for parking a
// goroutine until a peer signals progress.
//
// Two implementations share one method set (Wait, Signal, Count, Close):
//
//   - FD: a Linux eventfd. Usable across processes when the descriptor is
//     inherited or passed over a Unix socket.
//   - Local: a channel plus an atomic counter. Same process only, portable.
//
// New returns an FD on Linux and a Local elsewhere.
//
// Signals accumulate until consumed by Wait or Count, so a Signal issued
// before the matching Wait is never lost.
package event
