// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package event

// New returns an in-process notifier on platforms without eventfd.
func New() (*Local, error) {
	return NewLocal(), nil
}
