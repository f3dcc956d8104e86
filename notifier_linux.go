// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package ringio

import "code.hybscloud.com/ringio/internal/event"

// NotifierFromFD adopts an eventfd received from another process, for
// example through os/exec ExtraFiles, so both sides of a shared memory
// [Segment] can wake each other.
func NotifierFromFD(fd int) (Notifier, error) {
	n, err := event.FromFD(fd)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// NotifierFD returns the descriptor behind a notifier created by
// NewNotifier or NotifierFromFD. ok is false for in-process notifiers.
func NotifierFD(n Notifier) (fd int, ok bool) {
	e, ok := n.(*event.FD)
	if !ok {
		return -1, false
	}
	return e.FD(), true
}
