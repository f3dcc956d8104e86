// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

import "code.hybscloud.com/ringio/internal/event"

// NewNotifier returns the platform readiness notifier: an eventfd on
// Linux, an in-process notifier elsewhere.
func NewNotifier() (Notifier, error) {
	n, err := event.New()
	if err != nil {
		return nil, err
	}
	return n, nil
}

// NewLocalNotifier returns an in-process notifier that holds no
// descriptor. It cannot be shared with another process.
func NewLocalNotifier() Notifier {
	return event.NewLocal()
}
