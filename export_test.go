// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

// TripleIndices returns the producer, consumer and idle buffer indices.
func TripleIndices[T any](t *Triple[T]) (producer, consumer, idle uint64) {
	return t.producer, t.consumer, t.idle.LoadAcquire()
}
