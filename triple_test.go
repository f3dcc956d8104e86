// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/ringio"
)

// =============================================================================
// Triple Buffer
// =============================================================================

func checkPermutation(t *testing.T, step int, tb *ringio.Triple[int]) {
	t.Helper()
	p, c, idle := ringio.TripleIndices(tb)
	if p > 2 || c > 2 || idle > 2 || p == c || p == idle || c == idle {
		t.Fatalf("step %d: indices (%d, %d, %d) are not a permutation of {0, 1, 2}", step, p, c, idle)
	}
}

func TestTripleIndicesPermutation(t *testing.T) {
	tb := ringio.NewTriple[int]()
	checkPermutation(t, -1, tb)

	rng := rand.New(rand.NewPCG(3, 5))
	for step := range 1000 {
		if rng.IntN(2) == 0 {
			tb.SwapProducer()
		} else {
			tb.SwapConsumer()
		}
		checkPermutation(t, step, tb)
		if tb.ProducerBuffer() == tb.ConsumerBuffer() {
			t.Fatalf("step %d: producer and consumer share a buffer", step)
		}
	}
}

func TestTripleHandover(t *testing.T) {
	tb := ringio.NewTripleOf(-1)
	if got := *tb.ConsumerBuffer(); got != -1 {
		t.Fatalf("initial ConsumerBuffer: got %d, want -1", got)
	}

	*tb.ProducerBuffer() = 1
	tb.SwapProducer()
	tb.SwapConsumer()
	if got := *tb.ConsumerBuffer(); got != 1 {
		t.Fatalf("after handover: got %d, want 1", got)
	}

	// Two producer swaps without a consumer swap: the latest value wins.
	*tb.ProducerBuffer() = 2
	tb.SwapProducer()
	*tb.ProducerBuffer() = 3
	tb.SwapProducer()
	tb.SwapConsumer()
	if got := *tb.ConsumerBuffer(); got != 3 {
		t.Fatalf("after overwrite: got %d, want 3", got)
	}
}

func TestTripleConcurrentNoTearing(t *testing.T) {
	if ringio.RaceEnabled {
		t.Skip("skip: buffer contents are ordered by the atomix idle word")
	}
	type frame struct {
		seq      uint64
		checksum uint64
		payload  [16]uint64
	}
	tb := ringio.NewTriple[frame]()
	var stop atomix.Bool

	done := make(chan struct{})
	go func() {
		defer close(done)
		for seq := uint64(1); !stop.Load(); seq++ {
			f := tb.ProducerBuffer()
			f.seq = seq
			f.checksum = 0
			for i := range f.payload {
				f.payload[i] = seq * uint64(i+1)
				f.checksum += f.payload[i]
			}
			tb.SwapProducer()
		}
	}()

	deadline := time.Now().Add(200 * time.Millisecond)
	seen := 0
	for time.Now().Before(deadline) {
		tb.SwapConsumer()
		f := tb.ConsumerBuffer()
		if f.seq == 0 {
			continue
		}
		var sum uint64
		for i, v := range f.payload {
			if v != f.seq*uint64(i+1) {
				t.Fatalf("torn frame: seq %d payload[%d] = %d", f.seq, i, v)
			}
			sum += v
		}
		if sum != f.checksum {
			t.Fatalf("torn frame: seq %d checksum %d, want %d", f.seq, f.checksum, sum)
		}
		seen++
	}
	stop.Store(true)
	<-done
	if seen == 0 {
		t.Fatal("consumer never received a frame")
	}
}
