package parallel

import "sync/atomic"
import "testing"

func TestForEachCoversRange(t *testing.T) {
	const n = 1000
	var hits [n]int32
	ForEach(n, 8, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d executed %d times", i, h)
		}
	}
}

func TestForEachDefaultLimit(t *testing.T) {
	var count int64
	ForEach(100, 0, func(i int) {
		atomic.AddInt64(&count, 1)
	})
	if count != 100 {
		t.Fatalf("executed %d of 100", count)
	}
}

func TestForEachEmpty(t *testing.T) {
	ForEach(0, 4, func(i int) {
		t.Fatal("body executed for empty range")
	})
}

func TestForEachLimitRespected(t *testing.T) {
	var active, peak int64
	ForEach(200, 4, func(i int) {
		a := atomic.AddInt64(&active, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if a <= p || atomic.CompareAndSwapInt64(&peak, p, a) {
				break
			}
		}
		atomic.AddInt64(&active, -1)
	})
	if peak > 4 {
		t.Fatalf("observed %d concurrent workers, limit 4", peak)
	}
}

func TestThreads(t *testing.T) {
	if Threads() < 1 {
		t.Fatalf("Threads = %d", Threads())
	}
}
