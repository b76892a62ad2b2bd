package replicator

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllTasks(t *testing.T) {
	pool := NewPool(3)

	var count int64
	for i := 0; i < 50; i++ {
		pool.Submit(func() { atomic.AddInt64(&count, 1) })
	}
	pool.Close()

	assert.Equal(t, int64(50), atomic.LoadInt64(&count))
}

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := NewPool(2)

	var active, peak int64
	var mu sync.Mutex
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			n := atomic.AddInt64(&active, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			atomic.AddInt64(&active, -1)
		})
	}
	pool.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, int64(2))
}

func TestMutexMapSerializesPerKey(t *testing.T) {
	locks := newMutexMap()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("p1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestMutexMapIndependentKeys(t *testing.T) {
	locks := newMutexMap()

	unlockA := locks.lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.lock("b")
		unlockB()
		close(done)
	}()
	<-done
}

func TestMutexMapForget(t *testing.T) {
	locks := newMutexMap()

	unlock := locks.lock("a")
	locks.forget("a")
	unlock()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
