package replicator

import "sync"

// Pool runs background replication tasks on a fixed number of workers,
// independent of the request-handling goroutines, so slow workflow calls
// never starve request handling.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewPool creates a pool with the given number of workers.
func NewPool(size int) *Pool {
	p := &Pool{tasks: make(chan func(), size*4)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit queues a task for execution. It blocks when the backlog is full.
func (p *Pool) Submit(task func()) {
	p.tasks <- task
}

// Close stops accepting tasks and waits for in-flight ones to finish.
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}
