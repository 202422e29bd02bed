package task

import "sync"

// Inbox buffers completions posted by the worker until the UI thread drains
// them. Post never blocks; the backing slice grows as needed.
type Inbox struct {
	mu    sync.Mutex
	items []Finished
}

func NewInbox() *Inbox { return &Inbox{} }

// Post appends f. Safe from any goroutine.
func (b *Inbox) Post(f Finished) {
	b.mu.Lock()
	b.items = append(b.items, f)
	b.mu.Unlock()
}

// Drain hands every pending completion to fn in posting order and returns how
// many were delivered. fn runs without the lock held, so it may Post.
func (b *Inbox) Drain(fn func(Finished)) int {
	b.mu.Lock()
	items := b.items
	b.items = nil
	b.mu.Unlock()
	for _, f := range items {
		fn(f)
	}
	return len(items)
}

// Len reports the number of undrained completions.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
