package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar follows the operations of one core. Operations are in
// progress while their access is outstanding and finished once retired.
type ProgressBar struct {
	mu sync.Mutex

	ID         string
	Name       string
	StartTime  time.Time
	Total      uint64
	Finished   uint64
	InProgress uint64
}

func (b *ProgressBar) update(f func(b *ProgressBar)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f(b)
}

// IncrementInProgress counts operations that started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.update(func(b *ProgressBar) { b.InProgress += amount })
}

// IncrementFinished counts operations that completed at once.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.update(func(b *ProgressBar) { b.Finished += amount })
}

// MoveInProgressToFinished completes operations that were in progress.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.update(func(b *ProgressBar) {
		b.InProgress -= amount
		b.Finished += amount
	})
}

type progressRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (b *ProgressBar) snapshot() (rsp progressRsp) {
	b.update(func(b *ProgressBar) {
		rsp = progressRsp{
			ID:         b.ID,
			Name:       b.Name,
			StartTime:  b.StartTime,
			Total:      b.Total,
			Finished:   b.Finished,
			InProgress: b.InProgress,
		}
	})

	return rsp
}
