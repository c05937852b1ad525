package progress

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu      sync.Mutex
	updates [][2]int64
}

func (r *recorder) Report(completed, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, [2]int64{completed, total})
}

func TestThrottled(t *testing.T) {
	rec := &recorder{}
	th := NewThrottled(rec, time.Hour)

	for i := int64(1); i < 100; i++ {
		th.Report(i, 100)
	}
	th.Report(100, 100)

	// First update consumes the burst token, the final one is forced through.
	assert.Equal(t, [][2]int64{{1, 100}, {100, 100}}, rec.updates)
}

func TestThrottled_Unlimited(t *testing.T) {
	rec := &recorder{}
	th := NewThrottled(rec, 0)
	for i := int64(1); i <= 10; i++ {
		th.Report(i, 10)
	}
	assert.Len(t, rec.updates, 10)
}

func TestTracker(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(rec, 40)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				tr.Add(1)
			}
		}()
	}
	wg.Wait()
	tr.Finish()

	assert.Equal(t, int64(40), tr.Completed())
	assert.Len(t, rec.updates, 41)
	assert.Equal(t, [2]int64{40, 40}, rec.updates[len(rec.updates)-1])
}

func TestTracker_NilSink(t *testing.T) {
	tr := NewTracker(nil, 3)
	tr.Add(3)
	tr.Finish()
	assert.Equal(t, int64(3), tr.Completed())
}

func TestFuncAndLog(t *testing.T) {
	var got int64
	Func(func(c, _ int64) { got = c }).Report(7, 9)
	assert.Equal(t, int64(7), got)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	NewLog(logger, "assemble").Report(1, 4)
	assert.Contains(t, buf.String(), "task=assemble")
	assert.Contains(t, buf.String(), "percent=25")

	Nop{}.Report(1, 1)
}
