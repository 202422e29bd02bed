// Package debug emits periodic runtime diagnostics when the app runs with
// debug enabled: goroutines, heap, process working set and task queue depth.
// Large images and model embeddings make native vs heap growth worth watching.
package debug

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/microseg-go/domain/task"
)

// QueueStats reports the task queue counters.
type QueueStats func() task.Stats

// StartRuntimeLogger logs a runtime snapshot every interval until ctx is done.
// queue may be nil.
func StartRuntimeLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, queue QueueStats) {
	if logger == nil {
		return
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			attrs := snapshot()
			if rss, err := residentSetSize(); err == nil {
				attrs = append(attrs, slog.String("rss", humanize.Bytes(rss)))
			} else if !rssErrLogged {
				logger.Warn("runtime: working set unavailable", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			if queue != nil {
				st := queue()
				attrs = append(attrs,
					slog.Int("queued", st.Queued),
					slog.Bool("running", st.Running),
					slog.Uint64("completed", st.Completed),
					slog.Uint64("failed", st.Failed),
				)
			}
			logger.LogAttrs(ctx, slog.LevelDebug, "runtime", attrs...)
		}
	}()
}

func snapshot() []slog.Attr {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	metrics.Read(samples)
	var goroutines uint64
	if samples[0].Value.Kind() == metrics.KindUint64 {
		goroutines = samples[0].Value.Uint64()
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return []slog.Attr{
		slog.Uint64("goroutines", goroutines),
		slog.String("heap_alloc", humanize.Bytes(ms.HeapAlloc)),
		slog.String("heap_sys", humanize.Bytes(ms.HeapSys)),
		slog.String("stack_inuse", humanize.Bytes(ms.StackInuse)),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
	}
}
