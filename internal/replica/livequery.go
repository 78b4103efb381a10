package replica

import (
	"log/slog"
	"sync"
	"time"
)

// QueryFunc evaluates a live query against the current replica state.
// changed lists the collections of the burst that triggered the evaluation;
// it is nil on the initial evaluation. Most queries ignore it and re-read
// the store.
type QueryFunc[T any] func(changed []Collection) (T, error)

// LiveQuery re-runs a query function whenever one of its dependency
// collections changes and delivers the new result to the subscriber.
//
// The initial value is the caller-supplied default, available synchronously
// from Current, so a consuming view can render a skeleton immediately. Rapid
// successive writes are coalesced by the debounce window into a bounded
// number of re-evaluations. A query error keeps the previous value; errors
// never propagate out of the reactive layer.
type LiveQuery[T any] struct {
	sub      *Subscription
	fn       QueryFunc[T]
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	current T

	updates chan T
	done    chan struct{}
	once    sync.Once
}

// Live subscribes fn to the given collections on bus. The query is evaluated
// once right away (replacing def as soon as it completes) and then after
// every debounced change burst.
func Live[T any](bus *Bus, debounce time.Duration, def T, cols []Collection, fn QueryFunc[T], logger *slog.Logger) *LiveQuery[T] {
	if logger == nil {
		logger = slog.Default()
	}
	lq := &LiveQuery[T]{
		sub:      bus.Subscribe(cols...),
		fn:       fn,
		debounce: debounce,
		logger:   logger,
		current:  def,
		updates:  make(chan T, 1),
		done:     make(chan struct{}),
	}
	go lq.run()
	return lq
}

// Current returns the latest delivered result (the default until the first
// evaluation completes).
func (lq *LiveQuery[T]) Current() T {
	lq.mu.Lock()
	defer lq.mu.Unlock()
	return lq.current
}

// Updates delivers re-evaluated results. Only the latest result is retained
// if the consumer lags.
func (lq *LiveQuery[T]) Updates() <-chan T { return lq.updates }

// Close stops re-evaluation and releases the bus subscription.
func (lq *LiveQuery[T]) Close() {
	lq.once.Do(func() {
		close(lq.done)
		lq.sub.Close()
	})
}

func (lq *LiveQuery[T]) run() {
	lq.evaluate(nil)
	for {
		select {
		case <-lq.done:
			return
		case <-lq.sub.Ready():
		}
		// Let the burst settle, absorbing further signals meanwhile.
		if lq.debounce > 0 {
			timer := time.NewTimer(lq.debounce)
		drain:
			for {
				select {
				case <-lq.done:
					timer.Stop()
					return
				case <-lq.sub.Ready():
				case <-timer.C:
					break drain
				}
			}
		}
		lq.evaluate(lq.sub.Take())
	}
}

func (lq *LiveQuery[T]) evaluate(changed []Collection) {
	result, err := lq.fn(changed)
	if err != nil {
		lq.logger.Error("live query evaluation failed", slog.String("error", err.Error()))
		return
	}
	lq.mu.Lock()
	lq.current = result
	lq.mu.Unlock()
	select {
	case lq.updates <- result:
	default:
		// Drop the stale in-flight value, then deliver the latest.
		select {
		case <-lq.updates:
		default:
		}
		select {
		case lq.updates <- result:
		default:
		}
	}
}
