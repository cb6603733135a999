package mirror

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

var ErrDispatcherClosed = errors.New("mirror dispatcher closed")

type Result struct {
	Addition        Addition
	Err             error
	Unauthenticated bool
}

// Dispatcher runs mirror calls in the background. A dispatch never blocks
// the caller and is never retried; dispatches are not ordered relative to
// each other.
type Dispatcher struct {
	mirror  Mirror
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(m Mirror, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{mirror: m, timeout: timeout, logger: logger}
}

// Dispatch mirrors a and reports the outcome to onResult, which may be nil.
// After Close the addition is dropped and reported as ErrDispatcherClosed.
func (d *Dispatcher) Dispatch(a Addition, onResult func(Result)) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("cart addition dropped: dispatcher closed", zap.String("session_id", a.SessionID))
		if onResult != nil {
			onResult(Result{Addition: a, Err: ErrDispatcherClosed})
		}
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		res := d.run(a)
		if onResult != nil {
			onResult(res)
		}
	}()
}

// Wait blocks until every in-flight dispatch has reported.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting dispatches and waits for the in-flight ones, so the
// sinks can be released afterwards.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) run(a Addition) (res Result) {
	res.Addition = a

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("mirror panicked",
				zap.String("session_id", a.SessionID),
				zap.Any("panic", r),
			)
			res.Err = errors.New("mirror panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.mirror.MirrorAddition(ctx, a)
	res.Err = err
	res.Unauthenticated = errors.Is(err, ErrUnauthenticated)

	switch {
	case err == nil:
		d.logger.Debug("cart addition mirrored",
			zap.String("session_id", a.SessionID),
			zap.Int("item_id", a.ItemID),
		)
	case res.Unauthenticated:
		d.logger.Info("cart addition not mirrored: shopper not signed in",
			zap.String("session_id", a.SessionID),
		)
	default:
		d.logger.Warn("cart addition mirror failed",
			zap.String("session_id", a.SessionID),
			zap.Int("item_id", a.ItemID),
			zap.Error(err),
		)
	}
	return res
}
