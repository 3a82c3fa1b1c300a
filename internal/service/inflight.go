package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"

	"soundblast/internal/apperr"
	"soundblast/internal/model"
)

const lockRetryDelay = 250 * time.Millisecond

// inflight lets one pipeline run per file id proceed at a time. Callers in
// this process share the leader's result; other processes wait on a lock
// file under lockDir.
type inflight struct {
	group   singleflight.Group
	lockDir string

	mu    sync.Mutex
	calls map[string]*flight
}

// flight is the shared run for one key. Its context outlives any single
// caller and is cancelled once every waiter has given up.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func newInflight(lockDir string) *inflight {
	return &inflight{lockDir: lockDir, calls: make(map[string]*flight)}
}

// Do runs fn once for concurrent callers with the same key. leader reports
// whether this caller ran fn. fn receives a context that keeps the first
// caller's values but is cancelled only when no caller is waiting any more,
// so one caller going away never fails the others.
func (g *inflight) Do(ctx context.Context, key string, fn func(context.Context) (*model.Transcript, error)) (*model.Transcript, bool, error) {
	// Written by the singleflight goroutine only when this caller leads; read
	// only after its result has been received.
	var ran bool

	// Joining and registering happen under mu so a flight in the map is always
	// the one singleflight holds for key.
	g.mu.Lock()
	f, ok := g.calls[key]
	if !ok {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: runCtx, cancel: cancel}
		g.calls[key] = f
	}
	f.waiters++
	ch := g.group.DoChan(key, func() (any, error) {
		ran = true
		defer g.finish(key, f)

		unlock, err := g.lock(f.ctx, key)
		if err != nil {
			return nil, err
		}
		defer unlock()
		return fn(f.ctx)
	})
	g.mu.Unlock()

	select {
	case res := <-ch:
		t, _ := res.Val.(*model.Transcript)
		return t, ran, res.Err
	case <-ctx.Done():
	}

	if !g.leave(key, f) {
		return nil, false, abandoned(key, ctx.Err())
	}

	// Last waiter: the run is being cancelled. Wait for it so its child
	// processes and scratch files are gone before returning.
	res := <-ch
	if res.Err == nil {
		t, _ := res.Val.(*model.Transcript)
		return t, ran, nil
	}
	return nil, ran, abandoned(key, ctx.Err())
}

// leave drops one waiter and reports whether it was the last. The last one
// cancels the run and detaches it so later callers start afresh.
func (g *inflight) leave(key string, f *flight) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return false
	}
	g.detach(key, f)
	f.cancel()
	return true
}

func (g *inflight) finish(key string, f *flight) {
	g.mu.Lock()
	g.detach(key, f)
	g.mu.Unlock()
	f.cancel()
}

// detach must be called with mu held.
func (g *inflight) detach(key string, f *flight) {
	if g.calls[key] == f {
		delete(g.calls, key)
		g.group.Forget(key)
	}
}

func abandoned(key string, err error) error {
	return apperr.Wrapf(apperr.KindToolFailure, "transcribe.wait", fmt.Sprintf("transcription of %s abandoned", key), err)
}

func (g *inflight) lock(ctx context.Context, key string) (func(), error) {
	if err := os.MkdirAll(g.lockDir, 0o755); err != nil {
		return nil, apperr.Wrapf(apperr.KindIO, "transcribe.lock", "cannot create lock directory", err)
	}

	fl := flock.New(filepath.Join(g.lockDir, key+".lock"))
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("waiting for lock on %s: %w", key, ctx.Err())
		}
		return nil, apperr.Wrapf(apperr.KindIO, "transcribe.lock", fmt.Sprintf("cannot lock %s", fl.Path()), err)
	}
	if !ok {
		return nil, apperr.E(apperr.KindIO, "transcribe.lock", fmt.Sprintf("cannot lock %s", fl.Path()))
	}
	return func() { _ = fl.Unlock() }, nil
}
