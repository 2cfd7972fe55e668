// Package userlist implements the user list view: it fetches the user
// directory once per mount and renders either a loading placeholder or the
// fetched records.
package userlist

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"userlist/internal/domain/entities"
)

type Status int

const (
	StatusLoading Status = iota
	StatusLoaded
	// StatusFailed renders like an empty StatusLoaded list; Err holds the cause.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type Fetcher interface {
	FetchUsers(ctx context.Context) ([]entities.User, error)
}

// View owns the fetched collection and the loading flag. The zero value is
// not usable; construct with New.
type View struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu        sync.Mutex
	users     []entities.User
	loading   bool
	status    Status
	err       error
	onChange  func()
	cancel    context.CancelFunc
	unmounted bool

	mountOnce sync.Once
	wg        sync.WaitGroup
	done      chan struct{}
	doneOnce  sync.Once
}

func New(fetcher Fetcher, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{
		fetcher: fetcher,
		logger:  logger,
		users:   []entities.User{},
		loading: true,
		status:  StatusLoading,
		done:    make(chan struct{}),
	}
}

// OnChange registers fn to be called after the view settles. fn runs on the
// fetch goroutine and must not call Unmount.
func (v *View) OnChange(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

// Mount starts the one-shot fetch. Only the first call has any effect, and a
// view that was already unmounted never fetches.
func (v *View) Mount() {
	v.mountOnce.Do(func() {
		v.mu.Lock()
		if v.unmounted {
			v.mu.Unlock()
			return
		}
		token, cancel := context.WithCancel(context.Background())
		v.cancel = cancel
		v.wg.Add(1)
		v.mu.Unlock()

		go v.load(token)
	})
}

// Unmount invalidates the liveness token, aborting an in-flight fetch and
// discarding its result, then waits for the fetch goroutine to exit.
func (v *View) Unmount() {
	v.mu.Lock()
	v.unmounted = true
	if v.cancel != nil {
		v.cancel()
	}
	v.mu.Unlock()

	v.wg.Wait()
	v.closeDone()
}

// Done is closed once the fetch has settled or the view was unmounted.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// Wait blocks until Done is closed or ctx ends.
func (v *View) Wait(ctx context.Context) error {
	select {
	case <-v.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

func (v *View) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func (v *View) Users() []entities.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]entities.User(nil), v.users...)
}

func (v *View) load(token context.Context) {
	defer v.wg.Done()
	defer v.settle(token)
	defer func() {
		if r := recover(); r != nil {
			v.complete(token, nil, fmt.Errorf("fetch users panicked: %v", r))
		}
	}()

	users, err := v.fetcher.FetchUsers(token)
	v.complete(token, users, err)
}

// complete is the only writer of the fetch result.
func (v *View) complete(token context.Context, users []entities.User, err error) {
	v.mu.Lock()
	if token.Err() != nil {
		v.mu.Unlock()
		v.logger.Debug("discarding users fetched after unmount", zap.Error(err))
		return
	}
	if err != nil {
		v.status = StatusFailed
		v.err = err
	} else {
		v.users = append(make([]entities.User, 0, len(users)), users...)
		v.status = StatusLoaded
	}
	v.mu.Unlock()

	if err != nil {
		v.logger.Warn("failed to fetch users", zap.Error(err))
	}
}

// settle clears the loading flag on every exit path of load.
func (v *View) settle(token context.Context) {
	v.mu.Lock()
	live := token.Err() == nil
	if live {
		v.loading = false
		if v.status == StatusLoading {
			v.status = StatusFailed
		}
	}
	onChange := v.onChange
	v.mu.Unlock()

	v.closeDone()
	if live && onChange != nil {
		onChange()
	}
}

func (v *View) closeDone() {
	v.doneOnce.Do(func() { close(v.done) })
}
