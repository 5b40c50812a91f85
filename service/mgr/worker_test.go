package mgr

import (
	"errors"
	"testing"
	"time"
)

func TestWorkerLifecycle(t *testing.T) { //nolint:paralleltest
	m := New("test")
	defer m.Cancel()

	done := make(chan struct{})
	m.Go("test worker", func(w *WorkerCtx) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not run")
	}

	if !m.WaitForWorkers(time.Second) {
		t.Error("workers did not finish")
	}
}

func TestWorkerPanicIsCaught(t *testing.T) { //nolint:paralleltest
	m := New("test")

	err := m.Do("panicking worker", func(w *WorkerCtx) error {
		panic("oh no")
	})
	if err == nil {
		t.Fatal("expected error from panicking worker")
	}
}

func TestDoReturnsWorkerError(t *testing.T) { //nolint:paralleltest
	m := New("test")

	wantErr := errors.New("worker error")
	err := m.Do("failing worker", func(w *WorkerCtx) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
}

func TestWaitForWorkers(t *testing.T) { //nolint:paralleltest
	m := New("test")
	defer m.Cancel()

	m.Go("sleeping worker", func(w *WorkerCtx) error {
		select {
		case <-time.After(100 * time.Millisecond):
		case <-w.Done():
		}
		return nil
	})

	if !m.WaitForWorkers(time.Second) {
		t.Error("workers did not finish in time")
	}
}
