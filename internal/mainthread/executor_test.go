package mainthread

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func startExecutor(t *testing.T) *Executor {
	t.Helper()
	e := New(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return e
}

func TestCall_ReturnsResult(t *testing.T) {
	e := startExecutor(t)
	got, err := Call(context.Background(), e, func() int { return 42 })
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestDo_RunsTasksInSubmissionOrder(t *testing.T) {
	e := New(0, nil)

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	// Queue all tasks before the consumer starts so that the order is fixed
	// by enqueue order alone.
	for i := 0; i < 20; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			_ = e.Do(context.Background(), func() {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
			})
		}()
		for len(e.tasks) != i+1 {
			time.Sleep(time.Millisecond)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = e.Run(ctx) }()
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestDo_TasksNeverOverlap(t *testing.T) {
	e := startExecutor(t)

	var (
		active  int
		maxSeen int
		mu      sync.Mutex
		wg      sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Do(context.Background(), func() {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()
				time.Sleep(100 * time.Microsecond)
				mu.Lock()
				active--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Errorf("max concurrent tasks = %d, want 1", maxSeen)
	}
}

func TestDo_TimeoutLeavesExecutorUsable(t *testing.T) {
	e := startExecutor(t)

	release := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := e.Do(ctx, func() { <-release })
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	close(release)

	got, err := Call(context.Background(), e, func() string { return "ok" })
	if err != nil || got != "ok" {
		t.Errorf("after timeout: got %q, %v", got, err)
	}
}

func TestDo_PanicIsReported(t *testing.T) {
	e := startExecutor(t)

	err := e.Do(context.Background(), func() { panic("boom") })
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if pe.Value != "boom" {
		t.Errorf("panic value = %v", pe.Value)
	}
	if _, err := Call(context.Background(), e, func() bool { return true }); err != nil {
		t.Errorf("executor unusable after panic: %v", err)
	}
}

func TestDo_AfterStop(t *testing.T) {
	e := New(1, nil)
	e.Stop()
	e.Stop()
	if err := e.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("err = %v, want ErrStopped", err)
	}
}

func TestRun_ReturnsWhenContextCancelled(t *testing.T) {
	e := New(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	if err := e.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("Do after Run returned: %v", err)
	}
}

func TestBusy_OnlyInsideTask(t *testing.T) {
	e := startExecutor(t)
	if e.Busy() {
		t.Error("idle executor reports busy")
	}
	inside, err := Call(context.Background(), e, e.Busy)
	if err != nil {
		t.Fatal(err)
	}
	if !inside {
		t.Error("Busy() = false inside a task")
	}
}
