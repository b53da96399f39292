package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mkamalov/bazar/pkg/queue"
)

var echoCalls atomic.Int32

type echoJob struct {
	Val string `json:"val"`
}

func (echoJob) Name() string { return "test.echo" }

func (j *echoJob) Handle() error {
	echoCalls.Add(1)
	return nil
}

type failJob struct{}

func (failJob) Name() string { return "test.fail" }

func (j *failJob) Handle() error {
	return errors.New("always fails")
}

func init() {
	queue.Register("test.echo", func() queue.Job { return &echoJob{} })
	queue.Register("test.fail", func() queue.Job { return &failJob{} })
	queue.StartWorkers(context.Background(), 2)
}

func TestDispatchAndProcess(t *testing.T) {
	before := echoCalls.Load()

	if err := queue.Dispatch(&echoJob{Val: "hello"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for echoCalls.Load() == before {
		select {
		case <-deadline:
			t.Fatal("job was never processed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestFailedJobRecorded(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	if err := queue.Dispatch(&failJob{}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// 1 attempt + 1s backoff + slack.
	deadline := time.After(4 * time.Second)
	for len(queue.FailedJobs()) == 0 {
		select {
		case <-deadline:
			t.Fatal("expected a failed job to be recorded")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestDispatchConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func() {
			defer wg.Done()
			queue.Dispatch(&echoJob{Val: "c"}) //nolint:errcheck
		}()
	}
	wg.Wait()
}
