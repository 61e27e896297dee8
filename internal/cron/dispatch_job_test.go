package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/forkful/forkful-backend/internal/dispatch"
	"github.com/forkful/forkful-backend/pkg/logger"
	"github.com/google/uuid"
)

type fakeDispatcher struct {
	result  *dispatch.Result
	err     error
	lastNow time.Time
	calls   int
}

func (f *fakeDispatcher) RunDailyDispatch(ctx context.Context, now time.Time) (*dispatch.Result, error) {
	f.calls++
	f.lastNow = now
	return f.result, f.err
}

func TestDailyDispatchJobRunsWithCurrentTime(t *testing.T) {
	now := time.Date(2026, 8, 31, 2, 0, 0, 0, time.UTC)
	dispatcher := &fakeDispatcher{result: &dispatch.Result{RunID: uuid.New(), Queued: 5}}
	jobIface, err := NewDailyDispatchJob(DailyDispatchJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Dispatch: dispatcher,
	})
	if err != nil {
		t.Fatalf("NewDailyDispatchJob: %v", err)
	}
	job := jobIface.(*dailyDispatchJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected one dispatch run, got %d", dispatcher.calls)
	}
	if !dispatcher.lastNow.Equal(now) {
		t.Fatalf("expected now %s forwarded, got %s", now, dispatcher.lastNow)
	}
}

func TestDailyDispatchJobPropagatesErrors(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("db down")}
	job, err := NewDailyDispatchJob(DailyDispatchJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Dispatch: dispatcher,
	})
	if err != nil {
		t.Fatalf("NewDailyDispatchJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
