package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/forkful/forkful-backend/internal/dispatch"
	"github.com/forkful/forkful-backend/pkg/logger"
)

// DailyDispatchJobParams configure the daily dispatch job.
type DailyDispatchJobParams struct {
	Logger   *logger.Logger
	Dispatch dispatchRunner
}

type dispatchRunner interface {
	RunDailyDispatch(ctx context.Context, now time.Time) (*dispatch.Result, error)
}

// NewDailyDispatchJob builds the job that queues tomorrow's orders.
func NewDailyDispatchJob(params DailyDispatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dispatch == nil {
		return nil, fmt.Errorf("dispatch service required")
	}
	return &dailyDispatchJob{
		logg:     params.Logger,
		dispatch: params.Dispatch,
		now:      time.Now,
	}, nil
}

type dailyDispatchJob struct {
	logg     *logger.Logger
	dispatch dispatchRunner
	now      func() time.Time
}

func (j *dailyDispatchJob) Name() string { return "daily-dispatch" }

func (j *dailyDispatchJob) Run(ctx context.Context) error {
	result, err := j.dispatch.RunDailyDispatch(ctx, j.now())
	if err != nil {
		return fmt.Errorf("daily dispatch: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"run_id":          result.RunID.String(),
		"window_start":    result.WindowStart,
		"window_end":      result.WindowEnd,
		"queued":          result.Queued,
		"notified":        result.Notified,
		"notify_failures": result.NotifyFailures,
	})
	j.logg.Info(logCtx, "daily dispatch complete")
	return nil
}
