package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/forkful/forkful-backend/api/responses"
	"github.com/forkful/forkful-backend/internal/dispatch"
	pkgerrors "github.com/forkful/forkful-backend/pkg/errors"
	"github.com/forkful/forkful-backend/pkg/logger"
)

// DispatchRunner executes a daily dispatch cycle.
type DispatchRunner interface {
	RunDailyDispatch(ctx context.Context, now time.Time) (*dispatch.Result, error)
}

// RunDispatch triggers the daily dispatch cycle on demand. Re-runs are safe
// because already queued orders are skipped by the status filter.
func RunDispatch(svc DispatchRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		result, err := svc.RunDailyDispatch(r.Context(), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logg.Info(logg.WithFields(r.Context(), map[string]any{
			"run_id": result.RunID.String(),
			"queued": result.Queued,
		}), "dispatch run triggered manually")
		responses.WriteSuccess(w, result)
	}
}
