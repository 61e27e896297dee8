package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/forkful/forkful-backend/api/middleware"
	"github.com/forkful/forkful-backend/api/responses"
	"github.com/forkful/forkful-backend/api/validators"
	"github.com/forkful/forkful-backend/internal/schedules"
	pkgerrors "github.com/forkful/forkful-backend/pkg/errors"
	"github.com/forkful/forkful-backend/pkg/logger"
)

type createScheduleItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

type createScheduleRequest struct {
	VendorID        string                      `json:"vendor_id" validate:"required,uuid"`
	DeliveryDate    *time.Time                  `json:"delivery_date"`
	DeliveryDays    []string                    `json:"delivery_days"`
	TimeSlot        string                      `json:"time_slot" validate:"required"`
	DeliveryAddress string                      `json:"delivery_address" validate:"required"`
	Note            string                      `json:"note"`
	Items           []createScheduleItemRequest `json:"items" validate:"required,min=1,dive"`
}

type updateScheduleDaysRequest struct {
	Days []string `json:"days" validate:"required,min=1"`
}

// CreateSchedule registers a new scheduled order for the authenticated customer.
func CreateSchedule(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedules service unavailable"))
			return
		}

		customerID, err := customerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createScheduleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendorID, err := uuid.Parse(body.VendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id"))
			return
		}

		params := schedules.CreateParams{
			CustomerID:      customerID,
			VendorID:        vendorID,
			DeliveryDate:    body.DeliveryDate,
			DeliveryDays:    body.DeliveryDays,
			TimeSlot:        body.TimeSlot,
			DeliveryAddress: body.DeliveryAddress,
			Note:            body.Note,
		}
		for _, item := range body.Items {
			menuItemID, err := uuid.Parse(item.MenuItemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid menu item id"))
				return
			}
			params.Items = append(params.Items, schedules.CreateItemParams{
				MenuItemID: menuItemID,
				Quantity:   item.Quantity,
			})
		}

		order, err := svc.Create(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListSchedules returns the customer's scheduled orders, newest first.
func ListSchedules(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedules service unavailable"))
			return
		}

		customerID, err := customerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.QueryLimit(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.List(r.Context(), schedules.ListParams{
			CustomerID: customerID,
			Limit:      limit,
			Cursor:     validators.QueryCursor(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetSchedule returns one of the customer's scheduled orders.
func GetSchedule(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedules service unavailable"))
			return
		}

		customerID, err := customerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scheduleID, err := scheduleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), customerID, scheduleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PauseSchedule suspends a scheduled order until resumed.
func PauseSchedule(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return scheduleTransition(svc, logg, "paused", svc.Pause)
}

// ResumeSchedule returns a paused order to the active rotation.
func ResumeSchedule(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return scheduleTransition(svc, logg, "scheduled", svc.Resume)
}

// CancelSchedule permanently cancels a scheduled order.
func CancelSchedule(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return scheduleTransition(svc, logg, "cancelled", svc.Cancel)
}

func scheduleTransition(svc schedules.Service, logg *logger.Logger, status string, transition func(ctx context.Context, customerID, scheduleID uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedules service unavailable"))
			return
		}

		customerID, err := customerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scheduleID, err := scheduleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := transition(r.Context(), customerID, scheduleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": status})
	}
}

// UpdateScheduleDays replaces the recurring weekday selection on a schedule.
func UpdateScheduleDays(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "schedules service unavailable"))
			return
		}

		customerID, err := customerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scheduleID, err := scheduleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateScheduleDaysRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateDays(r.Context(), schedules.UpdateDaysParams{
			CustomerID: customerID,
			ScheduleID: scheduleID,
			Days:       body.Days,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func customerFromContext(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer context missing")
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return uid, nil
}

func scheduleIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "scheduleId")
	scheduleID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid schedule id")
	}
	return scheduleID, nil
}
