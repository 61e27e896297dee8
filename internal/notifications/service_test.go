package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/forkful/forkful-backend/pkg/db/models"
	pkgerrors "github.com/forkful/forkful-backend/pkg/errors"
	"github.com/forkful/forkful-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeNotificationsRepo struct {
	rows       []models.Notification
	next       *pagination.Cursor
	listErr    error
	markResult markResult
	markAll    int64
	deleted    int64
	lastCutoff time.Time
}

func (f *fakeNotificationsRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeNotificationsRepo) Create(ctx context.Context, notification *models.Notification) error {
	f.rows = append(f.rows, *notification)
	return nil
}

func (f *fakeNotificationsRepo) List(ctx context.Context, params ListQuery) ([]models.Notification, *pagination.Cursor, error) {
	return f.rows, f.next, f.listErr
}

func (f *fakeNotificationsRepo) MarkRead(ctx context.Context, vendorID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	return f.markResult, nil
}

func (f *fakeNotificationsRepo) MarkAllRead(ctx context.Context, vendorID uuid.UUID, now time.Time) (int64, error) {
	return f.markAll, nil
}

func (f *fakeNotificationsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	return f.deleted, nil
}

func TestListRequiresVendorID(t *testing.T) {
	svc, _ := NewService(&fakeNotificationsRepo{})
	_, err := svc.List(context.Background(), ListParams{})
	assertErrCode(t, err, pkgerrors.CodeValidation)
}

func TestListReturnsCursor(t *testing.T) {
	next := &pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	repo := &fakeNotificationsRepo{
		rows: []models.Notification{{ID: uuid.New()}},
		next: next,
	}
	svc, _ := NewService(repo)

	result, err := svc.List(context.Background(), ListParams{VendorID: uuid.New()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Cursor == "" {
		t.Fatal("expected encoded cursor")
	}
	parsed, err := pagination.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("cursor should round-trip: %v", err)
	}
	if parsed.ID != next.ID {
		t.Fatal("cursor id mismatch")
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, _ := NewService(&fakeNotificationsRepo{})
	_, err := svc.List(context.Background(), ListParams{VendorID: uuid.New(), Cursor: "%%%"})
	assertErrCode(t, err, pkgerrors.CodeValidation)
}

func TestMarkReadNotFound(t *testing.T) {
	repo := &fakeNotificationsRepo{markResult: markResult{Found: false}}
	svc, _ := NewService(repo)
	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	assertErrCode(t, err, pkgerrors.CodeNotFound)
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	repo := &fakeNotificationsRepo{markAll: 4}
	svc, _ := NewService(repo)
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4, got %d", count)
	}
}

func TestCleanupPassesCutoff(t *testing.T) {
	repo := &fakeNotificationsRepo{deleted: 7}
	svc, _ := NewService(repo)
	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	count, err := svc.CleanupOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("CleanupOlderThan: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 deleted, got %d", count)
	}
	if !repo.lastCutoff.Equal(cutoff) {
		t.Fatal("cutoff not forwarded to repository")
	}
}

func assertErrCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}
