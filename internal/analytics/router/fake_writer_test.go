package router

import (
	"context"

	"github.com/forkful/forkful-backend/internal/analytics/types"
)

type fakeWriter struct {
	inserted []types.DispatchEventRow
	err      error
}

func (f *fakeWriter) InsertDispatchEvent(_ context.Context, row types.DispatchEventRow) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, row)
	return nil
}
