package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// DispatchEventRow mirrors the dispatch_events BigQuery schema.
type DispatchEventRow struct {
	EventID       string             `bigquery:"event_id"`
	EventType     string             `bigquery:"event_type"`
	AggregateType string             `bigquery:"aggregate_type"`
	AggregateID   string             `bigquery:"aggregate_id"`
	OccurredAt    time.Time          `bigquery:"occurred_at"`
	RunID         *string            `bigquery:"run_id"`
	OrderID       *string            `bigquery:"order_id"`
	VendorID      *string            `bigquery:"vendor_id"`
	WindowStart   *time.Time         `bigquery:"window_start"`
	WindowEnd     *time.Time         `bigquery:"window_end"`
	QueuedCount   *int64             `bigquery:"queued_count"`
	Payload       cbigquery.NullJSON `bigquery:"payload"`
}
