package payloads

// OrderQueuedEvent is the wire payload emitted when a daily run queues a
// scheduled order.
type OrderQueuedEvent struct {
	OrderID     string `json:"order_id"`
	VendorID    string `json:"vendor_id"`
	RunID       string `json:"run_id"`
	WindowStart string `json:"window_start"`
}

// RunCompletedEvent is the wire payload summarizing one daily dispatch run.
type RunCompletedEvent struct {
	RunID       string `json:"run_id"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	Queued      int64  `json:"queued"`
}

// OrderDispatchedEvent is the wire payload emitted when a vendor accepts a
// queued order.
type OrderDispatchedEvent struct {
	OrderID      string `json:"order_id"`
	VendorID     string `json:"vendor_id"`
	DispatchedAt string `json:"dispatched_at"`
}
