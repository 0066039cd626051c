package domain

// GenerationResult reports what a generator did for one event.
type GenerationResult struct {
	Reference      Reference `json:"reference"`
	PeriodKey      string    `json:"periodKey,omitempty"`
	TransactionIDs []string  `json:"transactionIDs"`
	// Duplicate is set when an earlier delivery already produced the postings; nothing was written.
	Duplicate bool `json:"duplicate"`
}
