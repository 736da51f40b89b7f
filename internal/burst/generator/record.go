package generator

// Record is one synthetic document. It is never mutated after generation.
type Record struct {
	Id   string `json:"id"`
	Body string `json:"body"`
}

// Producer yields batches of synthetic records.
type Producer interface {
	// Batch returns exactly n freshly generated records.
	Batch(n int) []Record
}
