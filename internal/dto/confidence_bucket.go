package dto

// ConfidenceBucket is one bin of the per-label confidence histogram.
type ConfidenceBucket struct {
	Label string  `json:"label"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}
