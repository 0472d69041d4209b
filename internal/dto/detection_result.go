package dto

// DetectionResult is a single box returned by the crack detector.
type DetectionResult struct {
	Label      string
	Confidence float64
	X          int
	Y          int
	Width      int
	Height     int
}
