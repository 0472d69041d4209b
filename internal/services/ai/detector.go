package ai

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"bridgewatch/internal/dto"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/models"
)

const (
	// DetectionThreshold is the default confidence cutoff for crack boxes.
	DetectionThreshold = 0.6

	// inputSize is the square input resolution of the exported model.
	inputSize = 640
)

// classNames maps model class indexes to labels, in export order.
var classNames = []string{models.LabelCrack, models.LabelSevereCrack}

// DetectorService runs the crack detection network over frames.
type DetectorService struct {
	net       gocv.Net
	modelPath string
	threshold float64
	logger    *logger.Logger
	mu        sync.Mutex
}

// NewDetectorService creates a detector from an ONNX model export. When the
// model cannot be loaded the service is returned anyway and Detect reports
// the error, matching the degraded startup behavior of the rest of the system.
func NewDetectorService(modelPath string, threshold float64, log *logger.Logger) *DetectorService {
	if threshold <= 0 {
		threshold = DetectionThreshold
	}

	service := &DetectorService{
		modelPath: modelPath,
		threshold: threshold,
		logger:    log,
	}

	if err := service.initializeNet(); err != nil {
		service.logger.Warning("Could not initialize detection network: %v", err)
		return service
	}

	return service
}

// initializeNet loads the network from the model file.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	net := gocv.ReadNetFromONNX(s.modelPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.logger.Info("Detection network initialized successfully")
	return nil
}

// Ready reports whether the network was loaded.
func (s *DetectorService) Ready() bool {
	return !s.net.Empty()
}

// Detect runs the network over a frame and returns qualifying crack boxes.
func (s *DetectorService) Detect(frame gocv.Mat) ([]dto.DetectionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.net.Empty() {
		return nil, fmt.Errorf("detection network not initialized")
	}
	if frame.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(inputSize, inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	stride := 4 + len(classNames)
	reshaped := output.Reshape(1, output.Total()/stride)
	defer reshaped.Close()

	rows := make([][]float32, reshaped.Rows())
	for i := 0; i < reshaped.Rows(); i++ {
		row := make([]float32, stride)
		for j := 0; j < stride; j++ {
			row[j] = reshaped.GetFloatAt(i, j)
		}
		rows[i] = row
	}

	return DecodeRows(rows, frame.Cols(), frame.Rows(), s.threshold), nil
}

// DecodeRows converts raw output rows (cx, cy, w, h, per-class scores) into
// detection boxes scaled to the frame size, keeping only boxes whose best
// class score exceeds the threshold.
func DecodeRows(rows [][]float32, frameW, frameH int, threshold float64) []dto.DetectionResult {
	scaleX := float32(frameW) / float32(inputSize)
	scaleY := float32(frameH) / float32(inputSize)

	var results []dto.DetectionResult
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}

		classID := 0
		best := row[4]
		for c := 1; c < len(row)-4; c++ {
			if row[4+c] > best {
				best = row[4+c]
				classID = c
			}
		}

		if float64(best) <= threshold || classID >= len(classNames) {
			continue
		}

		cx, cy, w, h := row[0], row[1], row[2], row[3]
		results = append(results, dto.DetectionResult{
			Label:      strings.ToLower(classNames[classID]),
			Confidence: float64(best),
			X:          int((cx - w/2) * scaleX),
			Y:          int((cy - h/2) * scaleY),
			Width:      int(w * scaleX),
			Height:     int(h * scaleY),
		})
	}

	return results
}

// Annotate draws labeled rectangles on the frame. Plain cracks are green,
// severe cracks red.
func Annotate(frame *gocv.Mat, detections []dto.DetectionResult) {
	green := color.RGBA{G: 255, A: 0}
	red := color.RGBA{R: 255, A: 0}

	for _, detection := range detections {
		boxColor := green
		if detection.Label == models.LabelSevereCrack {
			boxColor = red
		}

		rect := image.Rect(detection.X, detection.Y, detection.X+detection.Width, detection.Y+detection.Height)
		gocv.Rectangle(frame, rect, boxColor, 2)

		label := fmt.Sprintf("%s %.2f", detection.Label, detection.Confidence)
		pt := image.Pt(detection.X, detection.Y-10)
		gocv.PutText(frame, label, pt, gocv.FontHersheySimplex, 0.6, boxColor, 2)
	}
}

// EncodeJPEG encodes a frame as JPEG bytes.
func EncodeJPEG(frame gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	encoded := make([]byte, len(buf.GetBytes()))
	copy(encoded, buf.GetBytes())
	return encoded, nil
}
