package capture

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// Source wraps a video capture device or file.
type Source struct {
	cap  *gocv.VideoCapture
	name string
}

// Open opens a capture source. A numeric value is treated as a camera device
// index and gets a generated session name; anything else is a video file path
// whose base name identifies the source.
func Open(videoSource string) (*Source, error) {
	if deviceID, err := strconv.Atoi(videoSource); err == nil {
		cap, err := gocv.OpenVideoCapture(deviceID)
		if err != nil {
			return nil, fmt.Errorf("failed to open camera %d: %w", deviceID, err)
		}
		return &Source{
			cap:  cap,
			name: fmt.Sprintf("webcam_%s", uuid.NewString()[:8]),
		}, nil
	}

	cap, err := gocv.OpenVideoCapture(videoSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open video file %s: %w", videoSource, err)
	}
	return &Source{
		cap:  cap,
		name: filepath.Base(videoSource),
	}, nil
}

// Read reads the next frame into the given Mat. Returns false on end of
// stream or camera error.
func (s *Source) Read(frame *gocv.Mat) bool {
	return s.cap.Read(frame) && !frame.Empty()
}

// FrameIndex returns the zero-based index of the next frame to be read.
func (s *Source) FrameIndex() int {
	return int(s.cap.Get(gocv.VideoCapturePosFrames))
}

// Name returns the video source name used in detection records.
func (s *Source) Name() string {
	return s.name
}

// Close releases the capture device.
func (s *Source) Close() error {
	return s.cap.Close()
}
