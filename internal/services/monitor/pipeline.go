package monitor

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gocv.io/x/gocv"

	"bridgewatch/internal/dto"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/metrics"
	"bridgewatch/internal/models"
	"bridgewatch/internal/mqtt"
	"bridgewatch/internal/repository"
	"bridgewatch/internal/services/ai"
	"bridgewatch/internal/services/capture"
	"bridgewatch/internal/services/websocket"
)

// storeTask carries one frame's qualifying detections to the store workers.
type storeTask struct {
	detections  []dto.DetectionResult
	frame       []byte // annotated JPEG, kept only when a severe crack was seen
	frameID     int
	videoSource string
	severe      bool
}

// Pipeline runs the detection loop: read frame, detect, annotate, publish,
// and hand periodic frames to store workers.
type Pipeline struct {
	detector   *ai.DetectorService
	detections repository.DetectionRepository
	snapshots  repository.SnapshotStore
	publisher  *mqtt.CrackPublisher
	hub        *websocket.HubService
	logger     *logger.Logger
	metrics    *metrics.Metrics

	storeInterval int
	storeQueue    chan storeTask
	wg            sync.WaitGroup

	framesRead int
	labelTotal map[string]int
}

// NewPipeline creates a pipeline and starts its store workers. The publisher
// and hub may be nil (batch scanning runs without them).
func NewPipeline(
	detector *ai.DetectorService,
	detections repository.DetectionRepository,
	snapshots repository.SnapshotStore,
	publisher *mqtt.CrackPublisher,
	hub *websocket.HubService,
	storeInterval, workers int,
	log *logger.Logger,
	m *metrics.Metrics,
) *Pipeline {
	p := &Pipeline{
		detector:      detector,
		detections:    detections,
		snapshots:     snapshots,
		publisher:     publisher,
		hub:           hub,
		logger:        log,
		metrics:       m,
		storeInterval: storeInterval,
		storeQueue:    make(chan storeTask, 100),
		labelTotal:    make(map[string]int),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.storeWorker(i)
	}

	p.logger.Info("Pipeline started - storing every %d frame(s), %d worker(s)", storeInterval, workers)
	return p
}

// Run processes the source until end of stream or camera error.
func (p *Pipeline) Run(source *capture.Source) error {
	frame := gocv.NewMat()
	defer frame.Close()

	for {
		if !source.Read(&frame) {
			p.logger.Warning("End of video or camera error.")
			break
		}
		p.framesRead++
		p.metrics.FramesRead.Inc()

		detections, err := p.detector.Detect(frame)
		if err != nil {
			p.logger.Error("Error detecting cracks: %v", err)
			continue
		}
		p.metrics.FramesProcessed.Inc()

		if len(detections) > 0 {
			ai.Annotate(&frame, detections)
			for _, d := range detections {
				p.labelTotal[d.Label]++
				p.metrics.DetectionsTotal.WithLabelValues(d.Label).Inc()
			}
		}

		crackSeen, severeSeen := Classify(detections)
		if (crackSeen || severeSeen) && p.publisher != nil {
			p.publisher.Publish()
		}

		needStore := len(detections) > 0 && p.storeInterval > 0 && p.framesRead%p.storeInterval == 0
		needBroadcast := p.hub != nil && p.hub.GetClientCount() > 0

		if !needStore && !needBroadcast {
			continue
		}

		encoded, err := ai.EncodeJPEG(frame)
		if err != nil {
			p.logger.Error("Error encoding frame: %v", err)
			continue
		}

		if needStore {
			task := storeTask{
				detections:  detections,
				frameID:     source.FrameIndex(),
				videoSource: source.Name(),
				severe:      severeSeen,
			}
			if severeSeen {
				task.frame = encoded
			}

			select {
			case p.storeQueue <- task:
			default:
				p.metrics.FramesDropped.Inc()
				p.logger.Warning("Store queue full - dropping detections from frame %d", task.frameID)
			}
		}

		if needBroadcast {
			p.broadcastFrame(encoded, source.Name())
		}
	}

	return nil
}

// Classify reports whether any plain crack or severe crack box is present.
func Classify(detections []dto.DetectionResult) (crackSeen, severeSeen bool) {
	for _, d := range detections {
		switch d.Label {
		case models.LabelSevereCrack:
			severeSeen = true
		case models.LabelCrack:
			crackSeen = true
		}
	}
	return crackSeen, severeSeen
}

// broadcastFrame sends the annotated frame to websocket viewers.
func (p *Pipeline) broadcastFrame(encoded []byte, sourceName string) {
	msg := fmt.Sprintf(`{"source":%q,"image":%q}`, sourceName, base64.StdEncoding.EncodeToString(encoded))
	p.hub.Broadcast([]byte(msg))
}

// storeWorker persists queued detection frames.
func (p *Pipeline) storeWorker(workerID int) {
	defer p.wg.Done()

	p.logger.Info("Store worker %d started", workerID)
	for task := range p.storeQueue {
		p.persist(task)
	}
	p.logger.Info("Store worker %d stopped", workerID)
}

// persist uploads the severe snapshot (when present) and inserts one record
// per box. A failed snapshot upload degrades to records without image_id.
func (p *Pipeline) persist(task storeTask) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var imageID *primitive.ObjectID
	if task.severe && task.frame != nil {
		filename := fmt.Sprintf("severe_crack_%s.jpg", uuid.NewString())
		id, err := p.snapshots.Put(filename, task.frame)
		if err != nil {
			p.logger.Warning("Failed to store snapshot, keeping record without image: %v", err)
		} else {
			imageID = &id
			p.metrics.SnapshotsStored.Inc()
		}
	}

	now := time.Now().UTC()
	records := make([]models.Detection, 0, len(task.detections))
	for _, d := range task.detections {
		record := models.Detection{
			Timestamp:   now,
			Label:       d.Label,
			Confidence:  d.Confidence,
			FrameID:     task.frameID,
			VideoSource: task.videoSource,
		}
		if d.Label == models.LabelSevereCrack {
			record.ImageID = imageID
		}
		records = append(records, record)
	}

	if err := p.detections.InsertBatch(ctx, records); err != nil {
		p.logger.Error("Failed to store detections: %v", err)
		p.metrics.StoreErrors.Inc()
		return
	}

	p.logger.Info("Stored %d detection(s) from frame %d of %s", len(records), task.frameID, task.videoSource)
}

// Stop drains the store queue and waits for the workers.
func (p *Pipeline) Stop() {
	close(p.storeQueue)
	p.wg.Wait()
	p.logger.Info("All store workers stopped")
}

// FramesRead returns the number of frames read so far.
func (p *Pipeline) FramesRead() int {
	return p.framesRead
}

// LabelTotals returns per-label detection counts seen so far.
func (p *Pipeline) LabelTotals() map[string]int {
	totals := make(map[string]int, len(p.labelTotal))
	for k, v := range p.labelTotal {
		totals[k] = v
	}
	return totals
}
