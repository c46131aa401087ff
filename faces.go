package costumeclean

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

const (
	// minFaceSize is the smallest detection window in pixels. Costume photos
	// are full-body shots, so tiny detections are noise.
	minFaceSize = 20

	// faceQualityThreshold filters low-confidence cascade detections.
	faceQualityThreshold = 5.0

	// faceClusterIoU is the intersection-over-union threshold used to merge
	// overlapping detections of the same face.
	faceClusterIoU = 0.2
)

// PigoDetector detects faces with the pigo pixel-intensity-comparison
// cascade. It is pure Go and needs only the binary cascade file (the
// "facefinder" model).
type PigoDetector struct {
	classifier *pigo.Pigo
}

// NewPigoDetector reads and unpacks the binary cascade at cascadePath.
func NewPigoDetector(cascadePath string) (*PigoDetector, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("read face cascade: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack face cascade: %w", err)
	}
	return &PigoDetector{classifier: classifier}, nil
}

// DetectFaces runs the cascade over img and returns one rectangle per
// clustered detection above the quality threshold.
func (d *PigoDetector) DetectFaces(img image.Image) ([]image.Rectangle, error) {
	b := img.Bounds()
	cols, rows := b.Dx(), b.Dy()
	maxSize := cols
	if rows < cols {
		maxSize = rows
	}

	params := pigo.CascadeParams{
		MinSize:     minFaceSize,
		MaxSize:     maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, faceClusterIoU)

	var faces []image.Rectangle
	for _, det := range dets {
		if det.Q < faceQualityThreshold {
			continue
		}
		half := det.Scale / 2
		faces = append(faces, image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half))
	}
	return faces, nil
}
