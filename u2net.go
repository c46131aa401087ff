package costumeclean

import (
	"fmt"
	"image"
	"path/filepath"

	"gocv.io/x/gocv"
)

// u2netInputSize is the fixed spatial size the pretrained U²-Net variants
// were trained on.
const u2netInputSize = 320

// U2NetModelFile maps a pretrained variant to its ONNX file name inside the
// model directory.
func U2NetModelFile(dir string, size ModelSize) (string, error) {
	switch size {
	case ModelLarge:
		return filepath.Join(dir, "u2net.onnx"), nil
	case ModelSmall:
		return filepath.Join(dir, "u2netp.onnx"), nil
	default:
		return "", fmt.Errorf("invalid u2net size %q (use 'large' or 'small')", size)
	}
}

// U2NetSegmenter runs a pretrained U²-Net salient-object model through the
// OpenCV DNN backend to produce foreground maps. It is not safe for
// concurrent use; the pipeline calls it from a single goroutine.
type U2NetSegmenter struct {
	net gocv.Net
}

// NewU2NetSegmenter loads the ONNX model at modelPath.
func NewU2NetSegmenter(modelPath string) (*U2NetSegmenter, error) {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("cannot load u2net model from %q", modelPath)
	}
	return &U2NetSegmenter{net: net}, nil
}

// Close releases the underlying network.
func (s *U2NetSegmenter) Close() error {
	return s.net.Close()
}

// Segment computes the foreground confidence map for img, min-max normalized
// and resized back to the source dimensions.
func (s *U2NetSegmenter) Segment(img image.Image) (*SegmentationMap, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	// ImageNet normalization with a shared std (the per-channel stds differ
	// by <3%, which is below the model's sensitivity).
	blob := gocv.BlobFromImage(mat, 1.0/(255.0*0.226),
		image.Pt(u2netInputSize, u2netInputSize),
		gocv.NewScalar(0.485*255, 0.456*255, 0.406*255, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	prob := s.net.Forward("")
	defer prob.Close()

	// Fused output d0 has shape 1x1x320x320.
	plane := prob.Reshape(1, u2netInputSize)
	defer plane.Close()

	minV, maxV, _, _ := gocv.MinMaxLoc(plane)
	scale := 255.0
	if maxV > minV {
		scale = 255.0 / float64(maxV-minV)
	}
	mask8 := gocv.NewMat()
	defer mask8.Close()
	plane.ConvertToWithParams(&mask8, gocv.MatTypeCV8U, float32(scale), float32(-float64(minV)*scale))

	b := img.Bounds()
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mask8, &resized, image.Pt(b.Dx(), b.Dy()), 0, 0, gocv.InterpolationLinear)

	gray := image.NewGray(b)
	copy(gray.Pix, resized.ToBytes())
	return NewSegmentationMap(gray), nil
}
