package costumeclean

import (
	"image"

	"github.com/corona10/goimagehash"
)

// dedupThreshold is the maximum Hamming distance between two dHash values
// below which two source photos are considered the same shot.
const dedupThreshold = 10

// dedupFilter skips near-identical source photos within one run using
// perceptual hashing. Raw costume datasets commonly contain burst shots and
// re-exports of the same frame; only the first is kept.
//
// The pipeline is single-threaded, so no locking is needed.
type dedupFilter struct {
	hashes []*goimagehash.ImageHash
}

// isDuplicate reports whether img is perceptually identical to an earlier
// image in this run. If hashing fails the image is accepted (graceful
// degradation). Unique images have their hash recorded for later
// comparisons.
func (d *dedupFilter) isDuplicate(img image.Image) bool {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return false
	}
	for _, h := range d.hashes {
		dist, err := hash.Distance(h)
		if err == nil && dist < dedupThreshold {
			return true
		}
	}
	d.hashes = append(d.hashes, hash)
	return false
}
