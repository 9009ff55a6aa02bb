package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants.
const (
	// motionWorkWidth and motionWorkHeight are the size frames are scaled
	// down to before differencing. Hand tracking runs at 30 FPS, so the
	// motion check has to stay cheap.
	motionWorkWidth  = 160
	motionWorkHeight = 120
	// motionBlurSize is the Gaussian kernel used to suppress sensor noise.
	motionBlurSize = 9
	// motionDiffThreshold is the per-pixel intensity change that counts as
	// movement.
	motionDiffThreshold = 25
)

// MotionDetector reports whether anything is moving in front of the camera,
// by frame differencing on a downscaled grayscale image. The background
// pipeline uses it to drop to a low idle frame rate when nobody is playing.
type MotionDetector struct {
	threshold float64
	baseline  gocv.Mat
	primed    bool
	mu        sync.Mutex
}

// NewMotionDetector creates a MotionDetector. The threshold is the
// percentage of pixels that must change between frames to count as motion;
// 1.0 means 1% of the image.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect compares a frame against the previous one and reports whether
// motion was seen, along with the percentage of pixels that changed. The
// first frame primes the baseline and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	work := m.prepare(frame)
	defer work.Close()

	if !m.primed {
		work.CopyTo(&m.baseline)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(work, m.baseline, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, motionDiffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(mask)
	total := mask.Rows() * mask.Cols()
	changePercent := float64(changed) / float64(total) * 100.0

	work.CopyTo(&m.baseline)

	return changePercent > m.threshold, changePercent
}

// prepare converts a frame to the small blurred grayscale image the
// differencing runs on.
func (m *MotionDetector) prepare(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(gray, &small, image.Pt(motionWorkWidth, motionWorkHeight), 0, 0, gocv.InterpolationArea)

	work := gocv.NewMat()
	gocv.GaussianBlur(small, &work, image.Pt(motionBlurSize, motionBlurSize), 0, 0, gocv.BorderDefault)
	return work
}

// Reset clears the baseline so the next frame primes a fresh one.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearBaseline()
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearBaseline()
}

func (m *MotionDetector) clearBaseline() {
	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.primed = false
}

// SetThreshold sets the percentage of changed pixels that counts as motion.
// Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}
