package app

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/theremin/internal/detector"
)

// Overlay colors.
var (
	overlayWhite = color.RGBA{R: 255, G: 255, B: 255}
	overlayGreen = color.RGBA{G: 220, B: 80}
	overlayDim   = color.RGBA{R: 90, G: 90, B: 90}
	overlayRed   = color.RGBA{R: 230, G: 60, B: 60}
)

const volumeBarCount = 10

// DrawOverlay draws the playback HUD onto a camera frame: the detected hand
// landmarks, a volume bar row at the top, the current speed and pitch in the
// bottom corners, and the key bindings.
func DrawOverlay(frame *gocv.Mat, hands []detector.HandLandmarks, st Status) {
	w := frame.Cols()
	h := frame.Rows()

	drawHands(frame, hands, w, h)
	drawVolumeBars(frame, st.Params.Volume, w)

	gocv.PutText(frame, fmt.Sprintf("speed %.2fx", st.Params.Speed),
		image.Pt(10, h-40), gocv.FontHersheySimplex, 0.6, overlayWhite, 2)
	gocv.PutText(frame, fmt.Sprintf("pitch %+.1f st", st.Params.Pitch),
		image.Pt(w-180, h-40), gocv.FontHersheySimplex, 0.6, overlayWhite, 2)

	if st.Paused {
		gocv.PutText(frame, "PAUSED",
			image.Pt(w/2-60, h/2), gocv.FontHersheySimplex, 1.0, overlayRed, 2)
	}

	gocv.PutText(frame, "q quit  p play/pause  r reset  s save preset",
		image.Pt(10, h-12), gocv.FontHersheySimplex, 0.45, overlayDim, 1)
}

// drawVolumeBars draws a centered row of bars, lit in proportion to the
// current volume.
func drawVolumeBars(frame *gocv.Mat, volume float64, w int) {
	const (
		barW = 14
		barH = 28
		gap  = 6
		top  = 20
	)

	lit := int(volume*volumeBarCount + 0.5)
	total := volumeBarCount*(barW+gap) - gap
	x0 := (w - total) / 2

	for i := 0; i < volumeBarCount; i++ {
		x := x0 + i*(barW+gap)
		r := image.Rect(x, top, x+barW, top+barH)

		col := overlayDim
		if i < lit {
			col = overlayGreen
		}
		gocv.Rectangle(frame, r, col, -1)
	}

	gocv.PutText(frame, fmt.Sprintf("volume %3.0f%%", volume*100),
		image.Pt(x0, top+barH+20), gocv.FontHersheySimplex, 0.5, overlayWhite, 1)
}

// drawHands draws each hand's landmarks and a line between the thumb and
// index fingertips showing the pinch control.
func drawHands(frame *gocv.Mat, hands []detector.HandLandmarks, w, h int) {
	toPixel := func(p detector.Point3D) image.Point {
		return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
	}

	for i := range hands {
		for _, p := range hands[i].Points {
			gocv.Circle(frame, toPixel(p), 3, overlayGreen, -1)
		}

		thumb, index := hands[i].PinchPoints()
		gocv.Line(frame, toPixel(thumb), toPixel(index), overlayWhite, 2)
	}
}
