package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// MaxCamerasToCheck is the highest device index probed during enumeration.
// Continuity Camera and similar virtual devices can land on indices above 0.
const MaxCamerasToCheck = 10

// ErrNoCamera is returned when no camera device can be opened.
var ErrNoCamera = errors.New("no cameras found")

// CameraInfo describes the availability of one probed device index.
type CameraInfo struct {
	Index     int
	Available bool
}

// ProbeFunc reports whether the camera at the given index can be opened.
// It exists so tests can run the selector without camera hardware.
type ProbeFunc func(index int) bool

// gocvProbe opens and immediately releases the device to test availability.
func gocvProbe(index int) bool {
	cap, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return false
	}
	defer cap.Close()
	return cap.IsOpened()
}

// Selector helps pick a usable camera index, prompting interactively when
// the preferred device is unavailable.
type Selector struct {
	probe ProbeFunc
	in    *bufio.Reader
	out   io.Writer
}

// NewSelector creates a Selector reading choices from in and writing
// prompts to out. A nil probe uses real GoCV device probing.
func NewSelector(probe ProbeFunc, in io.Reader, out io.Writer) *Selector {
	if probe == nil {
		probe = gocvProbe
	}
	return &Selector{
		probe: probe,
		in:    bufio.NewReader(in),
		out:   out,
	}
}

// AvailableCameras probes indices 0..MaxCamerasToCheck-1 and reports
// availability for each.
func (s *Selector) AvailableCameras() []CameraInfo {
	cameras := make([]CameraInfo, 0, MaxCamerasToCheck)
	for i := 0; i < MaxCamerasToCheck; i++ {
		cameras = append(cameras, CameraInfo{Index: i, Available: s.probe(i)})
	}
	return cameras
}

// Select returns preferred if that device opens. Otherwise it lists the
// available devices and prompts until the user enters a valid index.
// Invalid input is re-prompted, never fatal. Returns ErrNoCamera when no
// device at all is usable.
func (s *Selector) Select(preferred int) (int, error) {
	if s.probe(preferred) {
		return preferred, nil
	}
	fmt.Fprintf(s.out, "Camera (index %d) not available.\n", preferred)

	cameras := s.AvailableCameras()

	anyAvailable := false
	for _, c := range cameras {
		if c.Available {
			anyAvailable = true
			break
		}
	}
	if !anyAvailable {
		return 0, ErrNoCamera
	}

	fmt.Fprintln(s.out, "Available cameras:")
	for _, c := range cameras {
		status := "Not Available"
		if c.Available {
			status = "Available"
		}
		fmt.Fprintf(s.out, "  Index: %d, %s\n", c.Index, status)
	}

	for {
		fmt.Fprint(s.out, "Enter the index of the camera you want to use: ")

		line, err := s.in.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("read camera selection: %w", err)
		}

		selected, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr != nil {
			fmt.Fprintln(s.out, "Invalid input. Please enter a number.")
			continue
		}

		if selected < 0 || selected >= len(cameras) || !cameras[selected].Available {
			fmt.Fprintln(s.out, "Invalid camera index. Please choose an available camera from the list.")
			continue
		}

		return selected, nil
	}
}
