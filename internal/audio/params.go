package audio

// Params holds the current playback parameters. Speed and pitch require a
// render pass to take effect; volume is applied directly at the sink.
type Params struct {
	Speed  float64 `json:"speed"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// DefaultParams returns the neutral parameters used at startup and on reset.
func DefaultParams() Params {
	return Params{Speed: 1.0, Pitch: 0.0, Volume: 1.0}
}
