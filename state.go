package warp

import (
	"encoding/json"
	"fmt"
)

// State is the persisted form of one image's warp configuration: the
// ordered control-point coordinate pairs (device-pixel-ratio-scaled) and
// the warp-mode flag. It round-trips through JSON without precision loss
// beyond floating-point representation, and point order is preserved.
type State struct {
	Points  [][2]float64 `json:"points"`
	Enabled bool         `json:"enabled"`
}

// MarshalState captures the image's current control points and warp flag.
func (w *WarpableImage) MarshalState() ([]byte, error) {
	points := w.ctrl.Points()
	s := State{
		Points:  make([][2]float64, len(points)),
		Enabled: w.enabled,
	}
	for i, p := range points {
		s.Points[i] = [2]float64{p.X, p.Y}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("warp: marshal state: %w", err)
	}
	return data, nil
}

// RestoreState replaces the image's control points and warp flag with a
// previously marshaled State. Offsets are re-normalized against the
// restored points' bounding frame.
func (w *WarpableImage) RestoreState(data []byte) error {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("warp: restore state: %w", err)
	}
	points := make(ControlPointSet, len(s.Points))
	for i, p := range s.Points {
		points[i] = Pt(p[0], p[1])
	}
	if err := w.ctrl.setPoints(points); err != nil {
		return err
	}
	w.enabled = s.Enabled
	w.sched.Invalidate()
	return nil
}
