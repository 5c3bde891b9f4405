package effects

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidParameter = errors.New("invalid parameter")

// Schedule returns the evenly spaced progress values for a clip of the
// given duration at the given frame rate: round(duration*fps) samples
// (minimum 1), the first at 0.0 and the last at exactly 1.0. A clip
// that rounds to a single frame gets the single value 0.0.
func Schedule(duration float64, fps int) ([]float64, error) {
	if math.IsNaN(duration) || duration <= 0 {
		return nil, fmt.Errorf("%w: duration %.3f", ErrInvalidParameter, duration)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("%w: fps %d", ErrInvalidParameter, fps)
	}

	count := int(math.Round(duration * float64(fps)))
	if count < 1 {
		count = 1
	}

	ts := make([]float64, count)
	if count == 1 {
		return ts, nil
	}
	for i := range ts {
		ts[i] = float64(i) / float64(count-1)
	}
	return ts, nil
}
