package twin

import (
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// DeadZone is the displacement, in mm, that must be exceeded to count as
// motion when tracking direction reversals.
const DeadZone = 0.001

// BacklashTracker remembers the last travel direction of X and Y. Z has no
// backlash compensation.
type BacklashTracker struct {
	last [2]int
}

// Compensate returns target shifted by dir·backlash on every axis whose
// direction of travel changed since the previous call. Displacements inside
// the dead zone leave the stored direction untouched.
func (b *BacklashTracker) Compensate(target, current dynamo.Vec3, backlash [2]float64) dynamo.Vec3 {
	compensated := target
	for axis := 0; axis < 2; axis++ {
		d := target[axis] - current[axis]
		if math.Abs(d) <= DeadZone {
			continue
		}
		dir := 1
		if d < 0 {
			dir = -1
		}
		if dir != b.last[axis] {
			compensated[axis] += float64(dir) * backlash[axis]
			b.last[axis] = dir
		}
	}
	return compensated
}

// Directions returns the stored X and Y directions, each in {-1, 0, +1}.
func (b *BacklashTracker) Directions() [2]int {
	return b.last
}

func (b *BacklashTracker) Reset() {
	b.last = [2]int{}
}
