package planner

import (
	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/optim"
	"github.com/san-kum/motiontwin/internal/twin"
)

// Result is one planned and simulated move. Results are shared through the
// cache and must be treated as read-only.
type Result struct {
	From      dynamo.Vec3        `json:"from"`
	To        dynamo.Vec3        `json:"to"`
	Profile   *optim.Profile     `json:"profile"`
	Trace     *twin.Trace        `json:"trace"`
	Quality   twin.Quality       `json:"quality"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Optimized bool               `json:"optimized"`
	Warning   string             `json:"warning,omitempty"`
	Cost      float64            `json:"cost"`
	Controls  [][3]float64       `json:"controls,omitempty"`
}

// PathResult aggregates the overall quality of consecutive moves.
type PathResult struct {
	Segments []*Result `json:"segments"`
	Average  float64   `json:"average_quality"`
	Min      float64   `json:"min_quality"`
	Max      float64   `json:"max_quality"`
}

// ProfileTrajectory turns profile keyframes into waypoints at the
// keyframes' own times and positions.
func ProfileTrajectory(p *optim.Profile) twin.Trajectory {
	if p == nil {
		return nil
	}
	traj := make(twin.Trajectory, len(p.Keyframes))
	for i, kf := range p.Keyframes {
		traj[i] = twin.Waypoint{Time: kf.Time, Target: kf.Position}
	}
	return traj
}
