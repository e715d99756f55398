package physics

import "github.com/san-kum/motiontwin/internal/dynamo"

// Carriage models the three axes as independent mass-spring-damper systems.
// State layout is [x, vx, y, vy, z, vz]; control is the applied force per
// axis [Fx, Fy, Fz].
type Carriage struct {
	Masses    dynamo.Vec3
	Stiffness dynamo.Vec3
	Damping   dynamo.Vec3
}

func NewCarriage(m Model) *Carriage {
	return &Carriage{
		Masses:    dynamo.Vec3{m.Axes[X].Mass, m.Axes[Y].Mass, m.Axes[Z].Mass},
		Stiffness: m.Stiffness(),
		Damping:   m.Damping(),
	}
}

func (c *Carriage) StateDim() int   { return 6 }
func (c *Carriage) ControlDim() int { return 3 }

func (c *Carriage) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, 6)

	for i := 0; i < 3; i++ {
		pos, vel := x[2*i], x[2*i+1]

		force := 0.0
		if i < len(u) {
			force = u[i]
		}

		dx[2*i] = vel
		dx[2*i+1] = (force - c.Damping[i]*vel - c.Stiffness[i]*pos) / c.Masses[i]
	}

	return dx
}

func (c *Carriage) Energy(x dynamo.State) float64 {
	energy := 0.0
	for i := 0; i < 3; i++ {
		pos, vel := x[2*i], x[2*i+1]
		energy += 0.5*c.Masses[i]*vel*vel + 0.5*c.Stiffness[i]*pos*pos
	}
	return energy
}
