package train

import (
	"math"

	"github.com/oomph-ac/railcart/game"
)

// Action is a command queued on a train or a single cart, such as waiting at a station or launching. The
// first action of a queue is ticked once per tick until it finishes.
type Action interface {
	// Tick advances the action. m is the cart the action was queued on, or nil for train actions. It
	// returns true once the action finished.
	Tick(g *Group, m *Member) bool
	// MovementControlled returns true if the action sets the speed of the train itself, in which case no
	// gravity is applied.
	MovementControlled() bool
	// MovementSuppressed returns true if the train must not move while the action runs.
	MovementSuppressed() bool
}

// ActionWaitTicks holds the train in place for a fixed amount of ticks.
type ActionWaitTicks struct {
	Ticks int

	elapsed int
}

func (a *ActionWaitTicks) Tick(*Group, *Member) bool {
	if a.elapsed >= a.Ticks {
		return true
	}
	a.elapsed++
	return false
}

func (*ActionWaitTicks) MovementControlled() bool { return false }
func (*ActionWaitTicks) MovementSuppressed() bool { return true }

// ActionWaitForever holds the train in place until the action queue is cleared.
type ActionWaitForever struct{}

func (ActionWaitForever) Tick(*Group, *Member) bool { return false }
func (ActionWaitForever) MovementControlled() bool { return false }
func (ActionWaitForever) MovementSuppressed() bool { return true }

// ActionLaunch accelerates or brakes the train to Velocity, reaching it after travelling Distance blocks.
type ActionLaunch struct {
	Distance float64
	Velocity float64
	// Direction, if HasDirection is set, is the direction the train is launched in. A train heading the
	// other way is reversed first.
	Direction    game.Face
	HasDirection bool

	started        bool
	from           float64
	ticks, elapsed int
}

func (a *ActionLaunch) Tick(g *Group, _ *Member) bool {
	if !a.started {
		a.started = true
		if a.HasDirection && g.Len() > 0 && g.Head().heading.Direction.Unit().Dot(a.Direction.Unit()) < 0 {
			g.Reverse()
		}
		a.from = g.AverageForwardForce()
		avg := (math.Abs(a.from) + math.Abs(a.Velocity)) / 2
		a.ticks = 1
		if avg > 1e-6 {
			a.ticks = max(1, int(math.Ceil(a.Distance/avg)))
		}
	}
	a.elapsed++
	progress := math.Min(1, float64(a.elapsed)/float64(a.ticks))
	g.SetForwardForce(a.from + (a.Velocity-a.from)*progress)
	return a.elapsed >= a.ticks
}

func (*ActionLaunch) MovementControlled() bool { return true }
func (*ActionLaunch) MovementSuppressed() bool { return false }

// tickActions ticks the first action of the queue passed and returns the queue without it if it finished.
func tickActions(queue []Action, g *Group, m *Member) []Action {
	if len(queue) == 0 {
		return queue
	}
	if queue[0].Tick(g, m) {
		queue[0] = nil
		return queue[1:]
	}
	return queue
}
