package train

import "github.com/df-mc/dragonfly/server/block/cube"

// Context is passed to cancellable handler methods.
type Context struct {
	cancel bool
}

// Cancel cancels the action the handler was called for.
func (ctx *Context) Cancel() {
	ctx.cancel = true
}

// Cancelled returns true if Cancel was called.
func (ctx *Context) Cancelled() bool {
	return ctx.cancel
}

// Handler handles lifecycle events of the trains in a simulation.
type Handler interface {
	// HandleCreate is called when a train is created, split off or reloaded.
	HandleCreate(g *Group)
	// HandleRemove is called when a train is removed.
	HandleRemove(g *Group)
	// HandleUnload is called when a train is stored offline.
	HandleUnload(g *Group)
	// HandleLink is called before the train donor is merged into the train g. Cancelling the context
	// keeps the two trains apart.
	HandleLink(ctx *Context, g, donor *Group)
	// HandleSplit is called after the carts of created were split off g.
	HandleSplit(g, created *Group)
	// HandleFailure is called when ticking a train failed unexpectedly.
	HandleFailure(g *Group, err error)
}

// NopHandler implements Handler without doing anything.
type NopHandler struct{}

func (NopHandler) HandleCreate(*Group) {}
func (NopHandler) HandleRemove(*Group) {}
func (NopHandler) HandleUnload(*Group) {}
func (NopHandler) HandleLink(*Context, *Group, *Group) {}
func (NopHandler) HandleSplit(*Group, *Group) {}
func (NopHandler) HandleFailure(*Group, error) {}

// SignListener receives the notifications needed by trackside signs. Listeners may command the train they
// are called for, for example by stopping or launching it.
type SignListener interface {
	// OnBlockChange is called when a cart moves from one rail block to another.
	OnBlockChange(m *Member, from, to cube.Pos)
	OnMemberEnter(m *Member, sign cube.Pos)
	OnMemberLeave(m *Member, sign cube.Pos)
	// OnGroupEnter is called when the first cart of a train enters a sign.
	OnGroupEnter(g *Group, sign cube.Pos)
	// OnGroupLeave is called when the last cart of a train leaves a sign.
	OnGroupLeave(g *Group, sign cube.Pos)
	// OnGroupUpdate is called every tick for every sign a train is on.
	OnGroupUpdate(g *Group, sign cube.Pos)
}

// NopSignListener implements SignListener without doing anything.
type NopSignListener struct{}

func (NopSignListener) OnBlockChange(*Member, cube.Pos, cube.Pos) {}
func (NopSignListener) OnMemberEnter(*Member, cube.Pos) {}
func (NopSignListener) OnMemberLeave(*Member, cube.Pos) {}
func (NopSignListener) OnGroupEnter(*Group, cube.Pos) {}
func (NopSignListener) OnGroupLeave(*Group, cube.Pos) {}
func (NopSignListener) OnGroupUpdate(*Group, cube.Pos) {}

// NetworkSync keeps viewers of a train up to date. The simulation only tells it what changed.
type NetworkSync interface {
	// Bind is called for every cart of a train that needs its network binding (re)installed.
	Bind(m *Member)
	// MarkDirty is called once per tick for every train that moved.
	MarkDirty(g *Group)
}

// NopNetworkSync implements NetworkSync without doing anything.
type NopNetworkSync struct{}

func (NopNetworkSync) Bind(*Member) {}
func (NopNetworkSync) MarkDirty(*Group) {}
