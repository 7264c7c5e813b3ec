package elab

import (
	"log/slog"

	"github.com/sarchlab/gearsim/hier"
)

// Context is the explicit elaboration-time state container: one Graph,
// one current-hier stack, one Registry, all owned by a single value
// threaded through elaboration instead of mutated package-level
// globals.
type Context struct {
	Graph    *hier.Graph
	Registry *Registry
	hierStack []hier.NodeID
}

// NewContext creates a Context rooted at a fresh hier.Graph with the
// default Registry.
func NewContext() *Context {
	return &Context{
		Graph:    hier.NewGraph(),
		Registry: DefaultRegistry(),
	}
}

// CurrentHier returns the node currently on top of the scoped hier
// stack, or the graph root if nothing has been pushed.
func (c *Context) CurrentHier() hier.NodeID {
	if len(c.hierStack) == 0 {
		return c.Graph.Root()
	}
	return c.hierStack[len(c.hierStack)-1]
}

// PushHier pushes node as the current hierarchy scope; callers must pair
// every push with a deferred PopHier so the stack unwinds on every exit
// path, including failure.
func (c *Context) PushHier(node hier.NodeID) {
	c.hierStack = append(c.hierStack, node)
}

// PopHier pops the most recently pushed hierarchy scope.
func (c *Context) PopHier() {
	if len(c.hierStack) == 0 {
		return
	}
	c.hierStack = c.hierStack[:len(c.hierStack)-1]
}

// WithHier runs fn with node pushed as the current hierarchy scope,
// guaranteeing the pop even if fn panics or returns an error.
func (c *Context) WithHier(node hier.NodeID, fn func() error) (err error) {
	c.PushHier(node)
	defer c.PopHier()
	defer func() {
		if r := recover(); r != nil {
			c.Graph.Remove(node)
			panic(r)
		}
	}()

	if err = fn(); err != nil {
		if c.Registry.DebugTrace {
			slog.Info("elab", "event", "construction failed, removing node", "path", c.Graph.Path(node), "uid", c.Graph.Node(node).UID.String(), "err", err)
		}
		c.Graph.Remove(node)
	}
	return err
}
