package dropzone

import (
	"log/slog"
	"sync"

	"github.com/dgallion1/promark/internal/pipeline"
)

// State is the drag state of the surface.
type State string

const (
	Idle     State = "idle"
	Dragging State = "dragging"
)

// Event is one drag event delivered to the surface.
type Event struct {
	Target   *Element
	Files    []pipeline.File
	HasFiles bool
}

func (ev Event) carriesFiles() bool {
	return ev.HasFiles || len(ev.Files) > 0
}

// Dropper accepts dropped files. *pipeline.Orchestrator satisfies it.
type Dropper interface {
	AcceptDrop(files []pipeline.File) (*pipeline.Job, bool)
}

// Controller tracks whether files are being dragged over the surface and
// forwards drops to the pipeline.
type Controller struct {
	mu      sync.Mutex
	surface *Surface
	dropper Dropper
	log     *slog.Logger
	state   State
}

func NewController(surface *Surface, d Dropper, log *slog.Logger) *Controller {
	return &Controller{surface: surface, dropper: d, log: log, state: Idle}
}

func (c *Controller) Surface() *Surface { return c.surface }

// DragEnter starts a drag when the event carries files.
func (c *Controller) DragEnter(ev Event) {
	if !ev.carriesFiles() {
		return
	}
	c.transition(Dragging, "drag_enter", ev.Target)
}

// DragOver reports that the default browser action is suppressed. The state
// does not change.
func (c *Controller) DragOver(Event) bool {
	return true
}

// DragLeave ends the drag only when the pointer leaves the root itself.
// Leaving a descendant fires while still inside the surface.
func (c *Controller) DragLeave(ev Event) {
	if ev.Target != c.surface.Root() {
		return
	}
	c.transition(Idle, "drag_leave", ev.Target)
}

// Drop returns the surface to idle and hands the files to the pipeline.
func (c *Controller) Drop(ev Event) (*pipeline.Job, bool) {
	c.transition(Idle, "drop", ev.Target)
	return c.dropper.AcceptDrop(ev.Files)
}

// Active reports whether the drop overlay should show.
func (c *Controller) Active() bool {
	return c.State() == Dragging
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) transition(to State, event string, target *Element) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	if from != to {
		c.log.Debug("drag state changed", "event", event, "target", target.ID(), "from", from, "to", to)
	}
}
