// Package app owns one whiteboard: the document, the camera, the input
// device state and the active tool. It resolves what each pointer event
// lands on, routes events to the tool, and exposes the commands and the
// event stream a renderer or host builds on.
//
// An App is not safe for concurrent use. Hosts call it from one goroutine
// and apply the results of any background work with a single call.
package app

import (
	"whiteboard/camera"
	"whiteboard/document"
	"whiteboard/geometry"
	"whiteboard/input"
	"whiteboard/internal/logger"
	"whiteboard/shape"
	"whiteboard/tool"
)

// Config holds the engine tunables.
type Config struct {
	Tools        tool.Settings
	Camera       camera.Options
	HistoryLimit int
	// InitialTool is activated by New. Empty means select.
	InitialTool string
}

// DefaultConfig returns the stock engine settings.
func DefaultConfig() Config {
	return Config{
		Tools:        tool.DefaultSettings(),
		Camera:       camera.DefaultOptions(),
		HistoryLimit: document.DefaultHistoryLimit,
		InitialTool:  tool.Select,
	}
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithHandler subscribes fn before New validates its components, so
// contract errors found during construction reach it.
func WithHandler(name EventName, fn Handler) Option {
	return func(a *App) {
		a.bus.subscribe(name, fn)
	}
}

// App is one mounted whiteboard.
type App struct {
	cfg        Config
	log        *logger.Logger
	shapes     *shape.Registry
	components Components

	doc      *document.Document
	inputs   *input.Inputs
	viewport *camera.Viewport
	tools    map[string]*tool.Tool
	toolIDs  []string
	current  *tool.Tool
	brush    *geometry.Bounds

	bus     bus
	dirty   bool
	mounted bool
}

// New builds an app from its registries and the renderer's components.
// Nil registries mean the built-in ones. Every shape type in shapes needs a
// component; a missing one is published on the error channel and then
// panics with a *ContractError.
func New(cfg Config, shapes *shape.Registry, tools *tool.Registry, components Components, opts ...Option) *App {
	if shapes == nil {
		shapes = shape.DefaultRegistry()
	}
	if tools == nil {
		tools = tool.DefaultRegistry()
	}
	a := &App{
		cfg:        cfg,
		log:        logger.Discard(),
		shapes:     shapes,
		components: components,
		inputs:     input.New(),
		viewport:   camera.New(cfg.Camera),
		tools:      make(map[string]*tool.Tool),
	}
	a.bus.init()
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithPrefix("app")

	if err := a.components.check(shapes); err != nil {
		a.publish(Event{Name: EventError, Err: err})
		panic(err)
	}

	a.doc = document.New(shapes, document.WithHistoryLimit(cfg.HistoryLimit))
	a.doc.OnChange(a.onChange)

	for _, id := range tools.IDs() {
		f, _ := tools.Get(id)
		a.tools[id] = tool.New(id, a, f)
		a.toolIDs = append(a.toolIDs, id)
	}
	initial := cfg.InitialTool
	if _, ok := a.tools[initial]; !ok {
		initial = tool.Select
	}
	a.SelectTool(initial, nil)
	return a
}

func (a *App) Document() *document.Document { return a.doc }

func (a *App) Inputs() *input.Inputs { return a.inputs }

func (a *App) Viewport() *camera.Viewport { return a.viewport }

func (a *App) Settings() tool.Settings { return a.cfg.Tools }

func (a *App) Logger() *logger.Logger { return a.log }

// Shapes returns the shape registry.
func (a *App) Shapes() *shape.Registry { return a.shapes }

// SetBrush shows or hides the selection brush.
func (a *App) SetBrush(b *geometry.Bounds) {
	a.brush = b
}

// Brush returns the selection brush being dragged, if any.
func (a *App) Brush() (geometry.Bounds, bool) {
	if a.brush == nil {
		return geometry.Bounds{}, false
	}
	return *a.brush, true
}

// SetToolLocked keeps creation tools active after they make a shape.
func (a *App) SetToolLocked(locked bool) {
	a.cfg.Tools.ToolLocked = locked
}

// Tool returns the active tool.
func (a *App) Tool() *tool.Tool { return a.current }

// ToolIDs lists the registered tools in registration order.
func (a *App) ToolIDs() []string { return append([]string(nil), a.toolIDs...) }

// SelectTool deactivates the current tool and activates id with payload.
// Unknown ids are ignored.
func (a *App) SelectTool(id string, payload any) {
	next, ok := a.tools[id]
	if !ok {
		a.log.Warn("unknown tool %q", id)
		return
	}
	if a.current != nil {
		a.current.Deactivate()
	}
	a.current = next
	a.brush = nil
	a.log.Debug("tool %s", id)
	next.Activate(payload)
	// Activating may have handed over to another tool already.
	if a.current == next {
		a.publish(Event{Name: EventTool, Tool: id})
	}
	a.settle()
}

// Transition moves the active tool to one of its states.
func (a *App) Transition(stateID string, payload any) bool {
	ok := a.current.Transition(stateID, payload)
	a.settle()
	return ok
}

// Mount announces that the renderer is attached.
func (a *App) Mount() {
	a.mounted = true
	a.log.Info("mounted")
	a.publish(Event{Name: EventMount})
}

// Mounted reports whether Mount was called.
func (a *App) Mounted() bool { return a.mounted }

// Resize sets the screen rectangle the document is drawn into.
func (a *App) Resize(screen geometry.Bounds) {
	a.viewport.Resize(screen)
}

func (a *App) onChange(c document.Change) {
	switch c.Kind {
	case document.ChangeSession, document.ChangeSelection, document.ChangeLoad:
	default:
		a.dirty = true
	}
	a.publish(Event{Name: EventChange, Change: c})
}

// settle publishes persist once the document has changed and no gesture
// is left open.
func (a *App) settle() {
	if !a.dirty || a.doc.InProgress() {
		return
	}
	a.dirty = false
	a.publishModel(EventPersist, "")
}
