package app

import (
	"slices"

	"whiteboard/document"
	"whiteboard/geometry"
)

// EventName names an event on the app's event stream.
type EventName string

const (
	// EventPersist fires after a gesture or command changed the document.
	EventPersist EventName = "persist"
	// EventSave and EventSaveAs fire when the user asks to save.
	EventSave   EventName = "save"
	EventSaveAs EventName = "saveAs"
	// EventError carries contract violations and failed commands.
	EventError        EventName = "error"
	EventCreateShapes EventName = "create-shapes"
	EventCreateAssets EventName = "create-assets"
	EventDeleteShapes EventName = "delete-shapes"
	EventDeleteAssets EventName = "delete-assets"
	// EventDropFiles hands dropped files to the host, which reads them and
	// calls back with InsertImage or CreateAssets.
	EventDropFiles EventName = "drop-files"
	EventMount     EventName = "mount"
	// EventChange republishes every document change.
	EventChange EventName = "change"
	// EventTool fires when a tool becomes active.
	EventTool EventName = "tool"
)

// File is a dropped file as the host describes it.
type File struct {
	Name string
	Type string
	Path string
	Size int64
}

// Event is one entry on the event stream. Only the fields relevant to Name
// are set.
type Event struct {
	Name EventName
	// IDs are the shapes or assets created or deleted.
	IDs []string
	// Model is the serialized document for persist, save and saveAs.
	Model *document.Model
	// Path is the requested destination for saveAs, if the host gave one.
	Path   string
	Files  []File
	Point  geometry.Point
	Change document.Change
	Tool   string
	Err    error
}

// Handler receives events.
type Handler func(Event)

type bus struct {
	handlers map[EventName]map[int]Handler
	next     int
}

func (b *bus) init() {
	b.handlers = make(map[EventName]map[int]Handler)
}

func (b *bus) subscribe(name EventName, fn Handler) func() {
	hs, ok := b.handlers[name]
	if !ok {
		hs = make(map[int]Handler)
		b.handlers[name] = hs
	}
	id := b.next
	b.next++
	hs[id] = fn
	return func() { delete(hs, id) }
}

func (b *bus) has(name EventName) bool {
	return len(b.handlers[name]) > 0
}

// publish calls handlers in subscription order.
func (b *bus) publish(e Event) {
	hs := b.handlers[e.Name]
	if len(hs) == 0 {
		return
	}
	keys := make([]int, 0, len(hs))
	for k := range hs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if fn, ok := hs[k]; ok {
			fn(e)
		}
	}
}

// Subscribe registers fn for name and returns a function that removes it.
func (a *App) Subscribe(name EventName, fn Handler) func() {
	return a.bus.subscribe(name, fn)
}

func (a *App) publish(e Event) {
	if e.Name == EventError && e.Err != nil {
		a.log.Error("%v", e.Err)
	}
	a.bus.publish(e)
}

// publishModel publishes name with the serialized document. The document
// is only serialized when someone listens.
func (a *App) publishModel(name EventName, path string) {
	if !a.bus.has(name) {
		return
	}
	m := a.doc.Serialize()
	a.publish(Event{Name: name, Model: &m, Path: path})
}
