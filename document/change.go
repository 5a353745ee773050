package document

// ChangeKind classifies a Change.
type ChangeKind string

const (
	ChangeShapesAdded   ChangeKind = "shapes-added"
	ChangeShapesUpdated ChangeKind = "shapes-updated"
	ChangeShapesDeleted ChangeKind = "shapes-deleted"
	ChangeOrder         ChangeKind = "order"
	ChangeBindings      ChangeKind = "bindings"
	ChangeAssets        ChangeKind = "assets"
	ChangeSelection     ChangeKind = "selection"
	ChangeSession       ChangeKind = "session"
	ChangePages         ChangeKind = "pages"
	// ChangeRestore is sent after undo, redo or cancel rewrote a page.
	ChangeRestore ChangeKind = "restore"
	// ChangeLoad is sent after the whole document was replaced.
	ChangeLoad ChangeKind = "load"
)

// Change describes one mutation. IDs are the shapes, bindings, assets or
// pages it touched, depending on Kind.
type Change struct {
	Kind   ChangeKind
	PageID string
	IDs    []string
}
