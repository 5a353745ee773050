package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whiteboard/document"
	"whiteboard/internal/storage"
)

func model(page string) document.Model {
	return document.Model{
		CurrentPageID: page,
		SelectedIDs:   []string{},
		Pages:         []document.PageModel{{ID: page, Name: "Page 1"}},
		Assets:        []document.Asset{},
	}
}

func TestStore_Path(t *testing.T) {
	s := NewStore("/boards")
	assert.Equal(t, filepath.Join("/boards", "plan.json"), s.Path("plan"))
	assert.Equal(t, filepath.Join("/boards", "plan.json"), s.Path("plan.json"))
	assert.Equal(t, "/tmp/x.json", s.Path("/tmp/x.json"))
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "boards")
	s := NewStore(dir)

	require.NoError(t, s.Save(ctx, "plan", model("p1")))
	assert.FileExists(t, filepath.Join(dir, "plan.json"))

	m, err := s.Load(ctx, "plan")
	require.NoError(t, err)
	assert.Equal(t, "p1", m.CurrentPageID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := NewStore(t.TempDir()).Load(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := ReadFile(path)
	assert.ErrorIs(t, err, document.ErrInvalidModel)
}

func TestWatcher_HandleEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.json")
	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.Write(model("mine")))

	tests := []struct {
		name     string
		setup    func()
		event    fsnotify.Event
		expected string
	}{
		{
			name:  "own write is ignored",
			event: fsnotify.Event{Name: w.Path(), Op: fsnotify.Write},
		},
		{
			name: "outside write is reported",
			setup: func() {
				require.NoError(t, WriteFile(path, model("theirs")))
			},
			event:    fsnotify.Event{Name: w.Path(), Op: fsnotify.Write},
			expected: "theirs",
		},
		{
			name:  "same content twice is reported once",
			event: fsnotify.Event{Name: w.Path(), Op: fsnotify.Create},
		},
		{
			name: "chmod is ignored",
			setup: func() {
				require.NoError(t, WriteFile(path, model("again")))
			},
			event: fsnotify.Event{Name: w.Path(), Op: fsnotify.Chmod},
		},
		{
			name:  "other files are ignored",
			event: fsnotify.Event{Name: filepath.Join(filepath.Dir(w.Path()), "other.json"), Op: fsnotify.Write},
		},
		{
			name: "partial document is skipped",
			setup: func() {
				require.NoError(t, os.WriteFile(path, []byte(`{"pages": [`), 0644))
			},
			event: fsnotify.Event{Name: w.Path(), Op: fsnotify.Write},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			m := w.handleEvent(tt.event)
			if tt.expected == "" {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.expected, m.CurrentPageID)
		})
	}
}

func TestWatcher_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.Write(model("mine")))
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		WriteFile(path, model("theirs"))
	}()

	select {
	case m := <-changes:
		assert.Equal(t, "theirs", m.CurrentPageID)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for document change")
	}

	cancel()
	for range changes {
	}
}

func TestWatcher_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	_, err = w.Load(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, w.Save(context.Background(), "ignored", model("mine")))
	got, err := w.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "mine", got.CurrentPageID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Nil(t, w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write}), "own writes are not changes")
	assert.NotEmpty(t, data)
}
