package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"whiteboard/document"
	"whiteboard/internal/config"
	"whiteboard/internal/export"
	"whiteboard/internal/logger"
	"whiteboard/internal/storage"
	"whiteboard/internal/storage/file"
	"whiteboard/internal/storage/sqlite"
	"whiteboard/shape"
)

const defaultBoard = "board"

// board is where one document lives: a JSON file or a database entry.
type board struct {
	name  string
	key   string
	store storage.Store

	watcher *file.Watcher
	db      *sqlite.Store
}

func withExt(name string) string {
	if filepath.Ext(name) == "" {
		return name + file.Ext
	}
	return name
}

// openBoard resolves name as a file, or as a database entry when useDB is
// set.
func openBoard(cfg *config.Config, name string, useDB bool, log *logger.Logger) (*board, error) {
	if name == "" {
		name = defaultBoard
	}
	if useDB {
		db, err := openDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return &board{name: name, key: name, store: db, db: db}, nil
	}
	w, err := file.NewWatcher(cfg.GetSavePath(withExt(name)), log)
	if err != nil {
		return nil, err
	}
	return &board{name: filepath.Base(w.Path()), key: w.Path(), store: w, watcher: w}, nil
}

func openDatabase(cfg *config.Config) (*sqlite.Store, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("locating database: %w", err)
	}
	return sqlite.Open(path)
}

func (b *board) load(ctx context.Context) (document.Model, error) {
	return b.store.Load(ctx, b.key)
}

func (b *board) Close() error {
	if b.watcher != nil {
		b.watcher.Close()
	}
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// saver saves to the board itself, or for save as to a new file, a new
// database entry, or an export when the name ends in .png or .txt.
func (b *board) saver(ctx context.Context, cfg *config.Config, doc *document.Document) func(document.Model, string) error {
	return func(m document.Model, path string) error {
		if path == "" {
			return b.store.Save(ctx, b.key, m)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png", ".txt":
			return export.WriteFile(cfg.GetSavePath(path), doc, exportOptions(cfg))
		case "":
			if b.db != nil {
				return b.db.Save(ctx, path, m)
			}
		}
		return file.WriteFile(cfg.GetSavePath(withExt(path)), m)
	}
}

func exportOptions(cfg *config.Config) export.Options {
	opts := export.DefaultOptions()
	opts.CellWidth = cfg.CellWidth
	opts.CellHeight = cfg.CellHeight
	return opts
}

// openLog sends the log to ~/.whiteboard/whiteboard.log so it does not
// draw over the board.
func openLog(cfg *config.Config) (*logger.Logger, func(), error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "whiteboard.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	level := logger.LevelInfo
	if cfg.Verbose {
		level = logger.LevelDebug
	}
	return logger.New(f, level, ""), func() { f.Close() }, nil
}

// loadDocument reads a board into a document for export.
func loadDocument(ctx context.Context, b *board) (*document.Document, error) {
	m, err := b.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", b.name, err)
	}
	doc := document.New(shape.DefaultRegistry())
	if err := doc.Load(m); err != nil {
		return nil, fmt.Errorf("loading %s: %w", b.name, err)
	}
	return doc, nil
}
