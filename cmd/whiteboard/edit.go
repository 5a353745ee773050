package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"whiteboard/app"
	"whiteboard/document"
	"whiteboard/internal/canvas"
	"whiteboard/internal/storage"
	"whiteboard/internal/tui"
	"whiteboard/shape"
)

var editDB bool

var editCmd = &cobra.Command{
	Use:   "edit [board]",
	Short: "Open a board in the terminal",
	Long: `Open a board in the terminal. The board is a JSON file, created on
first save, or with --db an entry in the board database.

Changes are saved automatically. Edits made to the file by other programs
are loaded while the board is open.

Controls:
  v h r e d l s t p m x - Select a tool
  Mouse                 - Draw, select and move
  ctrl+z / ctrl+y       - Undo / Redo
  ctrl+s                - Save
  ?                     - Toggle help
  q                     - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().BoolVar(&editDB, "db", false, "keep the board in the database")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("edit needs a terminal")
	}
	cfg := loadConfig(cliLogger())
	log, closeLog, err := openLog(cfg)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closeLog()

	name := defaultBoard
	if len(args) > 0 {
		name = args[0]
	}
	b, err := openBoard(cfg, name, editDB, log)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	reg := shape.DefaultRegistry()
	renderer := &canvas.Renderer{}
	a := app.New(cfg.Engine(), reg, nil, renderer.Components(reg), app.WithLogger(log))

	m, err := b.load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Info("new board %s", b.name)
	case err != nil:
		return err
	default:
		if err := a.LoadDocumentModel(m); err != nil {
			return err
		}
	}

	var autosave *storage.Autosaver
	if interval := cfg.Autosave(); interval > 0 {
		autosave = storage.NewAutosaver(b.store, b.key, interval, log)
		detach := autosave.Attach(ctx, a)
		defer detach()
	}

	var changes <-chan document.Model
	if b.watcher != nil {
		changes, err = b.watcher.Watch(ctx)
		if err != nil {
			log.Warn("not watching %s: %v", b.watcher.Path(), err)
		}
	}

	model, err := tui.New(tui.Options{
		App:        a,
		Renderer:   renderer,
		CellWidth:  cfg.CellWidth,
		CellHeight: cfg.CellHeight,
		Name:       b.name,
		Save:       b.saver(ctx, cfg, a.Document()),
		Changes:    changes,
		Autosave:   autosave,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	if autosave != nil {
		return autosave.Flush(context.Background())
	}
	return nil
}
