package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whiteboard/internal/export"
)

var (
	exportDB      bool
	exportPage    int
	exportScale   float64
	exportPadding float64
)

var exportCmd = &cobra.Command{
	Use:   "export [board] [output]",
	Short: "Export a board to PNG or text",
	Long: `Export one page of a board. The output format follows the extension
of the output file: .png for an image, .txt for characters.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportDB, "db", false, "read the board from the database")
	exportCmd.Flags().IntVarP(&exportPage, "page", "p", 0, "page number to export (default the open page)")
	exportCmd.Flags().Float64Var(&exportScale, "scale", 1, "pixels per board unit in PNG output")
	exportCmd.Flags().Float64Var(&exportPadding, "padding", 20, "space around the shapes in board units")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := cliLogger()
	cfg := loadConfig(log)
	b, err := openBoard(cfg, args[0], exportDB, log)
	if err != nil {
		return err
	}
	defer b.Close()

	doc, err := loadDocument(cmd.Context(), b)
	if err != nil {
		return err
	}
	if exportPage > 0 {
		pages := doc.Pages()
		if exportPage > len(pages) {
			return fmt.Errorf("%s has %d pages", b.name, len(pages))
		}
		if err := doc.SetCurrentPage(pages[exportPage-1].ID); err != nil {
			return err
		}
	}

	opts := exportOptions(cfg)
	opts.Scale = exportScale
	opts.Padding = exportPadding
	if err := export.WriteFile(args[1], doc, opts); err != nil {
		return fmt.Errorf("exporting %s: %w", b.name, err)
	}
	cmd.Printf("exported %s to %s\n", b.name, args[1])
	return nil
}
