package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"whiteboard/internal/storage/file"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage boards in the database",
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored boards",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a stored board",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreDelete,
}

var storeImportCmd = &cobra.Command{
	Use:   "import [file] [name]",
	Short: "Copy a board file into the database",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runStoreImport,
}

func init() {
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	storeCmd.AddCommand(storeImportCmd)
	rootCmd.AddCommand(storeCmd)
}

func runStoreList(cmd *cobra.Command, _ []string) error {
	db, err := openDatabase(loadConfig(cliLogger()))
	if err != nil {
		return err
	}
	defer db.Close()

	boards, err := db.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(boards) == 0 {
		cmd.Println("No boards stored.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSHAPES\tUPDATED")
	for _, b := range boards {
		fmt.Fprintf(w, "%s\t%d\t%s\n", b.Name, b.Shapes, b.UpdatedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(loadConfig(cliLogger()))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting %s: %w", args[0], err)
	}
	cmd.Printf("deleted %s\n", args[0])
	return nil
}

func runStoreImport(cmd *cobra.Command, args []string) error {
	m, err := file.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	name := args[0]
	if len(args) > 1 {
		name = args[1]
	}

	db, err := openDatabase(loadConfig(cliLogger()))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Save(cmd.Context(), name, m); err != nil {
		return err
	}
	cmd.Printf("imported %s as %s\n", args[0], name)
	return nil
}
