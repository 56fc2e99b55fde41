// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/advisor-engine/internal/evidence"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect and manage the evidence knowledge base",
	Long: `Kb works with the evidence table backing analysis runs: the built-in
knowledge table, a YAML entries file, or a research knowledge base (SQLite).
Use subcommands to list entries, preview lookups, or convert a knowledge
base into an editable entries file.`,
}

// --- list subcommand ---

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge-base entries",
	RunE:  runKbList,
}

func runKbList(cmd *cobra.Command, args []string) error {
	store, err := kbStoreFromFlags(cmd)
	if err != nil {
		return err
	}
	evidence.FormatTable(store.Entries(), os.Stdout)
	return nil
}

// --- search subcommand ---

var kbSearchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Preview an evidence lookup for a query",
	Long: `Search runs the same keyword-overlap lookup the engine performs during
Decide and prints the snippets a persona would receive, best match first.`,
	RunE: runKbSearch,
}

func runKbSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("provide a search query")
	}

	store, err := kbStoreFromFlags(cmd)
	if err != nil {
		return err
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	snippets := store.Lookup(query, topK)
	if len(snippets) == 0 {
		fmt.Println("No matching entries.")
		return nil
	}

	for i, s := range snippets {
		fmt.Printf("[%d] %s\n    %s\n", i+1, s.Text, s.Source)
	}
	return nil
}

// --- import subcommand ---

var kbImportCmd = &cobra.Command{
	Use:   "import <sqlite-path>",
	Short: "Convert a research knowledge base into a YAML entries file",
	Long: `Import reads knowledge items from a research knowledge base (SQLite)
and writes them as a YAML entries file, ready for editing and for use
with --entries.`,
	Args: cobra.ExactArgs(1),
	RunE: runKbImport,
}

func runKbImport(cmd *cobra.Command, args []string) error {
	entries, err := evidence.LoadSQLite(args[0])
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if err := evidence.WriteYAML(out, entries); err != nil {
		return err
	}

	fmt.Printf("Imported %d entries to %s\n", len(entries), out)
	return nil
}

// --- shared helpers ---

func kbStoreFromFlags(cmd *cobra.Command) (*evidence.Store, error) {
	entriesFile, _ := cmd.Flags().GetString("entries")
	kbPath, _ := cmd.Flags().GetString("kb")
	stubWeb, _ := cmd.Flags().GetBool("stub-web")

	return evidence.FromConfig(types.EvidenceConfig{
		EntriesFile: entriesFile,
		SQLitePath:  kbPath,
		StubWeb:     stubWeb,
	})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	kbCmd.PersistentFlags().String("entries", "", "load evidence from a YAML entries file")
	kbCmd.PersistentFlags().String("kb", "", "load evidence from a research knowledge base (SQLite)")
	kbCmd.PersistentFlags().Bool("stub-web", false, "append a canned web-research snippet to lookups")

	// Search flags.
	kbSearchCmd.Flags().Int("top-k", 0, "snippets to return (default 3)")

	// Import flags.
	kbImportCmd.Flags().String("out", "evidence.yaml", "output entries file")

	// Wire subcommands.
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbSearchCmd)
	kbCmd.AddCommand(kbImportCmd)

	rootCmd.AddCommand(kbCmd)
}
