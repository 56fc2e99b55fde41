// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/advisor-engine/internal/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the persona roster",
	Long: `Personas prints the expert roster used during Orient and Decide: each
persona's specialty, routing keywords, and priority. A question aspect that
matches no specialist is answered by the generalist.`,
	Run: runPersonas,
}

func runPersonas(cmd *cobra.Command, args []string) {
	roster := persona.DefaultRoster()

	fmt.Fprintf(os.Stdout, "%-12s  %-16s  %-28s  %-8s  %s\n",
		"ID", "Name", "Specialty", "Priority", "Keywords")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, p := range roster.Specialists() {
		fmt.Fprintf(os.Stdout, "%-12s  %-16s  %-28s  %-8d  %s\n",
			p.ID, p.Name, p.Specialty, p.Priority, strings.Join(p.Keywords, ","))
	}

	g := roster.Generalist()
	fmt.Fprintf(os.Stdout, "%-12s  %-16s  %-28s  %-8s  %s\n",
		g.ID, g.Name, g.Specialty, "-", "(fallback)")
}

func init() {
	rootCmd.AddCommand(personasCmd)
}
