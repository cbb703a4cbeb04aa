package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

func runTemplates(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("templates", flag.ContinueOnError)
	fs.SetOutput(stderr)
	templatesDir := fs.String("templates", "", "directory holding templates (embedded set if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := loadStore(*templatesDir)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLACEHOLDERS\tDESCRIPTION")
	for _, id := range store.List() {
		tpl, err := store.Get(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, strings.Join(tpl.Placeholders(), ","), tpl.Description())
	}
	return tw.Flush()
}
