package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nerrad567/pmc-config/internal/journal"
	"github.com/nerrad567/pmc-config/internal/pmc"
	"github.com/nerrad567/pmc-config/internal/threshold"
)

// filePersister saves the document and journals the applied changes.
// It implements threshold.Persister.
type filePersister struct {
	app    *app
	doc    *pmc.Document
	dev    *pmc.Device
	source string
}

func (a *app) persister(doc *pmc.Document, dev *pmc.Device, source string) *filePersister {
	return &filePersister{app: a, doc: doc, dev: dev, source: source}
}

// Persist writes the document, with a backup unless disabled, and then
// records one journal entry per change. A journal failure is logged and
// does not fail the save.
func (p *filePersister) Persist(ctx context.Context, applied []threshold.Applied) error {
	a := p.app
	path := p.doc.Path()
	backup := a.cfg.Backup.Enabled && !a.opts.noBackup

	if err := a.store.Save(p.doc, backup); err != nil {
		fmt.Fprintf(a.out, "Error saving file: %v\n", err)
		return errReported
	}
	if backup {
		fmt.Fprintf(a.out, "Backup created: %s\n", a.store.BackupPath(path))
	}
	fmt.Fprintf(a.out, "Changes saved to: %s\n", path)

	repo, err := a.openJournal(ctx)
	if err != nil {
		a.log.Warn("change journal unavailable", "error", err)
		return nil
	}
	file := absPath(path)
	for _, c := range applied {
		entry := journal.NewEntry(file, p.dev.Name, c.Result, c.Value, p.source)
		if err := repo.Record(ctx, entry); err != nil {
			a.log.Warn("recording change failed",
				"device", p.dev.Name, "variable", c.Variable, "error", err)
		}
	}
	return nil
}

// printHistory writes journal entries as a table, newest first.
func printHistory(out io.Writer, device string, result *journal.ListResult) error {
	if len(result.Entries) == 0 {
		_, err := fmt.Fprintf(out, "No recorded changes for device '%s'\n", device)
		return err
	}

	fmt.Fprintf(out, "\nChanges for device '%s' (%d of %d):\n", device, len(result.Entries), result.Total)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSCOPE\tVARIABLE\tOLD\tNEW\tSOURCE")
	for _, e := range result.Entries {
		old := e.OldValue
		if e.Created {
			old = "(new)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Scope, e.Variable, old, e.NewValue, e.Source)
	}
	return tw.Flush()
}
