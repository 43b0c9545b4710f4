package journal

import (
	"context"
	"time"

	"github.com/nerrad567/pmc-config/internal/pmc"
)

// Entry sources.
const (
	SourceSet       = "set"
	SourceThreshold = "set-thres"
)

// Entry is one variable written to a PMC file.
type Entry struct {
	ID       string
	File     string
	Device   string
	Variable string
	Scope    pmc.Scope
	OldValue string
	NewValue string

	// Created is true when the pair did not exist before.
	Created bool

	// Source names the command that made the change.
	Source    string
	CreatedAt time.Time
}

// NewEntry builds an entry from the result of pmc.Device.SetValue.
func NewEntry(file, device string, res pmc.SetResult, value, source string) *Entry {
	return &Entry{
		File:     file,
		Device:   device,
		Variable: res.Variable,
		Scope:    res.Scope,
		OldValue: res.Previous,
		NewValue: value,
		Created:  res.Created,
		Source:   source,
	}
}

// Filter controls which entries to return.
type Filter struct {
	File     string // optional: exact file path
	Device   string // optional: device name
	Variable string // optional: variable name as stored (no SDR_ prefix)
	Limit    int    // default 50, max 500
	Offset   int
}

// ListResult contains a page of entries, newest first.
type ListResult struct {
	Entries []Entry
	Total   int
	Limit   int
	Offset  int
}

// Repository defines the interface for journal operations.
type Repository interface {
	Record(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// NopRepository discards entries and lists nothing.
type NopRepository struct{}

// Record implements Repository.
func (NopRepository) Record(context.Context, *Entry) error { return nil }

// List implements Repository.
func (NopRepository) List(_ context.Context, filter Filter) (*ListResult, error) {
	return &ListResult{Entries: []Entry{}, Limit: filter.Limit, Offset: filter.Offset}, nil
}
