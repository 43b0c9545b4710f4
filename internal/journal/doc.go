// Package journal records every value written to a PMC file in a local
// SQLite database, so an operator can see what was changed, where and when.
//
// Entries are recorded only after the file was saved successfully. When the
// journal is disabled, NopRepository accepts and discards entries.
package journal
