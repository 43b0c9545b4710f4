// Package migrations embeds the journal schema migrations into the binary.
package migrations

import "embed"

// FS holds every *.sql migration at its root.
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory within FS containing the migrations.
const Dir = "."
