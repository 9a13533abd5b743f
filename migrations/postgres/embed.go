// Package migrations embeds the Postgres schema migrations.
package migrations

import "embed"

// FS contiene las migraciones {version}_{name}.sql.
//
//go:embed *.sql
var FS embed.FS

// Dir es la raíz dentro de FS.
const Dir = "."
