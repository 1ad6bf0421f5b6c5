// Package migrations embeds the SQL migrations shipped with the binary.
package migrations

import (
	"embed"

	"github.com/marshallshelly/agroexport/pkg/migration"
)

//go:embed *.sql
var files embed.FS

// All returns the embedded migrations ordered by version.
func All() ([]migration.Migration, error) {
	return migration.Load(files, ".")
}
