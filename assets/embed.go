// assets/embed.go
//
// Files compiled into the binary:
//   - words/*.json:       default dictionaries, one per word source.
//   - migrations/*.sql:   SQLite schema, applied in lexical order on startup.

package assets

import (
	"embed"
	"io/fs"
)

//go:embed words/*.json
var wordsFS embed.FS

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Dictionary opens the embedded dictionary named <name>.json.
func Dictionary(name string) (fs.File, error) {
	return wordsFS.Open("words/" + name + ".json")
}

// Migrations returns the embedded migration scripts rooted at migrations/.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		// fs.Sub only fails on an invalid path, and "migrations" is static.
		panic(err)
	}
	return sub
}
