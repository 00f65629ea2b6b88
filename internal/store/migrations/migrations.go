// Package migrations embeds the Incident Store's SQL migration files so
// cmd/dronewatch-migrate can apply them without a separate asset pipeline.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.sql
var files embed.FS

// File is one migration file in apply order.
type File struct {
	Name string
	SQL  string
}

// Load returns every embedded migration, sorted by filename — the
// "NNNN_description.sql" naming convention makes lexical order the apply
// order.
func Load() ([]File, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]File, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, File{Name: name, SQL: string(data)})
	}
	return out, nil
}
