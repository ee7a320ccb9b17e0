// Package resources embeds the static data shipped with the binary.
package resources

import (
	"embed"
	"io/fs"
)

//go:embed seed/*.yaml
var seedFiles embed.FS

// SeedFS returns the embedded demo data, one YAML file per fixture set.
func SeedFS() fs.FS {
	sub, err := fs.Sub(seedFiles, "seed")
	if err != nil {
		panic(err)
	}
	return sub
}
