package schema

import (
	"embed"
	"io/fs"
)

//go:embed schemas/*
var embeddedSchemas embed.FS

// EmbeddedFS returns the bundled wizard schemas. Pass it to LoadFS to get the
// default data, common and strategy sections.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedSchemas, "schemas")
	if err != nil {
		panic(err)
	}
	return sub
}
