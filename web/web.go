// Package web embeds the browser upload page.
package web

import (
	"embed"
	"fmt"

	"github.com/gin-contrib/static"
)

//go:embed static
var assets embed.FS

// FileSystem serves the embedded page at the site root
func FileSystem() (static.ServeFileSystem, error) {
	fs, err := static.EmbedFolder(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded upload page: %w", err)
	}
	return fs, nil
}
