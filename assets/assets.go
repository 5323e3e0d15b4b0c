// Package assets embeds sample programs.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Hand written sample programs, one per file.
//
//go:embed src/*.s
var srcs embed.FS

// SourceExt is the extension of source programs.
const SourceExt = ".s"

// Names lists the samples, sorted.
func Names() []string {
	entries, err := fs.ReadDir(srcs, "src")
	if err != nil {
		// Should never happen, the directory is embedded.
		panic(fmt.Errorf("read embedded samples: %w", err))
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), SourceExt))
	}
	return names
}

// Source returns the source of the named sample.
func Source(name string) (string, error) {
	buf, err := srcs.ReadFile(path.Join("src", name+SourceExt))
	if err != nil {
		return "", fmt.Errorf("unknown sample %q: %w", name, err)
	}
	return string(buf), nil
}
