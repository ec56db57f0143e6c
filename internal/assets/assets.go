// Package assets bundles the engine document served to webview clients and
// loaded into the sandboxed runtime.
package assets

import (
	"embed"
	"fmt"
	"path"

	"github.com/gabriel-vasile/mimetype"
)

//go:embed engine.js index.html
var files embed.FS

// EngineScript returns the engine document script loaded into the sandbox
// at startup.
func EngineScript() string {
	data, err := files.ReadFile("engine.js")
	if err != nil {
		// Embedded at build time; absence is a build defect.
		panic(fmt.Sprintf("engine.js missing from embedded assets: %v", err))
	}
	return string(data)
}

// Asset returns the named embedded file and its content type.
func Asset(name string) ([]byte, string, error) {
	data, err := files.ReadFile(path.Base(name))
	if err != nil {
		return nil, "", fmt.Errorf("unknown asset %q: %w", name, err)
	}
	return data, contentType(name, data), nil
}

// contentType maps script extensions directly, since content sniffing
// cannot tell JavaScript or CSS from plain text; everything else is
// detected from the bytes.
func contentType(name string, data []byte) string {
	switch path.Ext(name) {
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	default:
		return mimetype.Detect(data).String()
	}
}
