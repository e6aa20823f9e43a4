// Package ui serves the embedded intake form.
package ui

import (
	"io/fs"
	"net/http"

	"github.com/lotcarolinas/intake/web"
)

// RegisterRoutes serves the static form assets at the site root.
func RegisterRoutes(mux *http.ServeMux) {
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}

	mux.Handle("GET /", http.FileServer(http.FS(staticFS)))
}
