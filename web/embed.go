package web

import "embed"

// StaticFS contains the embedded intake form assets.
//
//go:embed all:static
var StaticFS embed.FS
