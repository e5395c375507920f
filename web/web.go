package web

import "embed"

// Static holds the embedded web/static directory with the browser panel.
// Handlers access it via fs.Sub(Static, "static").
//
//go:embed static
var Static embed.FS
