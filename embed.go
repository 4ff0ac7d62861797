package precinct

import "embed"

// EmbeddedAssets contains the static assets served under /assets/:
// precinct.css, precinct.js and logo.svg.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
