package main

import (
	"embed"
	"io/fs"

	"github.com/lazypower/bananimon/internal/server"
)

// The ui directory holds the built web client.
//
//go:embed all:ui
var uiDist embed.FS

func init() {
	sub, err := fs.Sub(uiDist, "ui")
	if err != nil {
		return
	}
	server.SetUI(sub)
}
