// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package web embeds the browser application served at the site root.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var content embed.FS

// Static returns the application shell rooted at its index.html.
func Static() fs.FS {
	static, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return static
}
