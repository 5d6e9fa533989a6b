// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/taibuivan/authpanel/internal/platform/apperr"
	"github.com/taibuivan/authpanel/internal/platform/respond"
)

const shellIndex = "index.html"

// NewShellHandler serves the browser application from static.
//
// Existing files are served as-is; any other GET or HEAD receives index.html
// so client-side routes such as /reset-password resolve. Other methods get a
// JSON 404.
func NewShellHandler(static fs.FS) http.Handler {
	files := http.FileServerFS(static)

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodGet && request.Method != http.MethodHead {
			respond.Error(writer, request, apperr.NotFound("Endpoint"))
			return
		}

		name := strings.TrimPrefix(path.Clean("/"+request.URL.Path), "/")
		if name != "" && name != shellIndex && isFile(static, name) {
			files.ServeHTTP(writer, request)
			return
		}

		writer.Header().Set("Cache-Control", "no-cache")
		http.ServeFileFS(writer, request, static, shellIndex)
	})
}

func isFile(static fs.FS, name string) bool {
	info, err := fs.Stat(static, name)
	return err == nil && !info.IsDir()
}
