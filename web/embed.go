package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS is the embedded static asset tree, rooted at static/.
func StaticFS() fs.FS {
	return mustSub("static")
}

// TemplatesFS is the embedded HTML template tree, rooted at templates/.
func TemplatesFS() fs.FS {
	return mustSub("templates")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(content, dir)
	if err != nil {
		// Both directories are embedded at compile time.
		panic(err)
	}
	return sub
}
