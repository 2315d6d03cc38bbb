package html

import (
	"embed"
	"io/fs"
)

var (
	//go:embed templates/*.tpl
	templateFiles embed.FS

	//go:embed assets/*
	assetFiles embed.FS
)

// StylesheetName is the file name of the default stylesheet within AssetsFS.
const StylesheetName = "assetform.css"

// TemplatesFS returns the bundled pongo2 templates, rooted above templates/.
func TemplatesFS() fs.FS { return templateFiles }

// AssetsFS returns the static files served under the configured prefix.
func AssetsFS() fs.FS {
	assets, err := fs.Sub(assetFiles, "assets")
	if err != nil {
		panic("html: embedded assets: " + err.Error())
	}
	return assets
}
