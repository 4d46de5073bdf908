// Package icons bundles the app's built-in icon resources and converts each
// to a storable text form: raster images become data URLs, vector icons
// become raw SVG markup.
package icons

import (
	"embed"
	"encoding/base64"
	"fmt"
	"path"
	"regexp"
	"strings"
)

//go:embed img
var files embed.FS

// Entry names one bundled icon and its source file.
type Entry struct {
	Name string
	File string
}

// Icon is a converted, ready-to-store resource. Type is "image" for
// data-URL-encoded rasters and "svg" for raw markup.
type Icon struct {
	Name    string
	Type    string
	Content string
}

var manifest = []Entry{
	{Name: "logo", File: "img/logo.png"},
	{Name: "home-icon", File: "img/home-icon.svg"},
	{Name: "active-home-icon", File: "img/active-home-icon.svg"},
	{Name: "archive-icon", File: "img/archive-icon.svg"},
	{Name: "active-archive-icon", File: "img/active-archive-icon.svg"},
	{Name: "deleted-icon", File: "img/deleted-icon.svg"},
	{Name: "active-deleted-icon", File: "img/active-deleted-icon.svg"},
}

// Manifest returns the fixed set of bundled icons.
func Manifest() []Entry {
	return manifest
}

var mimeTypes = map[string]string{
	".png":  "image/png",
	".gif":  "image/gif",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Load reads one manifest entry and converts it to storable form.
func Load(e Entry) (Icon, error) {
	raw, err := files.ReadFile(e.File)
	if err != nil {
		return Icon{}, fmt.Errorf("read icon %s: %w", e.Name, err)
	}

	ext := strings.ToLower(path.Ext(e.File))
	if ext == ".svg" {
		markup, err := SVGMarkup(string(raw))
		if err != nil {
			return Icon{}, fmt.Errorf("icon %s: %w", e.Name, err)
		}
		return Icon{Name: e.Name, Type: "svg", Content: markup}, nil
	}

	mime, ok := mimeTypes[ext]
	if !ok {
		return Icon{}, fmt.Errorf("icon %s: unsupported format %q", e.Name, ext)
	}
	return Icon{
		Name:    e.Name,
		Type:    "image",
		Content: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// Some build pipelines ship SVG icons as compiled component code instead of
// markup. The element's attributes and its path data survive in that output,
// so the markup can be reconstituted from them.
var (
	propsRe = regexp.MustCompile(`_\w+\s*\(\s*\{\s*([^}]+)\s*\}`)
	pathRe  = regexp.MustCompile(`d:\s*"([^"]+)"`)
)

// SVGMarkup returns raw <svg> markup for a vector source, extracting it from
// component-wrapped code when necessary.
func SVGMarkup(src string) (string, error) {
	if !strings.Contains(src, "React.createElement") {
		return src, nil
	}

	props := propsRe.FindStringSubmatch(src)
	if props == nil {
		return "", fmt.Errorf("could not extract svg attributes")
	}
	pathData := pathRe.FindStringSubmatch(src)
	if pathData == nil {
		return "", fmt.Errorf("could not extract svg path data")
	}

	attrs := strings.Join(strings.Fields(props[1]), " ")
	return fmt.Sprintf(`<svg %s><path d="%s"/></svg>`, attrs, pathData[1]), nil
}
