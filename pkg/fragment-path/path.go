// Package fragmentpath encodes and decodes selector-bearing fragment paths.
//
// A fragment path addresses a renderable resource plus an ordered list of
// selectors and an extension, e.g. `/content/home/carousel.nocache.html`
// addresses the resource `/content/home/carousel` with the selector `nocache`
// and the extension `html`.
package fragmentpath

import (
	"strings"
)

const DefaultExtension = "html"

// PathInfo is the decoded form of a fragment path.
type PathInfo struct {
	// ResourcePath is the path without selectors or extension.
	ResourcePath string
	// Selectors are the dot-separated tokens between path and extension.
	Selectors []string
	// Extension is the final dot-separated token, empty if none.
	Extension string
}

// Parse decodes the given request path.
// Only the last path segment is inspected for selectors and the extension;
// dots in earlier segments are left untouched.
func Parse(path string) PathInfo {
	dir := ""
	last := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		dir = path[:idx+1]
		last = path[idx+1:]
	}
	parts := strings.Split(last, ".")
	if len(parts) == 1 {
		return PathInfo{ResourcePath: path}
	}
	return PathInfo{
		ResourcePath: dir + parts[0],
		Selectors:    parts[1 : len(parts)-1],
		Extension:    parts[len(parts)-1],
	}
}

// Build is the inverse of Parse.
// An empty extension is replaced with DefaultExtension so that the result is
// always addressable over HTTP.
func Build(resourcePath string, selectors []string, extension string) string {
	if extension == "" {
		extension = DefaultExtension
	}
	var b strings.Builder
	b.WriteString(resourcePath)
	for _, s := range selectors {
		if s == "" {
			continue
		}
		b.WriteString(".")
		b.WriteString(s)
	}
	b.WriteString(".")
	b.WriteString(extension)
	return b.String()
}

// HasSelector reports whether the decoded path carries the given selector.
func (p PathInfo) HasSelector(selector string) bool {
	for _, s := range p.Selectors {
		if s == selector {
			return true
		}
	}
	return false
}
