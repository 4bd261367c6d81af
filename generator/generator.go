// Package generator produces the include directive markup for each supported
// include type. A directive instructs an intermediary (server-side include
// processor, edge cache, or browser script) to fetch and render a fragment
// separately from the enclosing page.
package generator

import (
	"fmt"
	"html"
)

// Include type identifiers understood by the default factory.
const (
	TypeSSI = "SSI"
	TypeESI = "ESI"
	TypeJS  = "JS"
)

// ErrUnknownType is returned by Factory.ForType for include types without a
// registered generator.
var ErrUnknownType = fmt.Errorf("no include generator for type")

// IncludeGenerator produces directive markup for one include type.
// Generate must be deterministic for identical inputs and must never return
// partial output together with an error.
type IncludeGenerator interface {
	// Type returns the include type identifier this generator serves.
	Type() string
	// Generate returns the directive markup referencing the given fragment
	// address, optionally wrapped with a human-readable marker comment.
	Generate(address string, addComment bool) (string, error)
}

// Factory resolves include generators by type.
type Factory struct {
	generators map[string]IncludeGenerator
}

// NewFactory returns a factory holding the built-in SSI, ESI and JS
// generators plus any extra ones passed in. Extra generators override
// built-ins with the same type.
func NewFactory(extra ...IncludeGenerator) *Factory {
	f := &Factory{generators: map[string]IncludeGenerator{}}
	f.add(ssiGenerator{})
	f.add(esiGenerator{})
	f.add(jsGenerator{})
	for _, g := range extra {
		f.add(g)
	}
	return f
}

func (f *Factory) add(g IncludeGenerator) {
	f.generators[g.Type()] = g
}

// ForType returns the generator for the given include type.
func (f *Factory) ForType(includeType string) (IncludeGenerator, error) {
	g, ok := f.generators[includeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, includeType)
	}
	return g, nil
}

// withComment wraps the directive with a marker comment naming the address.
func withComment(directive, address string, addComment bool) string {
	if !addComment {
		return directive
	}
	return fmt.Sprintf("<!-- deferred include of %s -->%s<!-- end deferred include -->", address, directive)
}

type ssiGenerator struct{}

func (ssiGenerator) Type() string { return TypeSSI }

func (ssiGenerator) Generate(address string, addComment bool) (string, error) {
	directive := fmt.Sprintf(`<!--#include virtual="%s" -->`, address)
	return withComment(directive, address, addComment), nil
}

type esiGenerator struct{}

func (esiGenerator) Type() string { return TypeESI }

func (esiGenerator) Generate(address string, addComment bool) (string, error) {
	directive := fmt.Sprintf(`<esi:include src="%s"/>`, html.EscapeString(address))
	return withComment(directive, address, addComment), nil
}

type jsGenerator struct{}

func (jsGenerator) Type() string { return TypeJS }

// Generate emits a container element plus a script that fetches the fragment
// and replaces the container with the response body.
func (jsGenerator) Generate(address string, addComment bool) (string, error) {
	directive := fmt.Sprintf(
		`<div data-include="%[1]s"></div>`+
			`<script>fetch("%[1]s").then(function(r){return r.text()}).then(function(h){`+
			`var e=document.querySelector('[data-include="%[1]s"]');e.outerHTML=h});</script>`,
		html.EscapeString(address))
	return withComment(directive, address, addComment), nil
}
