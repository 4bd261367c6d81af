// Package renderer is a small repository-backed rendering engine. It renders
// a resource's own content and dispatches every child fragment through the
// include filter, so that eligible fragments come out as include directives
// instead of inline markup.
package renderer

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	dynamicinclude "github.com/dynamic-include/dynamic-include"
	fragmentpath "github.com/dynamic-include/dynamic-include/pkg/fragment-path"
	"github.com/dynamic-include/dynamic-include/repository"
)

type Renderer struct {
	// Repository the rendered resources come from.
	Repository repository.Repository
	// Filter dispatching nested fragment includes. Children render inline
	// if nil.
	Filter *dynamicinclude.Filter
	// Logger to use.
	Log zerolog.Logger
}

// ServeHTTP renders the resource addressed by the request path. Unknown
// paths render a synthetic placeholder element carrying the resource type
// derived from the path.
func (rend *Renderer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	info := fragmentpath.Parse(r.URL.Path)
	res, ok, err := rend.Repository.Get(info.ResourcePath)
	if err != nil {
		rend.Log.Error().Err(err).Str("path", info.ResourcePath).Msg("Could not read resource")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if !ok {
		rend.renderSynthetic(w, info.ResourcePath)
		return
	}
	w.Write(res.Content)
	for _, child := range res.Children {
		rend.include(w, r, child)
	}
}

// include dispatches one child fragment through the filter, falling back to
// inline rendering when no filter is configured.
func (rend *Renderer) include(w http.ResponseWriter, r *http.Request, child string) {
	if rend.Filter == nil {
		childURL := *r.URL
		childURL.Path = child
		childReq := r.Clone(r.Context())
		childReq.URL = &childURL
		rend.ServeHTTP(w, childReq)
		return
	}
	if err := rend.Filter.Include(w, r, child, rend); err != nil {
		rend.Log.Error().Err(err).Str("child", child).Msg("Could not include fragment")
	}
}

func (rend *Renderer) renderSynthetic(w http.ResponseWriter, resourcePath string) {
	resourceType := resourcePath
	if len(resourceType) > 0 && resourceType[0] == '/' {
		resourceType = resourceType[1:]
	}
	fmt.Fprintf(w, `<div data-resource-type=%q></div>`, resourceType)
}
