package dynamicinclude

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dynamic-include/dynamic-include/generator"
	fragmentpath "github.com/dynamic-include/dynamic-include/pkg/fragment-path"
)

// Resource describes the resolved target of a dispatch.
type Resource struct {
	// Path is the resource path, without selectors or extension.
	Path string
	// ResourceType decides eligibility for deferred inclusion.
	ResourceType string
	// Synthetic is true when the resource has no durable backing in the
	// repository and exists only for the current render.
	Synthetic bool
}

// RequestProcessor handles one kind of request during dispatch. Processors
// are stateless, shared across all requests of one activation cycle, and
// mutually exclusive: the first processor accepting a request handles it
// alone.
type RequestProcessor interface {
	// Accepts reports whether this processor should handle the request.
	Accepts(req *Request) bool
	// Process handles the request. It may pass through to normal rendering,
	// write an include directive, or re-dispatch after updating the
	// request state.
	Process(w http.ResponseWriter, req *Request) error
}

// Request carries the per-dispatch view of an HTTP request: the resolved
// target resource, the decoded fragment path, the continuation representing
// normal rendering, and the dispatch state shared with nested include
// dispatches of the same HTTP request.
type Request struct {
	// HTTP is the underlying request.
	HTTP *http.Request
	// Resource is the resolved target.
	Resource Resource
	// Path is the decoded request path with selectors.
	Path fragmentpath.PathInfo

	log        zerolog.Logger
	state      *dispatchState
	next       http.Handler
	redispatch func(http.ResponseWriter, *Request) error
}

// ContinueNormalProcessing renders the request as if the filter did not
// exist.
func (req *Request) ContinueNormalProcessing(w http.ResponseWriter) {
	req.next.ServeHTTP(w, req.HTTP)
}

// dispatchState is shared between the dispatches belonging to one HTTP
// request: the top-level dispatch and any nested include dispatches issued
// while rendering. It pins the activation snapshot the request started under
// and records which resource paths have been flagged for deferral.
type dispatchState struct {
	act *activation

	mu     sync.Mutex
	marked map[string]bool
}

func newDispatchState(act *activation) *dispatchState {
	return &dispatchState{act: act, marked: map[string]bool{}}
}

func (s *dispatchState) mark(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked[path] = true
}

func (s *dispatchState) isMarked(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked[path]
}

type contextKey int

const stateContextKey contextKey = 0

func stateFromContext(ctx context.Context) *dispatchState {
	state, _ := ctx.Value(stateContextKey).(*dispatchState)
	return state
}

func contextWithState(ctx context.Context, state *dispatchState) context.Context {
	return context.WithValue(ctx, stateContextKey, state)
}

// writeDirective generates the include directive for the given address and
// writes it as the output of this dispatch. Generation failures surface to
// the caller unmasked.
func writeDirective(w http.ResponseWriter, config *Configuration, generators *generator.Factory, address string) error {
	gen, err := generators.ForType(config.IncludeType())
	if err != nil {
		return err
	}
	markup, err := gen.Generate(address, config.AddComment())
	if err != nil {
		return fmt.Errorf("generating include directive for %s: %w", address, err)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	_, err = io.WriteString(w, markup)
	return err
}

// deferredAddress returns the address an include directive should reference
// for the given resource path: the original selectors plus the recursion
// marker selector, so that the deferred fetch is recognized and rendered
// normally.
func deferredAddress(config *Configuration, resourcePath string, path fragmentpath.PathInfo) string {
	selectors := make([]string, 0, len(path.Selectors)+1)
	selectors = append(selectors, path.Selectors...)
	selectors = append(selectors, config.Selector())
	return fragmentpath.Build(resourcePath, selectors, path.Extension)
}
