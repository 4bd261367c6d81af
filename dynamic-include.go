// Package dynamicinclude intercepts the rendering of selected content
// fragments and replaces it with a deferred include directive, so that an
// intermediary (server-side include processor, edge cache, or browser
// script) can fetch and cache each fragment independently of the enclosing
// page.
package dynamicinclude

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dynamic-include/dynamic-include/generator"
	fragmentpath "github.com/dynamic-include/dynamic-include/pkg/fragment-path"
	typeregistry "github.com/dynamic-include/dynamic-include/pkg/type-registry"
)

type Config struct {
	// Raw filter options, see the Option key constants.
	Options Options
	// Resolver for request targets. Requests the resolver cannot handle
	// pass through untouched. Required for the filter to do anything.
	Resolver Resolver
	// Generator factory for include directive markup.
	// The default factory (SSI, ESI, JS) is used if nil.
	Generators *generator.Factory
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger
	// Optional registerer for dispatch metrics.
	Metrics prometheus.Registerer
}

// Filter is the shared dispatcher. One instance serves many concurrent
// requests; all mutable per-request state is request-local. The activation
// snapshot (configuration plus processor chain) is replaced atomically on
// re-activation, and the provider registry lives for the whole filter
// lifetime, independent of activation cycles.
type Filter struct {
	log        zerolog.Logger
	resolver   Resolver
	generators *generator.Factory
	registry   *typeregistry.Registry
	metrics    *metrics
	snapshot   atomic.Pointer[activation]
}

// activation is one immutable configuration + processor chain snapshot.
// Requests that began under a snapshot complete under that same snapshot.
type activation struct {
	config     *Configuration
	processors []RequestProcessor
}

// New initializes the include filter and activates it with the configured
// options.
func New(config Config) *Filter {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.New(zerolog.NewConsoleWriter())
	} else {
		logger = *config.Logger
	}

	generators := config.Generators
	if generators == nil {
		generators = generator.NewFactory()
	}

	f := &Filter{
		log:        logger,
		resolver:   config.Resolver,
		generators: generators,
		registry:   typeregistry.New(logger),
	}
	f.metrics = newMetrics(config.Metrics, f.registry)
	f.Activate(config.Options)
	return f
}

// Activate builds a fresh configuration and processor chain from the given
// options and publishes it atomically. In-flight requests keep the snapshot
// they started with.
func (f *Filter) Activate(opts Options) {
	config := NewConfiguration(opts, f.registry)
	if config.Enabled() {
		f.log.Debug().Msg("Filter is enabled")
	} else {
		f.log.Debug().Msg("Filter is disabled")
	}
	f.snapshot.Store(&activation{
		config: config,
		processors: []RequestProcessor{
			&requestPassingProcessor{config},
			&syntheticIncludingProcessor{config, f.generators},
			&resourceIncludingProcessor{config},
			&includeTagWritingProcessor{config, f.generators},
		},
	})
}

// Deactivate drops the published snapshot. New requests pass through
// untouched; requests already dispatching complete under their snapshot.
func (f *Filter) Deactivate() {
	f.snapshot.Store(nil)
}

// BindProvider registers a resource types provider. Its contribution is
// visible to eligibility checks immediately, without re-activation.
func (f *Filter) BindProvider(p typeregistry.ResourceTypesProvider) {
	f.log.Info().Str("provider", fmt.Sprintf("%T", p)).Msg("Binding resource types provider")
	f.registry.Register(p)
	f.log.Info().Int("registered", f.registry.Len()).Msg("Resource types providers updated")
}

// UnbindProvider removes a previously bound provider. Unbinding an unknown
// provider is a no-op.
func (f *Filter) UnbindProvider(p typeregistry.ResourceTypesProvider) {
	f.log.Info().Str("provider", fmt.Sprintf("%T", p)).Msg("Unbinding resource types provider")
	f.registry.Unregister(p)
	f.log.Info().Int("registered", f.registry.Len()).Msg("Resource types providers updated")
}

// Middleware wraps the downstream rendering handler with the dispatch chain.
// This is the request-scope boundary: the external fetch triggered by an
// emitted directive re-enters here.
func (f *Filter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, r := f.begin(r)
		if state == nil || !state.act.config.Enabled() || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		log := f.log.With().
			Str("requestId", uuid.NewString()).
			Str("path", r.URL.Path).
			Logger()
		req, ok := f.resolveRequest(r, state, next, log)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if err := f.dispatch(state, w, req); err != nil {
			log.Error().Err(err).Msg("Dispatch failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})
}

// Include dispatches the chain for a sub-fragment included while rendering
// the current request. This is the include-scope boundary: the flag set by
// the resource including processor on the enclosing dispatch is visible
// here through the shared dispatch state. When no processor claims the
// fragment, render produces its markup inline.
func (f *Filter) Include(w http.ResponseWriter, r *http.Request, path string, render http.Handler) error {
	sub := r.Clone(r.Context())
	subURL := *r.URL
	subURL.Path = path
	subURL.RawPath = ""
	sub.URL = &subURL

	state, sub := f.begin(sub)
	if state == nil || !state.act.config.Enabled() {
		render.ServeHTTP(w, sub)
		return nil
	}
	req, ok := f.resolveRequest(sub, state, render, f.log.With().Str("include", path).Logger())
	if !ok {
		render.ServeHTTP(w, sub)
		return nil
	}
	return f.dispatch(state, w, req)
}

// begin attaches dispatch state to the request, reusing the state (and the
// pinned activation snapshot) of an enclosing dispatch if present. It
// returns nil state when the filter is deactivated.
func (f *Filter) begin(r *http.Request) (*dispatchState, *http.Request) {
	if state := stateFromContext(r.Context()); state != nil {
		return state, r
	}
	act := f.snapshot.Load()
	if act == nil {
		return nil, r
	}
	state := newDispatchState(act)
	return state, r.WithContext(contextWithState(r.Context(), state))
}

func (f *Filter) resolveRequest(r *http.Request, state *dispatchState, next http.Handler, log zerolog.Logger) (*Request, bool) {
	if f.resolver == nil {
		return nil, false
	}
	resource, err := f.resolver.Resolve(r)
	if err != nil {
		log.Debug().Err(err).Msg("Request target not resolvable")
		return nil, false
	}
	return &Request{
		HTTP:     r,
		Resource: resource,
		Path:     fragmentpath.Parse(r.URL.Path),
		log:      log,
		state:    state,
		next:     next,
	}, true
}

func (f *Filter) dispatch(state *dispatchState, w http.ResponseWriter, req *Request) error {
	req.redispatch = func(w http.ResponseWriter, req *Request) error {
		return f.walk(state, w, req)
	}
	return f.walk(state, w, req)
}

// walk evaluates the fixed processor chain in order. The first processor
// accepting the request handles it exclusively; when none does, the
// continuation runs unmodified.
func (f *Filter) walk(state *dispatchState, w http.ResponseWriter, req *Request) error {
	for _, p := range state.act.processors {
		if !p.Accepts(req) {
			continue
		}
		outcome := "processor"
		if named, ok := p.(interface{ name() string }); ok {
			outcome = named.name()
		}
		if err := p.Process(w, req); err != nil {
			f.metrics.dispatch("error")
			return err
		}
		f.metrics.dispatch(outcome)
		return nil
	}
	f.metrics.dispatch("passthrough")
	req.ContinueNormalProcessing(w)
	return nil
}
