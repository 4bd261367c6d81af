package dynamicinclude

import (
	"net/http"

	"github.com/dynamic-include/dynamic-include/generator"
)

// syntheticIncludingProcessor defers eligible fragments that have no durable
// backing resource. Such a fragment cannot be fetched by its own path later,
// so the include address is derived from the resource type instead.
type syntheticIncludingProcessor struct {
	config     *Configuration
	generators *generator.Factory
}

func (p *syntheticIncludingProcessor) name() string {
	return "synthetic"
}

func (p *syntheticIncludingProcessor) Accepts(req *Request) bool {
	return req.Resource.Synthetic && p.config.IsResourceTypeEligible(req.Resource.ResourceType)
}

func (p *syntheticIncludingProcessor) Process(w http.ResponseWriter, req *Request) error {
	address := deferredAddress(p.config, "/"+req.Resource.ResourceType, req.Path)
	req.log.Debug().
		Str("resource", req.Resource.Path).
		Str("address", address).
		Msg("Writing include directive for synthetic resource")
	return writeDirective(w, p.config, p.generators, address)
}
