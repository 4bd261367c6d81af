package dynamicinclude

import (
	"net/http"
)

// resourceIncludingProcessor flags requests whose resolved target is an
// eligible durable fragment, then re-dispatches so that the include tag
// writer can act on the flag. The flag lives in the request-scoped dispatch
// state; nothing is shared between concurrent requests.
type resourceIncludingProcessor struct {
	config *Configuration
}

func (p *resourceIncludingProcessor) name() string {
	return "including"
}

func (p *resourceIncludingProcessor) Accepts(req *Request) bool {
	return !req.Resource.Synthetic &&
		p.config.IsResourceTypeEligible(req.Resource.ResourceType) &&
		!req.state.isMarked(req.Resource.Path)
}

func (p *resourceIncludingProcessor) Process(w http.ResponseWriter, req *Request) error {
	req.log.Debug().
		Str("resource", req.Resource.Path).
		Str("resourceType", req.Resource.ResourceType).
		Msg("Flagging resource for deferred inclusion")
	req.state.mark(req.Resource.Path)
	return req.redispatch(w, req)
}
