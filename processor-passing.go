package dynamicinclude

import (
	"net/http"
)

// requestPassingProcessor recognizes requests carrying the recursion marker
// selector: the deferred fetch of a previously emitted include directive.
// Such a request renders normally, which bounds the deferral recursion to
// exactly one extra hop per fragment. Must stay first in the chain.
type requestPassingProcessor struct {
	config *Configuration
}

func (p *requestPassingProcessor) name() string {
	return "passing"
}

func (p *requestPassingProcessor) Accepts(req *Request) bool {
	return req.Path.HasSelector(p.config.Selector())
}

func (p *requestPassingProcessor) Process(w http.ResponseWriter, req *Request) error {
	req.log.Debug().Str("resource", req.Resource.Path).Msg("Passing deferred fetch to normal rendering")
	req.ContinueNormalProcessing(w)
	return nil
}
