package dynamicinclude

import (
	"net/http"

	"github.com/dynamic-include/dynamic-include/generator"
)

// includeTagWritingProcessor emits the include directive for resources
// flagged by an earlier match in the same traversal. The directive is the
// entire output of this dispatch; normal rendering is skipped. Must stay
// last in the chain, after the processors that establish the flag.
type includeTagWritingProcessor struct {
	config     *Configuration
	generators *generator.Factory
}

func (p *includeTagWritingProcessor) name() string {
	return "writing"
}

func (p *includeTagWritingProcessor) Accepts(req *Request) bool {
	return req.state.isMarked(req.Resource.Path)
}

func (p *includeTagWritingProcessor) Process(w http.ResponseWriter, req *Request) error {
	address := deferredAddress(p.config, req.Resource.Path, req.Path)
	req.log.Debug().
		Str("resource", req.Resource.Path).
		Str("address", address).
		Msg("Writing include directive")
	return writeDirective(w, p.config, p.generators, address)
}
