package dynamicinclude

import (
	"fmt"
	"net/http"
	"strings"

	fragmentpath "github.com/dynamic-include/dynamic-include/pkg/fragment-path"
	"github.com/dynamic-include/dynamic-include/repository"
)

// Resolver resolves the target resource of a request. A resolution error
// means the request is not of the shape the filter handles; the dispatcher
// falls back to normal processing.
type Resolver interface {
	Resolve(r *http.Request) (Resource, error)
}

// RepositoryResolver resolves request targets against a resource repository.
// Paths without a stored resource resolve to synthetic resources whose type
// is derived from the path, mirroring how such fragments are addressed by
// type when deferred.
type RepositoryResolver struct {
	Repository repository.Repository
}

func (rr RepositoryResolver) Resolve(r *http.Request) (Resource, error) {
	path := fragmentpath.Parse(r.URL.Path).ResourcePath
	res, ok, err := rr.Repository.Get(path)
	if err != nil {
		return Resource{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	if !ok {
		return Resource{
			Path:         path,
			ResourceType: strings.TrimPrefix(path, "/"),
			Synthetic:    true,
		}, nil
	}
	return Resource{Path: res.Path, ResourceType: res.ResourceType}, nil
}
