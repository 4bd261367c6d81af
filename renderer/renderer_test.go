package renderer

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	dynamicinclude "github.com/dynamic-include/dynamic-include"
	"github.com/dynamic-include/dynamic-include/repository"
)

func testRepo() repository.MemRepository {
	repo := repository.NewMemRepository()
	repo.Put(repository.Resource{
		Path:         "/content/home",
		ResourceType: "page",
		Content:      []byte("<h1>Home</h1>"),
		Children:     []string{"/content/home/teaser", "/content/home/carousel"},
	})
	repo.Put(repository.Resource{
		Path:         "/content/home/teaser",
		ResourceType: "teaser",
		Content:      []byte("<p>teaser</p>"),
	})
	repo.Put(repository.Resource{
		Path:         "/content/home/carousel",
		ResourceType: "carousel",
		Content:      []byte("<div>slides</div>"),
	})
	return repo
}

func get(t *testing.T, handler http.Handler, path string) string {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	body, err := io.ReadAll(rr.Result().Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestRendererWithoutFilterRendersInline(t *testing.T) {
	rend := &Renderer{Repository: testRepo(), Log: zerolog.Nop()}
	body := get(t, rend, "/content/home.html")
	for _, want := range []string{"<h1>Home</h1>", "<p>teaser</p>", "<div>slides</div>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("Body %s is missing %s", body, want)
		}
	}
}

func TestRendererDefersEligibleChildren(t *testing.T) {
	repo := testRepo()
	log := zerolog.Nop()
	filter := dynamicinclude.New(dynamicinclude.Config{
		Options:  dynamicinclude.Options{dynamicinclude.OptionResourceTypes: []string{"carousel"}},
		Resolver: dynamicinclude.RepositoryResolver{Repository: repo},
		Logger:   &log,
	})
	rend := &Renderer{Repository: repo, Filter: filter, Log: zerolog.Nop()}
	handler := filter.Middleware(rend)

	body := get(t, handler, "/content/home.html")
	if !strings.Contains(body, "<h1>Home</h1>") || !strings.Contains(body, "<p>teaser</p>") {
		t.Fatalf("Page content missing: %s", body)
	}
	if strings.Contains(body, "<div>slides</div>") {
		t.Fatalf("Eligible child rendered inline: %s", body)
	}
	if !strings.Contains(body, `<!--#include virtual="/content/home/carousel.nocache.html" -->`) {
		t.Fatalf("Directive missing: %s", body)
	}

	// the deferred fetch renders the fragment content
	fragment := get(t, handler, "/content/home/carousel.nocache.html")
	if fragment != "<div>slides</div>" {
		t.Fatalf("Fragment body is %s", fragment)
	}
}

func TestRendererDirectFragmentRequestGetsDirective(t *testing.T) {
	repo := testRepo()
	log := zerolog.Nop()
	filter := dynamicinclude.New(dynamicinclude.Config{
		Options:  dynamicinclude.Options{dynamicinclude.OptionResourceTypes: []string{"carousel"}},
		Resolver: dynamicinclude.RepositoryResolver{Repository: repo},
		Logger:   &log,
	})
	rend := &Renderer{Repository: repo, Filter: filter, Log: zerolog.Nop()}
	handler := filter.Middleware(rend)

	body := get(t, handler, "/content/home/carousel.html")
	if body != `<!--#include virtual="/content/home/carousel.nocache.html" -->` {
		t.Fatalf("Body is %s", body)
	}
}

func TestRendererSyntheticPlaceholder(t *testing.T) {
	rend := &Renderer{Repository: testRepo(), Log: zerolog.Nop()}
	body := get(t, rend, "/apps/weather.html")
	if body != `<div data-resource-type="apps/weather"></div>` {
		t.Fatalf("Body is %s", body)
	}
}
