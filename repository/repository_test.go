package repository

import (
	"bytes"
	"reflect"
	"testing"
)

func repositories() map[string]Repository {
	return map[string]Repository{
		"mem":    NewMemRepository(),
		"sqlite": NewSQLiteRepository(""),
	}
}

func TestPutAndGet(t *testing.T) {
	for name, repo := range repositories() {
		t.Run(name, func(t *testing.T) {
			res := Resource{
				Path:         "/content/home/carousel",
				ResourceType: "carousel",
				Content:      []byte("<div>slides</div>"),
				Children:     []string{"/content/home/carousel/slide1", "/content/home/carousel/slide2"},
			}
			if err := repo.Put(res); err != nil {
				t.Fatal(err)
			}
			got, ok, err := repo.Get("/content/home/carousel")
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatal("Resource not found")
			}
			if got.ResourceType != "carousel" || !bytes.Equal(got.Content, res.Content) {
				t.Fatalf("Got %+v", got)
			}
			if !reflect.DeepEqual(got.Children, res.Children) {
				t.Fatalf("Children are %v", got.Children)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, repo := range repositories() {
		t.Run(name, func(t *testing.T) {
			_, ok, err := repo.Get("/does/not/exist")
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Fatal("Missing resource reported as found")
			}
		})
	}
}

func TestPutReplaces(t *testing.T) {
	for name, repo := range repositories() {
		t.Run(name, func(t *testing.T) {
			repo.Put(Resource{Path: "/a", ResourceType: "teaser"})
			repo.Put(Resource{Path: "/a", ResourceType: "carousel"})
			got, ok, err := repo.Get("/a")
			if err != nil || !ok {
				t.Fatalf("Get failed: ok=%v err=%v", ok, err)
			}
			if got.ResourceType != "carousel" {
				t.Fatalf("Resource type is %s", got.ResourceType)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for name, repo := range repositories() {
		t.Run(name, func(t *testing.T) {
			repo.Put(Resource{Path: "/a", ResourceType: "teaser"})
			if err := repo.Delete("/a"); err != nil {
				t.Fatal(err)
			}
			if _, ok, _ := repo.Get("/a"); ok {
				t.Fatal("Resource still found after delete")
			}
			// deleting again is a no-op
			if err := repo.Delete("/a"); err != nil {
				t.Fatal(err)
			}
		})
	}
}
