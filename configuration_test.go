package dynamicinclude

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/dynamic-include/dynamic-include/generator"
	typeregistry "github.com/dynamic-include/dynamic-include/pkg/type-registry"
)

func TestConfigurationDefaults(t *testing.T) {
	c := NewConfiguration(nil, nil)
	if !c.Enabled() {
		t.Fatal("Filter not enabled by default")
	}
	if c.IncludeType() != generator.TypeSSI {
		t.Fatalf("Include type is %s", c.IncludeType())
	}
	if c.AddComment() {
		t.Fatal("AddComment true by default")
	}
	if c.Selector() != "nocache" {
		t.Fatalf("Selector is %s", c.Selector())
	}
	if c.IsResourceTypeEligible("carousel") {
		t.Fatal("Type eligible with empty configuration")
	}
}

func TestConfigurationNeverFails(t *testing.T) {
	c := NewConfiguration(Options{
		OptionEnabled:       []int{1, 2},
		OptionIncludeType:   3.14,
		OptionAddComment:    "maybe",
		OptionSelector:      7,
		OptionResourceTypes: 42,
	}, nil)
	if !c.Enabled() || c.IncludeType() != generator.TypeSSI || c.AddComment() || c.Selector() != "nocache" {
		t.Fatal("Malformed options did not fall back to defaults")
	}
}

func TestConfigurationStringCoercion(t *testing.T) {
	c := NewConfiguration(Options{
		OptionEnabled:       "false",
		OptionAddComment:    "true",
		OptionResourceTypes: "carousel",
	}, nil)
	if c.Enabled() {
		t.Fatal("String false not coerced")
	}
	if !c.AddComment() {
		t.Fatal("String true not coerced")
	}
	if !c.IsResourceTypeEligible("carousel") {
		t.Fatal("Single string type list not coerced")
	}
}

func TestConfigurationInterfaceListCoercion(t *testing.T) {
	// yaml.v3 unmarshals sequences into []interface{}
	c := NewConfiguration(Options{
		OptionResourceTypes: []interface{}{"carousel", "userinfo"},
	}, nil)
	if !c.IsResourceTypeEligible("carousel") || !c.IsResourceTypeEligible("userinfo") {
		t.Fatal("Interface list not coerced")
	}
}

func TestEligibilityCombinesStaticAndRegistry(t *testing.T) {
	reg := typeregistry.New(zerolog.Nop())
	c := NewConfiguration(Options{OptionResourceTypes: []string{"carousel"}}, reg)

	if !c.IsResourceTypeEligible("carousel") {
		t.Fatal("Static type not eligible")
	}
	if c.IsResourceTypeEligible("userinfo") {
		t.Fatal("Unregistered type eligible")
	}

	p := &testProvider{types: []string{"userinfo"}}
	reg.Register(p)
	if !c.IsResourceTypeEligible("userinfo") {
		t.Fatal("Provider contribution not eligible")
	}

	reg.Unregister(p)
	if c.IsResourceTypeEligible("userinfo") {
		t.Fatal("Provider contribution survived unregister")
	}
	if !c.IsResourceTypeEligible("carousel") {
		t.Fatal("Static type lost after unregister")
	}
}
