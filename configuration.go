package dynamicinclude

import (
	"fmt"
	"strconv"

	"github.com/dynamic-include/dynamic-include/generator"
	typeregistry "github.com/dynamic-include/dynamic-include/pkg/type-registry"
)

// Option keys recognized by NewConfiguration.
const (
	OptionEnabled       = "enabled"
	OptionResourceTypes = "eligibleResourceTypes"
	OptionIncludeType   = "includeFlavor"
	OptionAddComment    = "addComment"
	OptionSelector      = "recursionMarkerSelector"
)

// Defaults applied for missing or malformed options.
const (
	DefaultEnabled     = true
	DefaultIncludeType = generator.TypeSSI
	DefaultAddComment  = false
	DefaultSelector    = "nocache"
)

// Options is the raw settings map a Configuration is built from.
// Values are coerced leniently; anything missing or malformed falls back to
// the documented default.
type Options map[string]interface{}

// Configuration is an immutable snapshot of the filter settings combined with
// the provider registry. It is rebuilt wholesale on every activation and never
// mutated afterwards, so all reads are lock-free.
type Configuration struct {
	enabled       bool
	includeType   string
	addComment    bool
	selector      string
	resourceTypes map[string]bool
	registry      *typeregistry.Registry
}

// NewConfiguration builds a configuration snapshot. It never fails.
func NewConfiguration(opts Options, registry *typeregistry.Registry) *Configuration {
	types := map[string]bool{}
	for _, t := range stringsOption(opts, OptionResourceTypes) {
		types[t] = true
	}
	return &Configuration{
		enabled:       boolOption(opts, OptionEnabled, DefaultEnabled),
		includeType:   stringOption(opts, OptionIncludeType, DefaultIncludeType),
		addComment:    boolOption(opts, OptionAddComment, DefaultAddComment),
		selector:      stringOption(opts, OptionSelector, DefaultSelector),
		resourceTypes: types,
		registry:      registry,
	}
}

// Enabled reports whether interception is globally enabled.
func (c *Configuration) Enabled() bool {
	return c.enabled
}

// IncludeType returns the include directive syntax to generate.
func (c *Configuration) IncludeType() string {
	return c.includeType
}

// AddComment reports whether directives are wrapped with a marker comment.
func (c *Configuration) AddComment() bool {
	return c.addComment
}

// Selector returns the reserved selector marking a request as the deferred
// fetch of a previously emitted include directive.
func (c *Configuration) Selector() string {
	return c.selector
}

// IsResourceTypeEligible reports whether fragments of the given type are
// subject to deferred inclusion, either through the static type list or
// through a currently registered provider.
func (c *Configuration) IsResourceTypeEligible(resourceType string) bool {
	if c.resourceTypes[resourceType] {
		return true
	}
	return c.registry != nil && c.registry.ContainsType(resourceType)
}

func boolOption(opts Options, key string, fallback bool) bool {
	switch v := opts[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func stringOption(opts Options, key, fallback string) string {
	if s, ok := opts[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringsOption(opts Options, key string) []string {
	switch v := opts[key].(type) {
	case []string:
		return v
	case []interface{}:
		strs := make([]string, 0, len(v))
		for _, e := range v {
			strs = append(strs, fmt.Sprintf("%v", e))
		}
		return strs
	case string:
		return []string{v}
	}
	return nil
}
