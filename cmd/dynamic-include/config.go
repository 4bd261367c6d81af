package main

import (
	"os"

	"gopkg.in/yaml.v3"

	dynamicinclude "github.com/dynamic-include/dynamic-include"
)

type ServerConfig struct {
	// Address to listen on, e.g. ":8080".
	Listen string `yaml:"listen"`
	// Repository database file name, or "memory" for an in-memory store.
	Repository string `yaml:"repository"`
	// Filter options, passed through to the include filter as-is.
	Filter dynamicinclude.Options `yaml:"filter"`
	// Resources seeded into the repository at startup.
	Resources []SeedResource `yaml:"resources"`
}

type SeedResource struct {
	Path         string   `yaml:"path"`
	ResourceType string   `yaml:"resourceType"`
	Content      string   `yaml:"content"`
	Children     []string `yaml:"children"`
}

func getConfig(filename string) (ServerConfig, error) {
	config := ServerConfig{
		Listen:     ":8080",
		Repository: "resources.db",
	}
	if filename == "" {
		return config, nil
	}
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}
