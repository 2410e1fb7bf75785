package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultNamespace is the registry namespace the Schul-Cloud images live in.
const DefaultNamespace = "schulcloud"

// CatalogEntry maps an image repository name to its short application name.
type CatalogEntry struct {
	Image string `yaml:"image"`
	Name  string `yaml:"name"`
}

// Catalog is the list of applications a run tries to deploy, in order.
type Catalog struct {
	Namespace    string         `yaml:"namespace"`
	Applications []CatalogEntry `yaml:"applications"`
}

// DefaultCatalog returns the built-in application catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Namespace: DefaultNamespace,
		Applications: []CatalogEntry{
			{Image: "schulcloud-server", Name: "server"},
			{Image: "schulcloud-client", Name: "client"},
			{Image: "schulcloud-nuxt-client", Name: "nuxtclient"},
			{Image: "schulcloud-nuxt-storybook", Name: "storybook"},
			{Image: "schulcloud-nuxt-vuepress", Name: "vuepress"},
			{Image: "schulcloud-calendar", Name: "calendar"},
			{Image: "antivirus_check_service.scanfile", Name: "scanfile"},
			{Image: "antivirus_check_service.webserver", Name: "webserver"},
		},
	}
}

// LoadCatalog reads a YAML catalog file. A missing namespace falls back to DefaultNamespace.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates YAML catalog content.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks that the catalog is non-empty and every entry can form an Application.
func (c Catalog) Validate() error {
	if len(c.Applications) == 0 {
		return fmt.Errorf("%w: catalog has no applications", ErrInvalidArgument)
	}
	seen := make(map[string]bool, len(c.Applications))
	for i, entry := range c.Applications {
		if entry.Name == "" {
			return fmt.Errorf("%w: catalog entry %d has no name", ErrInvalidArgument, i)
		}
		if seen[entry.Name] {
			return fmt.Errorf("%w: duplicate catalog entry %q", ErrInvalidArgument, entry.Name)
		}
		seen[entry.Name] = true
		if err := validateRepository(c.Repository(entry)); err != nil {
			return err
		}
	}
	return nil
}

// Repository returns the namespaced repository of a catalog entry.
func (c Catalog) Repository(entry CatalogEntry) string {
	return fmt.Sprintf("%s/%s", c.Namespace, entry.Image)
}
