// Package tools serves the static catalog of recommended developer tools.
package tools

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Type groups tools by the job they do in a project.
type Type string

const (
	TypeSourceControl    Type = "sourcecontrol"
	TypeCI               Type = "ci"
	TypeContainerization Type = "containerization"
	TypeDeployment       Type = "deployment"
	TypeWeb              Type = "web"
	TypeTest             Type = "test"
	TypeDatabase         Type = "database"
)

// Tool is one catalog entry.
type Tool struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Type        Type   `json:"type" yaml:"type"`
	WebsiteURL  string `json:"website_url" yaml:"website_url"`
	Description string `json:"description" yaml:"description"`
}

// Catalog is an immutable list of tools.
type Catalog struct {
	tools []Tool
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(catalogYAML)
	})
	return defaultCatalog, defaultErr
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var tools []Tool
	if err := yaml.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("parse tools catalog: %w", err)
	}
	return &Catalog{tools: tools}, nil
}

func (c *Catalog) GetTools() []Tool {
	out := make([]Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

func (c *Catalog) GetSourceControlTools() []Tool    { return c.byType(TypeSourceControl) }
func (c *Catalog) GetCITools() []Tool               { return c.byType(TypeCI) }
func (c *Catalog) GetContainerizationTools() []Tool { return c.byType(TypeContainerization) }
func (c *Catalog) GetDeploymentTools() []Tool       { return c.byType(TypeDeployment) }
func (c *Catalog) GetWebFrameworks() []Tool         { return c.byType(TypeWeb) }
func (c *Catalog) GetTestFrameworks() []Tool        { return c.byType(TypeTest) }
func (c *Catalog) GetDatabaseTools() []Tool         { return c.byType(TypeDatabase) }

func (c *Catalog) byType(t Type) []Tool {
	out := []Tool{}
	for _, tool := range c.tools {
		if tool.Type == t {
			out = append(out, tool)
		}
	}
	return out
}
