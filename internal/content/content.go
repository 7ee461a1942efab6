// Package content holds the portfolio's static data: bio, skills, education
// and projects. A default document is embedded; a YAML file can replace it.
package content

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultDoc []byte

// Category tags a project for the gallery filter.
type Category string

const CategoryAll Category = "all"

type Project struct {
	ID          int      `yaml:"id"`
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Details     string   `yaml:"details"` // markdown, shown in the modal
	Tags        []string `yaml:"tags"`
	Category    Category `yaml:"category"`
	GitHub      string   `yaml:"github"`
	Webapp      string   `yaml:"webapp"`
}

type SkillGroup struct {
	Title  string   `yaml:"title"`
	Skills []string `yaml:"skills"`
}

type Education struct {
	School string `yaml:"school"`
	Degree string `yaml:"degree"`
	Date   string `yaml:"date"`
	Grade  string `yaml:"grade"`
	Desc   string `yaml:"desc"`
}

// Filter is one toggle of the project gallery.
type Filter struct {
	Category Category `yaml:"category"`
	Label    string   `yaml:"label"`
}

type Content struct {
	Name      string       `yaml:"name"`
	Roles     []string     `yaml:"roles"`
	Bio       string       `yaml:"bio"`
	GitHub    string       `yaml:"github"`
	Resume    string       `yaml:"resume"`
	Skills    []SkillGroup `yaml:"skills"`
	Education []Education  `yaml:"education"`
	Filters   []Filter     `yaml:"filters"`
	Projects  []Project    `yaml:"projects"`
}

// Default returns the embedded document.
func Default() (*Content, error) {
	return Parse(defaultDoc)
}

// Load reads a document from path.
func Load(path string) (*Content, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and checks a document. The "all" filter is always present
// and always first.
func Parse(b []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("parse content: name is required")
	}
	seen := make(map[int]bool, len(c.Projects))
	for _, p := range c.Projects {
		if seen[p.ID] {
			return nil, fmt.Errorf("parse content: duplicate project id %d", p.ID)
		}
		seen[p.ID] = true
	}

	filters := []Filter{{Category: CategoryAll, Label: "All"}}
	for _, f := range c.Filters {
		if f.Category == CategoryAll {
			if f.Label != "" {
				filters[0].Label = f.Label
			}
			continue
		}
		if f.Label == "" {
			f.Label = string(f.Category)
		}
		filters = append(filters, f)
	}
	c.Filters = filters
	return &c, nil
}

// FilterProjects returns the projects shown under category; CategoryAll shows
// every project once.
func (c *Content) FilterProjects(category Category) []Project {
	if category == CategoryAll || category == "" {
		out := make([]Project, len(c.Projects))
		copy(out, c.Projects)
		return out
	}
	var out []Project
	for _, p := range c.Projects {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
