package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// maxDepth bounds tree traversal so a malformed hand-edited document
// cannot recurse unboundedly.
const maxDepth = 32

// Category is a single node of the category tree. Each node owns its
// subcategories; the whole tree is owned by the Catalog.
type Category struct {
	Slug                      string            `json:"slug"`
	Label                     string            `json:"label"`
	AttributeExtractionPrompt string            `json:"attributeExtractionPrompt,omitempty"`
	Attributes                map[string]string `json:"attributes,omitempty"`
	SubCategories             []*Category       `json:"subCategories,omitempty"`
}

// Document is the versioned category document consumed at startup.
type Document struct {
	Version         string      `json:"version"`
	DefaultLanguage string      `json:"defaultLanguage"`
	Categories      []*Category `json:"categories"`
}

// FlatCategory is one row of the flattened tree.
type FlatCategory struct {
	Path                      []string `json:"path"`   // root-to-node slugs
	Labels                    []string `json:"labels"` // root-to-node labels
	AttributeExtractionPrompt string   `json:"attributeExtractionPrompt,omitempty"`
}

// Catalog is the in-memory category index. It is built once from a
// document and never mutated afterwards, so concurrent reads need no
// locking.
type Catalog struct {
	version   string
	language  string
	roots     []*Category
	slugIndex map[string]*Category
}

// Load parses the category document and builds the slug index via a
// pre-order traversal. Duplicate slugs keep the last-registered node.
func Load(data []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse category document: %w", err)
	}

	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("category document contains no categories")
	}

	c := &Catalog{
		version:   doc.Version,
		language:  doc.DefaultLanguage,
		roots:     doc.Categories,
		slugIndex: make(map[string]*Category),
	}

	for _, root := range doc.Categories {
		if err := c.register(root, 0); err != nil {
			return nil, err
		}
	}

	log.Infof("Loaded category catalog version %s with %d categories", doc.Version, len(c.slugIndex))
	return c, nil
}

func (c *Catalog) register(node *Category, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("category tree exceeds maximum depth of %d", maxDepth)
	}
	if node.Slug == "" {
		return fmt.Errorf("category with label %q has no slug", node.Label)
	}

	key := strings.ToLower(node.Slug)
	if _, exists := c.slugIndex[key]; exists {
		log.Warnf("Duplicate category slug %q, keeping last-registered node", node.Slug)
	}
	c.slugIndex[key] = node

	for _, sub := range node.SubCategories {
		if err := c.register(sub, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Version returns the document version the catalog was built from.
func (c *Catalog) Version() string {
	return c.version
}

// GetCategory looks up a category by slug, case-insensitively.
func (c *Catalog) GetCategory(slug string) *Category {
	return c.slugIndex[strings.ToLower(slug)]
}

// GetTopLevelCategories returns the root categories in declaration order.
func (c *Catalog) GetTopLevelCategories() []*Category {
	return c.roots
}

// GetSubCategories returns the direct children of the category with the
// given slug, or nil if the slug is unknown.
func (c *Catalog) GetSubCategories(parentSlug string) []*Category {
	parent := c.GetCategory(parentSlug)
	if parent == nil {
		return nil
	}
	return parent.SubCategories
}

// ResolvePath returns the root-to-node path of slugs for the first node
// in pre-order traversal whose slug matches, or nil if no node matches.
func (c *Catalog) ResolvePath(slug string) []string {
	target := strings.ToLower(slug)
	for _, root := range c.roots {
		if path := resolvePath(root, target, nil); path != nil {
			return path
		}
	}
	return nil
}

func resolvePath(node *Category, target string, prefix []string) []string {
	path := append(append([]string{}, prefix...), node.Slug)
	if strings.ToLower(node.Slug) == target {
		return path
	}
	for _, sub := range node.SubCategories {
		if found := resolvePath(sub, target, path); found != nil {
			return found
		}
	}
	return nil
}

// GetAttributeExtractionPrompt walks the tree along path, matching each
// segment against slug or label case-insensitively, and returns the
// final node's extraction prompt. Returns "" if the path does not resolve.
func (c *Catalog) GetAttributeExtractionPrompt(path []string) string {
	node := c.walk(path)
	if node == nil {
		return ""
	}
	return node.AttributeExtractionPrompt
}

// GetAttributesToExtract returns the attribute name to sample value
// mapping of the node at path, or nil if the path does not resolve.
func (c *Catalog) GetAttributesToExtract(path []string) map[string]string {
	node := c.walk(path)
	if node == nil {
		return nil
	}
	return node.Attributes
}

// walk resolves a path of slugs or labels from the roots. Callers may
// mix machine slugs and human labels; both match case-insensitively.
func (c *Catalog) walk(path []string) *Category {
	if len(path) == 0 {
		return nil
	}

	candidates := c.roots
	var node *Category
	for _, segment := range path {
		node = matchSegment(candidates, segment)
		if node == nil {
			return nil
		}
		candidates = node.SubCategories
	}
	return node
}

func matchSegment(candidates []*Category, segment string) *Category {
	for _, candidate := range candidates {
		if strings.EqualFold(candidate.Slug, segment) || strings.EqualFold(candidate.Label, segment) {
			return candidate
		}
	}
	return nil
}

// GetAllCategories flattens the whole tree in pre-order, parents before
// children, children in declaration order. Each call produces a fresh slice.
func (c *Catalog) GetAllCategories() []FlatCategory {
	var flat []FlatCategory
	for _, root := range c.roots {
		flat = flatten(root, nil, nil, flat)
	}
	return flat
}

func flatten(node *Category, slugs, labels []string, acc []FlatCategory) []FlatCategory {
	path := append(append([]string{}, slugs...), node.Slug)
	names := append(append([]string{}, labels...), node.Label)

	acc = append(acc, FlatCategory{
		Path:                      path,
		Labels:                    names,
		AttributeExtractionPrompt: node.AttributeExtractionPrompt,
	})

	for _, sub := range node.SubCategories {
		acc = flatten(sub, path, names, acc)
	}
	return acc
}

// CategoryMatches reports whether filterPath is a case-insensitive prefix
// of candidatePath. An empty filter matches everything.
func CategoryMatches(filterPath, candidatePath []string) bool {
	if len(filterPath) > len(candidatePath) {
		return false
	}
	for i, segment := range filterPath {
		if !strings.EqualFold(segment, candidatePath[i]) {
			return false
		}
	}
	return true
}
