// Package seed parses catalog seed documents.
//
// A document is a YAML (or JSON) mapping of category key to category:
//
//	fruit:
//	  title: Fruit
//	  description: Fresh fruit
//	  picture: https://example.com/fruit.jpg
//	  items:
//	    - title: Apple
//	      description: Crisp
//	      price: 1.5
//	      pictures: [https://example.com/apple.png]
//	      tags: [fresh, red]
//
// Categories and items keep document order. Structural problems with the
// document as a whole fail Parse; problems local to one category or item are
// attached to that entry so the caller can record them and move on.
package seed

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	domainerrors "github.com/untdf/catalog/internal/errors"
)

// Document is a parsed seed document.
type Document struct {
	Categories []CategoryEntry
}

// Category is the header of one category entry.
type Category struct {
	Title       string `yaml:"title" json:"title" validate:"required,notblank,max=200"`
	Description string `yaml:"description" json:"description" validate:"max=5000"`
	Picture     string `yaml:"picture" json:"picture"`
}

// Item describes one product of a category.
type Item struct {
	Title       string   `yaml:"title" json:"title" validate:"required,notblank,max=200"`
	Description string   `yaml:"description" json:"description" validate:"max=5000"`
	Price       *Price   `yaml:"price" json:"price" validate:"required,finite,gte=0"`
	Pictures    []string `yaml:"pictures" json:"pictures"`
	Tags        []string `yaml:"tags" json:"tags"`
}

// Price is an item price. Numeric strings such as "1.5" are accepted as well
// as plain numbers.
type Price float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Price) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
		f, err := strconv.ParseFloat(strings.TrimSpace(node.Value), 64)
		if err != nil {
			return fmt.Errorf("line %d: price %q is not a number", node.Line, node.Value)
		}
		*p = Price(f)
		return nil
	}

	var f float64
	if err := node.Decode(&f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

// CategoryEntry is one top-level entry. Err is set when the entry could not be
// decoded; Category and Items are then empty.
type CategoryEntry struct {
	Key      string
	Line     int
	Category Category
	Items    []ItemEntry
	Err      error
}

// ItemEntry is one item of a category. Err is set when the item could not be
// decoded; Title then holds whatever title could be recovered, if any.
type ItemEntry struct {
	Index int
	Line  int
	Title string
	Item  Item
	Err   error
}

// Label describes the item for error messages.
func (e ItemEntry) Label() string {
	if e.Title != "" {
		return fmt.Sprintf("%q", e.Title)
	}
	return fmt.Sprintf("#%d", e.Index+1)
}

type categoryNode struct {
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description" json:"description"`
	Picture     string    `yaml:"picture" json:"picture"`
	Items       yaml.Node `yaml:"items" json:"items"`
}

// Parse decodes a seed document. It returns a VALIDATION error when data is
// not a non-empty mapping.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domainerrors.Validation("seed document is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "seed document is not valid YAML")
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, domainerrors.Validation("seed document is empty")
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, domainerrors.Validationf("seed document must be a mapping of categories (line %d)", top.Line)
	}
	if len(top.Content) == 0 {
		return nil, domainerrors.Validation("seed document has no categories")
	}

	doc := &Document{Categories: make([]CategoryEntry, 0, len(top.Content)/2)}
	for i := 0; i+1 < len(top.Content); i += 2 {
		doc.Categories = append(doc.Categories, parseCategory(top.Content[i], top.Content[i+1]))
	}
	return doc, nil
}

// ParseFile reads and parses the document at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- operator-supplied seed file
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domainerrors.Validationf("seed file not found: %s", path)
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "read seed file")
	}
	return Parse(data)
}

func parseCategory(key, value *yaml.Node) CategoryEntry {
	entry := CategoryEntry{Key: key.Value, Line: key.Line}

	if value.Kind != yaml.MappingNode {
		entry.Err = fmt.Errorf("line %d: category must be a mapping", value.Line)
		return entry
	}

	var raw categoryNode
	if err := value.Decode(&raw); err != nil {
		entry.Err = fmt.Errorf("line %d: %w", value.Line, err)
		return entry
	}
	entry.Category = Category{
		Title:       raw.Title,
		Description: raw.Description,
		Picture:     raw.Picture,
	}

	switch {
	case raw.Items.Kind == 0, raw.Items.Tag == "!!null":
		// No items.
	case raw.Items.Kind != yaml.SequenceNode:
		entry.Err = fmt.Errorf("line %d: items must be a list", raw.Items.Line)
		return entry
	default:
		entry.Items = make([]ItemEntry, 0, len(raw.Items.Content))
		for i, node := range raw.Items.Content {
			entry.Items = append(entry.Items, parseItem(i, node))
		}
	}
	return entry
}

func parseItem(index int, node *yaml.Node) ItemEntry {
	entry := ItemEntry{Index: index, Line: node.Line, Title: scalarField(node, "title")}

	if node.Kind != yaml.MappingNode {
		entry.Err = fmt.Errorf("line %d: item must be a mapping", node.Line)
		return entry
	}
	if err := node.Decode(&entry.Item); err != nil {
		entry.Err = fmt.Errorf("line %d: %w", node.Line, err)
		return entry
	}
	return entry
}

// scalarField returns the scalar value of key in a mapping node, or "".
func scalarField(node *yaml.Node, key string) string {
	if node.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key && node.Content[i+1].Kind == yaml.ScalarNode {
			return node.Content[i+1].Value
		}
	}
	return ""
}
