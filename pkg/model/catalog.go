package model

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrModelNotFound is returned when a catalog has no model with the requested name.
var ErrModelNotFound = errors.New("model not found")

// Catalog is a concurrency-safe, name-indexed set of models.
type Catalog struct {
	mu     sync.RWMutex
	models map[string]ModelSpec
}

// NewCatalog creates a catalog holding the given models.
func NewCatalog(models ...ModelSpec) (*Catalog, error) {
	c := &Catalog{models: make(map[string]ModelSpec)}
	for _, m := range models {
		if err := c.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultCatalog returns a catalog preloaded with the built-in sample models.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(SampleModels()...)
	if err != nil {
		// The samples are static; failing here is a programming error.
		panic(err)
	}
	return c
}

// Register validates and adds a model, replacing any model with the same name.
func (c *Catalog) Register(m ModelSpec) error {
	if err := m.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[m.Name] = m.clone()
	return nil
}

// Get returns the model with the given name. Lookup is case-insensitive.
func (c *Catalog) Get(name string) (ModelSpec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.models[name]; ok {
		return m.clone(), nil
	}
	for n, m := range c.models {
		if strings.EqualFold(n, name) {
			return m.clone(), nil
		}
	}
	return ModelSpec{}, fmt.Errorf("%w: %s", ErrModelNotFound, name)
}

// Search returns the models whose name, description or category contains
// term, case-insensitively, sorted by name. An empty term matches everything.
func (c *Catalog) Search(term string) []ModelSpec {
	term = strings.ToLower(strings.TrimSpace(term))

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ModelSpec
	for _, m := range c.models {
		if term == "" ||
			strings.Contains(strings.ToLower(m.Name), term) ||
			strings.Contains(strings.ToLower(m.Description), term) ||
			strings.Contains(strings.ToLower(m.Category), term) {
			out = append(out, m.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered models.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// LoadFile reads a YAML model definition and registers it.
func (c *Catalog) LoadFile(path string) (ModelSpec, error) {
	m, err := LoadModelFile(path)
	if err != nil {
		return ModelSpec{}, err
	}
	if err := c.Register(m); err != nil {
		return ModelSpec{}, err
	}
	return m, nil
}

// LoadModelFile parses and validates a YAML model definition.
func LoadModelFile(path string) (ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelSpec{}, fmt.Errorf("failed to read model file: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes a YAML model definition. A field without
// available_types may only be rendered as its own type.
func ParseModel(data []byte) (ModelSpec, error) {
	var m ModelSpec
	if err := yaml.Unmarshal(data, &m); err != nil {
		return ModelSpec{}, fmt.Errorf("failed to parse model: %w", err)
	}
	for i := range m.Fields {
		if len(m.Fields[i].AvailableTypes) == 0 {
			m.Fields[i].AvailableTypes = []SemanticType{m.Fields[i].Type}
		}
	}
	if err := m.Validate(); err != nil {
		return ModelSpec{}, err
	}
	return m, nil
}

// UnmarshalYAML decodes a type name scalar.
func (t *SemanticType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

// MarshalYAML encodes the canonical type name.
func (t SemanticType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// SampleModels returns the built-in example models.
func SampleModels() []ModelSpec {
	return []ModelSpec{
		{
			Name:        "Customer Data",
			Description: "Complete customer information with demographics",
			Category:    "Business",
			Fields: []FieldSpec{
				{
					Name:           "customer_id",
					Description:    "Unique customer identifier",
					Type:           TypeIdentifier,
					AvailableTypes: []SemanticType{TypeIdentifier, TypeInteger, TypeString},
				},
				{
					Name:           "name",
					Description:    "Customer full name",
					Type:           TypePersonName,
					AvailableTypes: []SemanticType{TypePersonName, TypeString},
				},
				{
					Name:           "email",
					Description:    "Customer email",
					Type:           TypeEmail,
					AvailableTypes: []SemanticType{TypeEmail, TypeString},
				},
				{
					Name:           "age",
					Description:    "Customer age",
					Type:           TypeInteger,
					AvailableTypes: []SemanticType{TypeInteger, TypeUnsupported},
					Constraints:    Constraints{"min": 18, "max": 100},
				},
				{
					Name:           "signup_date",
					Description:    "Date the customer registered",
					Type:           TypeDate,
					AvailableTypes: []SemanticType{TypeDate, TypeDatetime},
					Constraints:    Constraints{"min": "2018-01-01", "max": "2025-01-01"},
				},
			},
		},
		{
			Name:        "Product Data",
			Description: "Product inventory information",
			Category:    "E-commerce",
			Fields: []FieldSpec{
				{
					Name:           "product_id",
					Description:    "Product identifier",
					Type:           TypeInteger,
					AvailableTypes: []SemanticType{TypeInteger, TypeString},
					Constraints:    Constraints{"min": 1, "max": 1000000},
				},
				{
					Name:           "product_name",
					Description:    "Product name",
					Type:           TypeString,
					AvailableTypes: []SemanticType{TypeString},
					Constraints:    Constraints{"words": 2},
				},
				{
					Name:           "price",
					Description:    "Product price",
					Type:           TypeFloat,
					AvailableTypes: []SemanticType{TypeFloat, TypeInteger},
					Constraints:    Constraints{"min": 0, "max": 10000},
				},
				{
					Name:           "in_stock",
					Description:    "Whether the product is available",
					Type:           TypeBoolean,
					AvailableTypes: []SemanticType{TypeBoolean},
					Constraints:    Constraints{"probability": 0.8},
				},
				{
					Name:           "department",
					Description:    "Store department",
					Type:           TypeCategory,
					AvailableTypes: []SemanticType{TypeCategory, TypeString},
					Constraints:    Constraints{"values": []string{"Electronics", "Garden", "Toys", "Books", "Grocery"}},
				},
			},
		},
		{
			Name:        "Web Sessions",
			Description: "Visitor sessions with timestamps for clickstream analysis",
			Category:    "Analytics",
			Fields: []FieldSpec{
				{
					Name:           "session_id",
					Type:           TypeIdentifier,
					AvailableTypes: []SemanticType{TypeIdentifier},
				},
				{
					Name:           "visitor_email",
					Type:           TypeEmail,
					AvailableTypes: []SemanticType{TypeEmail, TypeString},
				},
				{
					Name:           "started_at",
					Type:           TypeDatetime,
					AvailableTypes: []SemanticType{TypeDatetime, TypeDate},
					Constraints:    Constraints{"min": "2024-01-01T00:00:00Z", "max": "2024-12-31T23:59:59Z"},
				},
				{
					Name:           "duration_seconds",
					Type:           TypeFloat,
					AvailableTypes: []SemanticType{TypeFloat, TypeInteger},
					Constraints:    Constraints{"min": 1, "max": 3600},
				},
				{
					Name:           "device",
					Type:           TypeCategory,
					AvailableTypes: []SemanticType{TypeCategory},
					Constraints:    Constraints{"values": []string{"desktop", "mobile", "tablet"}},
				},
			},
		},
	}
}
