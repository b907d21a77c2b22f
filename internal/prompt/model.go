package prompt

import (
	"errors"
	"fmt"
)

// ErrUnknownModel is returned when a model id is not in the catalog.
var ErrUnknownModel = errors.New("unknown model")

// Model is an inference backend a prompt can be sent to.
type Model struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// SuppressReasoning appends the reasoning-suppression token after the
	// open assistant header.
	SuppressReasoning bool `json:"suppress_reasoning"`
}

var (
	DeepSeekR1 = Model{ID: "deepseek-r1", Label: "DeepSeek R1", SuppressReasoning: true}
	Llama32    = Model{ID: "us.meta.llama3-2-90b-instruct-v1:0", Label: "Llama 3.2 90B Instruct"}
)

// Catalog is the ordered set of selectable models with one default.
type Catalog struct {
	models    []Model
	index     map[string]int
	defaultID string
}

// NewCatalog validates models and returns a Catalog. Ids must be unique and
// non-empty; defaultID must name one of them.
func NewCatalog(models []Model, defaultID string) (*Catalog, error) {
	if len(models) == 0 {
		return nil, errors.New("model catalog is empty")
	}
	c := &Catalog{
		models:    make([]Model, 0, len(models)),
		index:     make(map[string]int, len(models)),
		defaultID: defaultID,
	}
	for _, m := range models {
		if m.ID == "" {
			return nil, errors.New("model id is required")
		}
		if _, dup := c.index[m.ID]; dup {
			return nil, fmt.Errorf("duplicate model id %q", m.ID)
		}
		if m.Label == "" {
			m.Label = m.ID
		}
		c.index[m.ID] = len(c.models)
		c.models = append(c.models, m)
	}
	if _, ok := c.index[defaultID]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownModel, defaultID)
	}
	return c, nil
}

// DefaultCatalog holds the two built-in models with the reasoning model as
// default.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Model{DeepSeekR1, Llama32}, DeepSeekR1.ID)
	if err != nil {
		panic(err)
	}
	return c
}

// Models returns the catalog in declaration order.
func (c *Catalog) Models() []Model {
	out := make([]Model, len(c.models))
	copy(out, c.models)
	return out
}

// Default returns the default model.
func (c *Catalog) Default() Model {
	return c.models[c.index[c.defaultID]]
}

// Lookup returns the model with the given id.
func (c *Catalog) Lookup(id string) (Model, bool) {
	i, ok := c.index[id]
	if !ok {
		return Model{}, false
	}
	return c.models[i], true
}

// Resolve maps an empty id to the default model and rejects unknown ids.
func (c *Catalog) Resolve(id string) (Model, error) {
	if id == "" {
		return c.Default(), nil
	}
	m, ok := c.Lookup(id)
	if !ok {
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	return m, nil
}
