package aitools

import (
	"errors"
	"fmt"
)

var errDuplicateTool = errors.New("duplicate tool name")

// Provider contributes tool definitions to a Catalog. A provider usually
// wraps one business domain.
type Provider interface {
	Tools() []Definition
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() []Definition

// Tools implements Provider.
func (f ProviderFunc) Tools() []Definition { return f() }

// Catalog is the ordered, immutable set of tool definitions.
type Catalog struct {
	defs   []*Definition
	byName map[string]*Definition
}

// NewCatalog builds a catalog in a single pass over providers. Definitions
// keep the order in which providers return them.
func NewCatalog(providers ...Provider) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*Definition)}

	for _, provider := range providers {
		if provider == nil {
			continue
		}
		for _, def := range provider.Tools() {
			if err := checkDefinition(def); err != nil {
				return nil, err
			}
			if _, exists := c.byName[def.Name]; exists {
				return nil, fmt.Errorf("%w: %s", errDuplicateTool, def.Name)
			}

			d := def
			d.AllowedRoles = append([]Role(nil), def.AllowedRoles...)
			c.defs = append(c.defs, &d)
			c.byName[d.Name] = &d
		}
	}

	return c, nil
}

// MustCatalog is NewCatalog that panics on error.
func MustCatalog(providers ...Provider) *Catalog {
	c, err := NewCatalog(providers...)
	if err != nil {
		panic(err)
	}
	return c
}

func checkDefinition(def Definition) error {
	switch {
	case def.Name == "":
		return errors.New("tool definition without a name")
	case len(def.AllowedRoles) == 0:
		return fmt.Errorf("tool %s: no allowed roles", def.Name)
	case def.Execute == nil:
		return fmt.Errorf("tool %s: no handler", def.Name)
	}
	return nil
}

// Definitions returns every definition in catalog order.
func (c *Catalog) Definitions() []*Definition {
	return append([]*Definition(nil), c.defs...)
}

// DefinitionByName looks a definition up by its unique name.
func (c *Catalog) DefinitionByName(name string) (*Definition, bool) {
	def, ok := c.byName[name]
	return def, ok
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	return len(c.defs)
}
