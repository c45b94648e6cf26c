package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return &c, nil
}

// Validate checks the catalog for errors.
func (c *Catalog) Validate() error {
	if c.BaseRate <= 0 {
		return fmt.Errorf("base_rate must be positive, got %d", c.BaseRate)
	}
	if err := validateBand(c.DefaultBand, "default_band"); err != nil {
		return err
	}

	names := make(map[string]bool)
	for i, d := range c.Districts {
		if d.Name == "" {
			return fmt.Errorf("district[%d]: name is required", i)
		}
		if names[d.Name] {
			return fmt.Errorf("district[%d]: duplicate name '%s'", i, d.Name)
		}
		names[d.Name] = true

		for j, b := range d.Bands {
			if err := validateBand(b, fmt.Sprintf("district[%d].bands[%d]", i, j)); err != nil {
				return err
			}
		}
	}

	setNames := make(map[string]bool)
	for i, s := range c.Sets {
		if s.Name == "" {
			return fmt.Errorf("equipment_set[%d]: name is required", i)
		}
		if setNames[s.Name] {
			return fmt.Errorf("equipment_set[%d]: duplicate name '%s'", i, s.Name)
		}
		setNames[s.Name] = true

		if len(s.Components) == 0 {
			return fmt.Errorf("equipment_set[%d]: no components", i)
		}
		for j, comp := range s.Components {
			if comp.Name == "" {
				return fmt.Errorf("equipment_set[%d].components[%d]: name is required", i, j)
			}
			if comp.Price < 0 {
				return fmt.Errorf("equipment_set[%d].components[%d]: negative price", i, j)
			}
		}
	}

	svcNames := make(map[string]bool)
	for i, s := range c.ServiceList {
		if s.Name == "" {
			return fmt.Errorf("service[%d]: name is required", i)
		}
		if svcNames[s.Name] {
			return fmt.Errorf("service[%d]: duplicate name '%s'", i, s.Name)
		}
		svcNames[s.Name] = true
		if s.Price < 0 {
			return fmt.Errorf("service[%d]: negative price", i)
		}
	}

	return nil
}

func validateBand(b DepthBand, prefix string) error {
	if b.Min < 0 {
		return fmt.Errorf("%s: min must be >= 0, got %d", prefix, b.Min)
	}
	if b.Min > b.Max {
		return fmt.Errorf("%s: min %d exceeds max %d", prefix, b.Min, b.Max)
	}
	return nil
}

func (c *Catalog) applyDefaults() {
	def := Default()
	if c.BaseRate == 0 {
		c.BaseRate = def.BaseRate
	}
	if c.DefaultBand == (DepthBand{}) {
		c.DefaultBand = def.DefaultBand
	}
}

// String returns a summary of the catalog.
func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog: %d districts, %d equipment sets, %d services, base rate %d",
		len(c.Districts), len(c.Sets), len(c.ServiceList), c.BaseRate)
}
