package data

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed catalog/*.json
var dataFiles embed.FS

// MerchantTable maps a merchant category to the merchants that can appear
// under it.
type MerchantTable map[string][]string

// Catalog holds the merchant reference data for the generator.
type Catalog struct {
	Generic   MerchantTable            `json:"generic"`
	Countries map[string]MerchantTable `json:"countries"`
}

var (
	instance *Catalog
	once     sync.Once
	loadErr  error
)

// Load parses the embedded catalog. Safe for concurrent use; the file is
// read once.
func Load() (*Catalog, error) {
	once.Do(func() {
		raw, err := dataFiles.ReadFile("catalog/merchants.json")
		if err != nil {
			loadErr = fmt.Errorf("failed to read merchants.json: %w", err)
			return
		}
		instance, loadErr = Parse(raw)
	})

	if loadErr != nil {
		return nil, loadErr
	}
	return instance, nil
}

// Parse decodes a catalog document. Used by Load and by tests that need a
// catalog with gaps.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse merchant catalog: %w", err)
	}
	if c.Generic == nil {
		c.Generic = MerchantTable{}
	}
	if c.Countries == nil {
		c.Countries = map[string]MerchantTable{}
	}
	if err := c.checkCountryCategories(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Merchants resolves the merchant list for a category in a country. The
// country table wins when it has the category; otherwise the generic table
// is used. An empty result means the category is not covered.
func (c *Catalog) Merchants(country, category string) []string {
	if table, ok := c.Countries[country]; ok {
		if merchants := table[category]; len(merchants) > 0 {
			return merchants
		}
	}
	return c.Generic[category]
}

// checkCountryCategories rejects country tables naming a category the
// generic table does not know, which would otherwise never be drawn.
func (c *Catalog) checkCountryCategories() error {
	known := make(map[string]bool, len(c.Generic))
	for _, name := range c.Categories() {
		known[name] = true
	}
	countries := make([]string, 0, len(c.Countries))
	for country := range c.Countries {
		countries = append(countries, country)
	}
	sort.Strings(countries)
	for _, country := range countries {
		for category := range c.Countries[country] {
			if !known[category] {
				return fmt.Errorf("merchant catalog: %s lists unknown category %q (known: %v)",
					country, category, c.Categories())
			}
		}
	}
	return nil
}

// Categories returns the generic category names, sorted.
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.Generic))
	for name := range c.Generic {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
