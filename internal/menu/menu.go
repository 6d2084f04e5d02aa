// Package menu holds the per-venue menu catalog. Menus are process-scoped
// demo state (authoring lives outside this service); the catalog is the one
// explicit owner of that state instead of package-level maps.
package menu

import (
	"fmt"
	"sync"
	"time"
)

type Option struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceDelta int64  `json:"priceDelta"`
	IsActive   bool   `json:"isActive"`
	SortOrder  int    `json:"sortOrder"`
}

type ModifierGroup struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	IsRequired bool     `json:"isRequired"`
	MinSelect  int      `json:"minSelect"`
	MaxSelect  int      `json:"maxSelect"`
	SortOrder  int      `json:"sortOrder"`
	Options    []Option `json:"options"`
}

type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       int64           `json:"price"` // minor currency units
	IsActive    bool            `json:"isActive"`
	IsInStock   bool            `json:"isInStock"`
	SortOrder   int             `json:"sortOrder"`
	Modifiers   []ModifierGroup `json:"modifiers"`
}

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
	Items     []Item `json:"items"`
}

type VenueInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

type Menu struct {
	Venue      VenueInfo  `json:"venue"`
	Categories []Category `json:"categories"`
}

type Catalog struct {
	mu       sync.RWMutex
	menus    map[string]*Menu  // by venue slug
	versions map[string]string // by venue slug
}

func NewCatalog() *Catalog {
	return &Catalog{menus: map[string]*Menu{}, versions: map[string]string{}}
}

func (c *Catalog) Put(slug string, m *Menu) {
	c.mu.Lock()
	c.menus[slug] = m
	if _, ok := c.versions[slug]; !ok {
		c.versions[slug] = "v1"
	}
	c.mu.Unlock()
}

func (c *Catalog) Get(slug string) *Menu {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.menus[slug]
}

// FindItem looks an item up across every category of the venue's menu.
func (c *Catalog) FindItem(slug, itemID string) *Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := c.menus[slug]
	if m == nil {
		return nil
	}
	for ci := range m.Categories {
		for ii := range m.Categories[ci].Items {
			if m.Categories[ci].Items[ii].ID == itemID {
				return &m.Categories[ci].Items[ii]
			}
		}
	}
	return nil
}

func (c *Catalog) Version(slug string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.versions[slug]; ok {
		return v
	}
	return "v1"
}

// BumpVersion marks the venue's menu as changed so clients refetch.
func (c *Catalog) BumpVersion(slug string) string {
	next := fmt.Sprintf("v%d", time.Now().UnixMilli())
	c.mu.Lock()
	c.versions[slug] = next
	c.mu.Unlock()
	return next
}
