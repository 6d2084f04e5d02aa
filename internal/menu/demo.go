package menu

// DemoVenue is the venue seeded on a fresh install.
var DemoVenue = VenueInfo{
	ID:       "venue-demo",
	Name:     "Demo Venue",
	Slug:     "demo",
	Currency: "KGS",
	Timezone: "Asia/Bishkek",
}

// NewDemoCatalog returns a catalog pre-filled with the demo venue's menu.
func NewDemoCatalog() *Catalog {
	c := NewCatalog()
	c.Put(DemoVenue.Slug, &Menu{
		Venue: DemoVenue,
		Categories: []Category{
			{
				ID: "cat-mains", Name: "Mains", SortOrder: 0,
				Items: []Item{
					{
						ID: "item-plov", Name: "Plov", Description: "Rice, carrots, lamb",
						Price: 35000, IsActive: true, IsInStock: true, SortOrder: 0,
						Modifiers: []ModifierGroup{
							{
								ID: "mod-sauce", Name: "Sauce", MinSelect: 0, MaxSelect: 2, SortOrder: 0,
								Options: []Option{
									{ID: "opt-spicy", Name: "Spicy", PriceDelta: 0, IsActive: true, SortOrder: 0},
									{ID: "opt-garlic", Name: "Garlic", PriceDelta: 0, IsActive: true, SortOrder: 1},
								},
							},
						},
					},
					{
						ID: "item-lagman", Name: "Lagman", Description: "Beef, noodles, vegetables",
						Price: 42000, IsActive: true, IsInStock: true, SortOrder: 1,
						Modifiers: []ModifierGroup{
							{
								ID: "mod-spice", Name: "Spice level", MinSelect: 0, MaxSelect: 1, SortOrder: 0,
								Options: []Option{
									{ID: "opt-spice-low", Name: "Mild", PriceDelta: 0, IsActive: true, SortOrder: 0},
									{ID: "opt-spice-med", Name: "Medium", PriceDelta: 0, IsActive: true, SortOrder: 1},
									{ID: "opt-spice-hot", Name: "Hot", PriceDelta: 0, IsActive: true, SortOrder: 2},
								},
							},
						},
					},
					{
						ID: "item-manty", Name: "Manty", Description: "Lamb dumplings, 5 pcs",
						Price: 38000, IsActive: true, IsInStock: true, SortOrder: 2,
						Modifiers: []ModifierGroup{
							{
								ID: "mod-sourcream", Name: "Sour cream", MinSelect: 0, MaxSelect: 1, SortOrder: 0,
								Options: []Option{
									{ID: "opt-sourcream", Name: "Add sour cream", PriceDelta: 5000, IsActive: true, SortOrder: 0},
								},
							},
						},
					},
					{
						ID: "item-samsa", Name: "Samsa", Description: "Baked, with beef, 1 pc",
						Price: 12000, IsActive: true, IsInStock: true, SortOrder: 3,
					},
				},
			},
			{
				ID: "cat-drinks", Name: "Drinks", SortOrder: 1,
				Items: []Item{
					{ID: "item-tea", Name: "Black tea", Description: "500 ml", Price: 12000, IsActive: true, IsInStock: true, SortOrder: 0},
					{ID: "item-coffee", Name: "Americano", Description: "250 ml", Price: 15000, IsActive: true, IsInStock: true, SortOrder: 1},
					{ID: "item-lemonade", Name: "Lemonade", Description: "Homemade, 500 ml", Price: 16000, IsActive: true, IsInStock: true, SortOrder: 2},
				},
			},
			{
				ID: "cat-desserts", Name: "Desserts", SortOrder: 2,
				Items: []Item{
					{ID: "item-cheesecake", Name: "Cheesecake", Description: "Strawberry sauce", Price: 27000, IsActive: true, IsInStock: true, SortOrder: 0},
					{
						ID: "item-icecream", Name: "Ice cream", Description: "Scoops of your choice",
						Price: 15000, IsActive: true, IsInStock: true, SortOrder: 1,
						Modifiers: []ModifierGroup{
							{
								ID: "mod-icecream", Name: "Flavor", MinSelect: 0, MaxSelect: 2, SortOrder: 0,
								Options: []Option{
									{ID: "opt-ice-vanilla", Name: "Vanilla", PriceDelta: 0, IsActive: true, SortOrder: 0},
									{ID: "opt-ice-choco", Name: "Chocolate", PriceDelta: 0, IsActive: true, SortOrder: 1},
									{ID: "opt-ice-berry", Name: "Berries", PriceDelta: 0, IsActive: true, SortOrder: 2},
								},
							},
						},
					},
				},
			},
		},
	})
	return c
}
