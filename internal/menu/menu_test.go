package menu

import "testing"

func TestFindItem(t *testing.T) {
	t.Parallel()

	c := NewDemoCatalog()
	it := c.FindItem(DemoVenue.Slug, "item-lagman")
	if it == nil {
		t.Fatal("item-lagman not found")
	}
	if it.Price != 42000 {
		t.Fatalf("price=%d, want 42000", it.Price)
	}
	if c.FindItem(DemoVenue.Slug, "item-nope") != nil {
		t.Fatal("unknown item found")
	}
	if c.FindItem("other-venue", "item-lagman") != nil {
		t.Fatal("item found in a venue with no menu")
	}
}

func TestVersionBump(t *testing.T) {
	t.Parallel()

	c := NewDemoCatalog()
	before := c.Version(DemoVenue.Slug)
	if before == "" {
		t.Fatal("empty initial version")
	}
	after := c.BumpVersion(DemoVenue.Slug)
	if after == before {
		t.Fatal("bump did not change the version")
	}
	if c.Version(DemoVenue.Slug) != after {
		t.Fatal("bumped version not stored")
	}
}

func TestDemoMenuModifierBounds(t *testing.T) {
	t.Parallel()

	c := NewDemoCatalog()
	it := c.FindItem(DemoVenue.Slug, "item-icecream")
	if it == nil {
		t.Fatal("item-icecream not found")
	}
	if len(it.Modifiers) != 1 || it.Modifiers[0].MaxSelect != 2 {
		t.Fatalf("unexpected modifier config: %+v", it.Modifiers)
	}
}
