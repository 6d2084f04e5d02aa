package cart

import (
	"errors"

	"github.com/tableserve/api/internal/menu"
)

var (
	ErrOutOfStock       = errors.New("item out of stock")
	ErrModifierRequired = errors.New("required modifier group has no selection")
	ErrModifierMin      = errors.New("too few modifier options selected")
	ErrModifierMax      = errors.New("too many modifier options selected")
)

// ValidateModifiers checks a guest's modifier selections against the menu
// item's groups and returns the sanitized list: only active options with a
// non-negative price delta survive, capped at the group's maxSelect.
// Selections that match no known option are dropped silently rather than
// failing the whole request.
func ValidateModifiers(item *menu.Item, selections []Modifier) ([]Modifier, error) {
	if item == nil || !item.IsInStock || !item.IsActive {
		return nil, ErrOutOfStock
	}

	byGroup := map[string][]string{}
	for _, sel := range selections {
		for _, group := range item.Modifiers {
			for _, opt := range group.Options {
				if opt.ID == sel.OptionID {
					byGroup[group.ID] = append(byGroup[group.ID], sel.OptionID)
				}
			}
		}
	}

	var sanitized []Modifier
	for _, group := range item.Modifiers {
		selected := byGroup[group.ID]
		if group.IsRequired && len(selected) == 0 {
			return nil, ErrModifierRequired
		}
		if len(selected) < group.MinSelect {
			return nil, ErrModifierMin
		}
		if len(selected) > group.MaxSelect {
			return nil, ErrModifierMax
		}
		for _, id := range selected {
			for _, opt := range group.Options {
				if opt.ID == id && opt.IsActive && opt.PriceDelta >= 0 {
					sanitized = append(sanitized, Modifier{OptionID: opt.ID, OptionName: opt.Name, PriceDelta: opt.PriceDelta})
				}
			}
		}
	}
	return sanitized, nil
}
