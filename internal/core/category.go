package core

import (
	"errors"
	"fmt"
	"strings"
)

// Category decorates a transaction or target preset with a label, icon and
// color. Tables are static and keyed by id within their kind.
type Category struct {
	ID    int
	Label string
	Icon  string
	Color string
	Other bool // fallback entry; accepts free-text detail
}

// TargetPreset is a category offered when creating a savings target.
type TargetPreset = Category

var incomeCategories = []Category{
	{ID: 1, Label: "Gaji", Icon: "wallet-outline", Color: "#4CAF50"},
	{ID: 2, Label: "Bonus", Icon: "gift-outline", Color: "#2196F3"},
	{ID: 3, Label: "Investasi", Icon: "trending-up-outline", Color: "#9C27B0"},
	{ID: 4, Label: "Lainnya", Icon: "ellipsis-horizontal-outline", Color: "#607D8B", Other: true},
}

var expenseCategories = []Category{
	{ID: 1, Label: "Makanan", Icon: "fast-food-outline", Color: "#FF6B6B"},
	{ID: 2, Label: "Transport", Icon: "car-outline", Color: "#4ECDC4"},
	{ID: 3, Label: "Belanja", Icon: "cart-outline", Color: "#45B7D1"},
	{ID: 4, Label: "Tagihan", Icon: "receipt-outline", Color: "#96CEB4"},
	{ID: 5, Label: "Lainnya", Icon: "ellipsis-horizontal-outline", Color: "#6C5CE7", Other: true},
}

var targetPresets = []TargetPreset{
	{ID: 1, Label: "Rumah", Icon: "home-outline", Color: "#6C63FF"},
	{ID: 2, Label: "Kendaraan", Icon: "car-outline", Color: "#FF9800"},
	{ID: 3, Label: "Pendidikan", Icon: "school-outline", Color: "#2196F3"},
	{ID: 4, Label: "Liburan", Icon: "airplane-outline", Color: "#4CAF50"},
	{ID: 5, Label: "Gadget", Icon: "phone-portrait-outline", Color: "#9C27B0"},
	{ID: 6, Label: "Lainnya", Icon: "ellipsis-horizontal-outline", Color: "#757575", Other: true},
}

// Categories returns the table for a transaction kind.
func Categories(k Kind) []Category {
	switch k {
	case Credit:
		return append([]Category(nil), incomeCategories...)
	case Debit:
		return append([]Category(nil), expenseCategories...)
	default:
		return nil
	}
}

// TargetPresets returns the presets offered when creating a target.
func TargetPresets() []TargetPreset {
	return append([]TargetPreset(nil), targetPresets...)
}

// LookupCategory resolves id within the table for k. Unknown ids resolve to
// the table's "other" entry; ok is false in that case.
func LookupCategory(k Kind, id int) (c Category, ok bool) {
	return lookup(Categories(k), id)
}

// LookupExpenseLabel resolves an expense category by label, falling back to
// "other".
func LookupExpenseLabel(label string) Category {
	for _, c := range expenseCategories {
		if strings.EqualFold(c.Label, label) {
			return c
		}
	}
	c, _ := lookup(expenseCategories, -1)
	return c
}

// LookupTargetPreset resolves a target preset id, falling back to "other".
func LookupTargetPreset(id int) (TargetPreset, bool) {
	return lookup(targetPresets, id)
}

func lookup(table []Category, id int) (Category, bool) {
	var other Category
	for _, c := range table {
		if c.ID == id {
			return c, true
		}
		if c.Other {
			other = c
		}
	}
	return other, false
}

// ValidateCategories checks the static tables. It runs once at startup.
func ValidateCategories() error {
	var errs []error
	tables := map[string][]Category{
		"income":  incomeCategories,
		"expense": expenseCategories,
		"target":  targetPresets,
	}
	for name, table := range tables {
		if err := validateTable(table); err != nil {
			errs = append(errs, fmt.Errorf("%s categories: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func validateTable(table []Category) error {
	seen := make(map[int]bool, len(table))
	others := 0
	for _, c := range table {
		if seen[c.ID] {
			return fmt.Errorf("duplicate id %d", c.ID)
		}
		seen[c.ID] = true
		if strings.TrimSpace(c.Label) == "" {
			return fmt.Errorf("empty label for id %d", c.ID)
		}
		if c.Other {
			others++
		}
	}
	if others != 1 {
		return fmt.Errorf("want exactly one fallback entry, got %d", others)
	}
	return nil
}
