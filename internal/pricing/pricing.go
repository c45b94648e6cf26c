// Package pricing computes drilling quote costs from a selection
// snapshot. All computations are pure functions of the selection and the
// catalog; they can be called at any dialog stage for partial totals.
package pricing

import "burovik/internal/catalog"

// Selection is the pricing-relevant slice of a conversation state.
type Selection struct {
	District     string
	Depth        int
	EquipmentSet string
	Equipment    []string
	Services     []string
}

// Engine prices selections against a catalog.
type Engine struct {
	cat *catalog.Catalog
}

// NewEngine creates a pricing engine over the given catalog.
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// DrillingCost is depth in meters times the catalog base rate.
func (e *Engine) DrillingCost(depth int) int {
	return depth * e.cat.BaseRate
}

// EquipmentCost sums component prices. When a known equipment set is
// selected its own component prices apply; otherwise each toggled
// component is priced via the flattened catalog. Unknown names price at
// zero.
func (e *Engine) EquipmentCost(sel Selection) int {
	if sel.EquipmentSet != "" {
		if set := e.cat.SetByName(sel.EquipmentSet); set != nil {
			return set.Total()
		}
	}
	sum := 0
	for _, name := range sel.Equipment {
		sum += e.cat.ComponentPrice(name)
	}
	return sum
}

// ServicesCost sums service prices; unknown names price at zero.
func (e *Engine) ServicesCost(sel Selection) int {
	sum := 0
	for _, name := range sel.Services {
		sum += e.cat.ServicePrice(name)
	}
	return sum
}

// TotalCost is drilling plus equipment plus services.
func (e *Engine) TotalCost(sel Selection) int {
	return e.DrillingCost(sel.Depth) + e.EquipmentCost(sel) + e.ServicesCost(sel)
}
