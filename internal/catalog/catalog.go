// Package catalog holds the static price reference data: districts with
// their drilling depth bands, equipment sets and standalone services.
package catalog

// DepthBand is a closed interval of valid drilling depths in meters.
type DepthBand struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Contains reports whether depth lies within the band (inclusive).
func (b DepthBand) Contains(depth int) bool {
	return depth >= b.Min && depth <= b.Max
}

// HorizonInfo describes known aquifer horizons for a district.
type HorizonInfo struct {
	PI1 *DepthBand `yaml:"pi1,omitempty"`
	PI2 *DepthBand `yaml:"pi2,omitempty"`
}

// District is a geographic zone with its allowed depth bands.
type District struct {
	Name     string       `yaml:"name"`
	Bands    []DepthBand  `yaml:"bands"`
	Horizons *HorizonInfo `yaml:"horizons,omitempty"`
}

// Component is a single equipment item with its unit price.
type Component struct {
	Name  string `yaml:"name"`
	Price int    `yaml:"price"`
}

// EquipmentSet is a named bundle of components sold as a group.
type EquipmentSet struct {
	Name       string      `yaml:"name"`
	Components []Component `yaml:"components"`
}

// Total returns the summed price of all components in the set.
func (s EquipmentSet) Total() int {
	sum := 0
	for _, c := range s.Components {
		sum += c.Price
	}
	return sum
}

// Service is an additional service with a flat price.
type Service struct {
	Name  string `yaml:"name"`
	Price int    `yaml:"price"`
}

// Catalog is the read-only lookup surface for pricing reference data.
// It is immutable after load; unknown keys resolve to defaults, never to
// errors.
type Catalog struct {
	BaseRate    int            `yaml:"base_rate"`
	DefaultBand DepthBand      `yaml:"default_band"`
	Districts   []District     `yaml:"districts"`
	Sets        []EquipmentSet `yaml:"equipment_sets"`
	ServiceList []Service      `yaml:"services"`
}

// DistrictByName returns the district or nil if unknown.
func (c *Catalog) DistrictByName(name string) *District {
	for i := range c.Districts {
		if c.Districts[i].Name == name {
			return &c.Districts[i]
		}
	}
	return nil
}

// DistrictAt returns the district at index i in declaration order.
func (c *Catalog) DistrictAt(i int) (District, bool) {
	if i < 0 || i >= len(c.Districts) {
		return District{}, false
	}
	return c.Districts[i], true
}

// DepthBandsFor returns the depth bands for a district. Unknown districts
// and districts without declared bands fall back to the default band.
func (c *Catalog) DepthBandsFor(name string) []DepthBand {
	d := c.DistrictByName(name)
	if d == nil || len(d.Bands) == 0 {
		return []DepthBand{c.DefaultBand}
	}
	return d.Bands
}

// DepthValid reports whether depth lies in some band of the district.
func (c *Catalog) DepthValid(district string, depth int) bool {
	for _, b := range c.DepthBandsFor(district) {
		if b.Contains(depth) {
			return true
		}
	}
	return false
}

// SetByName returns the equipment set or nil if unknown.
func (c *Catalog) SetByName(name string) *EquipmentSet {
	for i := range c.Sets {
		if c.Sets[i].Name == name {
			return &c.Sets[i]
		}
	}
	return nil
}

// SetAt returns the equipment set at index i in declaration order.
func (c *Catalog) SetAt(i int) (EquipmentSet, bool) {
	if i < 0 || i >= len(c.Sets) {
		return EquipmentSet{}, false
	}
	return c.Sets[i], true
}

// AllComponents flattens all equipment sets into a single ordered list.
// A component appearing in several sets keeps its first position, and the
// later set's price wins. The last-write-wins merge must stay stable: the
// custom picker and the pricing engine both rely on it.
func (c *Catalog) AllComponents() []Component {
	var out []Component
	index := make(map[string]int)
	for _, set := range c.Sets {
		for _, comp := range set.Components {
			if i, ok := index[comp.Name]; ok {
				out[i].Price = comp.Price
				continue
			}
			index[comp.Name] = len(out)
			out = append(out, comp)
		}
	}
	return out
}

// ComponentAt returns the i-th entry of the flattened component list.
func (c *Catalog) ComponentAt(i int) (Component, bool) {
	all := c.AllComponents()
	if i < 0 || i >= len(all) {
		return Component{}, false
	}
	return all[i], true
}

// ComponentPrice returns the flattened price for a component name.
// Unknown names price at zero.
func (c *Catalog) ComponentPrice(name string) int {
	for _, comp := range c.AllComponents() {
		if comp.Name == name {
			return comp.Price
		}
	}
	return 0
}

// ServiceAt returns the service at index i in declaration order.
func (c *Catalog) ServiceAt(i int) (Service, bool) {
	if i < 0 || i >= len(c.ServiceList) {
		return Service{}, false
	}
	return c.ServiceList[i], true
}

// ServicePrice returns the price for a service name, zero if unknown.
func (c *Catalog) ServicePrice(name string) int {
	for _, s := range c.ServiceList {
		if s.Name == name {
			return s.Price
		}
	}
	return 0
}

// Default returns the built-in catalog used when no catalog file is
// configured. Prices are in rubles.
func Default() *Catalog {
	return &Catalog{
		BaseRate:    2900,
		DefaultBand: DepthBand{Min: 30, Max: 70},
		Districts: []District{
			{
				Name:  "Александровский район",
				Bands: []DepthBand{{Min: 40, Max: 100}},
				Horizons: &HorizonInfo{
					PI1: &DepthBand{Min: 15, Max: 30},
					PI2: &DepthBand{Min: 40, Max: 100},
				},
			},
			{
				Name:  "Балашихинский район",
				Bands: []DepthBand{{Min: 15, Max: 40}},
			},
			{
				Name:  "Бронницы",
				Bands: []DepthBand{{Min: 45, Max: 65}},
			},
			{
				Name:  "Видное",
				Bands: []DepthBand{{Min: 20, Max: 30}},
				Horizons: &HorizonInfo{
					PI1: &DepthBand{Min: 20, Max: 30},
				},
			},
			{
				Name:  "Волоколамский район",
				Bands: []DepthBand{{Min: 30, Max: 60}},
			},
		},
		Sets: []EquipmentSet{
			{
				Name: "Адаптер №1",
				Components: []Component{
					{Name: "Скважинный насос Belamos tf 80-110", Price: 25000},
					{Name: "Оголовок с адаптером", Price: 8000},
					{Name: "Трос и фитинги", Price: 4000},
				},
			},
			{
				Name: "Адаптер №2",
				Components: []Component{
					{Name: "Насос Grundfos SQ 3-65", Price: 45000},
					{Name: "Оголовок с адаптером", Price: 8000},
					{Name: "Гидроаккумулятор 50 л", Price: 6000},
				},
			},
			{
				Name: "Кессон",
				Components: []Component{
					{Name: "Кессон пластиковый", Price: 35000},
					{Name: "Гидроаккумулятор 50 л", Price: 6000},
					{Name: "Автоматика управления", Price: 7000},
				},
			},
		},
		ServiceList: []Service{
			{Name: "Монтаж кессона", Price: 19000},
			{Name: "Монтаж систем автоматики", Price: 2000},
			{Name: "Транспортные расходы", Price: 3000},
			{Name: "Анализ воды", Price: 5000},
		},
	}
}
