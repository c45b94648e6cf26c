package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"burovik/internal/catalog"
)

// EventKind identifies the dialog input being applied.
type EventKind string

const (
	EventStart           EventKind = "start"
	EventSelectDistrict  EventKind = "select_district"
	EventSelectDepth     EventKind = "select_depth"
	EventSelectSet       EventKind = "select_set"
	EventCustomEquipment EventKind = "custom_equipment"
	EventToggleEquipment EventKind = "toggle_equipment"
	EventEquipmentDone   EventKind = "equipment_done"
	EventToggleService   EventKind = "toggle_service"
	EventServicesDone    EventKind = "services_done"
	EventNewCalculation  EventKind = "new_calculation"
	EventNoop            EventKind = "noop"
)

// Event is a parsed user input. Name carries the catalog item the token
// resolved to; Depth carries the chosen depth in meters.
type Event struct {
	Kind  EventKind
	Name  string
	Depth int
}

// Callback token prefixes. Items are addressed by catalog index rather
// than by name: names are free-form Russian text that would overflow the
// 64-byte callback data limit and could collide with the separator.
const (
	tokDistrict = "district"
	tokDepth    = "depth"
	tokSet      = "set"
	tokEquip    = "equip"
	tokService  = "service"

	tokCustom       = "equip_custom"
	tokEquipDone    = "equip_done"
	tokServicesDone = "services_done"
	tokNewCalc      = "new_calc"
	tokNoop         = "noop"
)

// ErrUnknownCallback marks callback data this bot did not emit, e.g.
// tokens from an older catalog revision.
var ErrUnknownCallback = fmt.Errorf("unknown callback data")

// CallbackDistrict encodes the token for the i-th district.
func CallbackDistrict(i int) string { return fmt.Sprintf("%s:%d", tokDistrict, i) }

// CallbackDepth encodes the token for a concrete depth in meters.
func CallbackDepth(meters int) string { return fmt.Sprintf("%s:%d", tokDepth, meters) }

// CallbackSet encodes the token for the i-th equipment set.
func CallbackSet(i int) string { return fmt.Sprintf("%s:%d", tokSet, i) }

// CallbackEquip encodes the token for the i-th flattened component.
func CallbackEquip(i int) string { return fmt.Sprintf("%s:%d", tokEquip, i) }

// CallbackService encodes the token for the i-th service.
func CallbackService(i int) string { return fmt.Sprintf("%s:%d", tokService, i) }

// CallbackCustom is the "build a custom set" token.
func CallbackCustom() string { return tokCustom }

// CallbackEquipDone confirms the custom equipment selection.
func CallbackEquipDone() string { return tokEquipDone }

// CallbackServicesDone confirms the services selection.
func CallbackServicesDone() string { return tokServicesDone }

// CallbackNewCalc restarts the dialog from district selection.
func CallbackNewCalc() string { return tokNewCalc }

// ParseCallback decodes callback data into an event, resolving indexed
// tokens against the catalog. Tokens that are malformed or point outside
// the current catalog return ErrUnknownCallback.
func ParseCallback(data string, cat *catalog.Catalog) (Event, error) {
	switch data {
	case tokCustom:
		return Event{Kind: EventCustomEquipment}, nil
	case tokEquipDone:
		return Event{Kind: EventEquipmentDone}, nil
	case tokServicesDone:
		return Event{Kind: EventServicesDone}, nil
	case tokNewCalc:
		return Event{Kind: EventNewCalculation}, nil
	case tokNoop:
		return Event{Kind: EventNoop}, nil
	}

	prefix, arg, ok := strings.Cut(data, ":")
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}

	switch prefix {
	case tokDistrict:
		d, ok := cat.DistrictAt(n)
		if !ok {
			return Event{}, fmt.Errorf("%w: district index %d", ErrUnknownCallback, n)
		}
		return Event{Kind: EventSelectDistrict, Name: d.Name}, nil
	case tokDepth:
		if n <= 0 {
			return Event{}, fmt.Errorf("%w: depth %d", ErrUnknownCallback, n)
		}
		return Event{Kind: EventSelectDepth, Depth: n}, nil
	case tokSet:
		s, ok := cat.SetAt(n)
		if !ok {
			return Event{}, fmt.Errorf("%w: set index %d", ErrUnknownCallback, n)
		}
		return Event{Kind: EventSelectSet, Name: s.Name}, nil
	case tokEquip:
		comp, ok := cat.ComponentAt(n)
		if !ok {
			return Event{}, fmt.Errorf("%w: component index %d", ErrUnknownCallback, n)
		}
		return Event{Kind: EventToggleEquipment, Name: comp.Name}, nil
	case tokService:
		svc, ok := cat.ServiceAt(n)
		if !ok {
			return Event{}, fmt.Errorf("%w: service index %d", ErrUnknownCallback, n)
		}
		return Event{Kind: EventToggleService, Name: svc.Name}, nil
	}
	return Event{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
}
