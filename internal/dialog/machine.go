package dialog

import (
	"fmt"
	"sync/atomic"

	"burovik/internal/catalog"
	"burovik/internal/pricing"
)

// Machine applies dialog events to a conversation state and produces
// the screen to show next. It never talks to Telegram itself.
//
// Recoverable input problems (a depth outside the district's bands, a
// stale keyboard tap) are answered with a corrective Render and a nil
// error; an error return means a caller bug and leaves the state
// untouched.
type Machine struct {
	cat atomic.Pointer[catalog.Catalog]
}

// NewMachine creates a machine over the given catalog.
func NewMachine(cat *catalog.Catalog) *Machine {
	m := &Machine{}
	m.cat.Store(cat)
	return m
}

// SetCatalog swaps in a new catalog revision. In-flight dialogs keep
// their selections; prices and keyboards pick up the new data on the
// next event.
func (m *Machine) SetCatalog(cat *catalog.Catalog) {
	m.cat.Store(cat)
}

// Catalog returns the current catalog revision.
func (m *Machine) Catalog() *catalog.Catalog {
	return m.cat.Load()
}

// Apply runs one event against the state and returns the resulting
// screen. A nil Render with a nil error means nothing needs showing.
func (m *Machine) Apply(st *State, ev Event) (*Render, error) {
	if st == nil {
		return nil, fmt.Errorf("apply %s: nil state", ev.Kind)
	}
	cat := m.cat.Load()
	eng := pricing.NewEngine(cat)
	r := renderer{cat: cat, eng: eng}

	switch ev.Kind {
	case EventStart:
		st.Reset()
		return r.districts(), nil

	case EventNewCalculation:
		st.Reset()
		rr := r.districts()
		rr.Text = textRestart
		return rr, nil

	case EventNoop:
		return nil, nil

	case EventSelectDistrict:
		// A fresh state can legitimately see a district tap when the
		// previous dialog was evicted under an old keyboard.
		if st.Stage != StageDistrict && st.Stage != StageStart {
			return m.reprompt(st, r), nil
		}
		if cat.DistrictByName(ev.Name) == nil {
			return nil, fmt.Errorf("select district: unknown district %q", ev.Name)
		}
		st.District = ev.Name
		st.Stage = StageDepth
		return r.depths(st), nil

	case EventSelectDepth:
		if st.Stage != StageDepth {
			return m.reprompt(st, r), nil
		}
		if !cat.DepthValid(st.District, ev.Depth) {
			rr := r.depths(st)
			rr.Text = textDepthOutOfRange + "\n\n" + rr.Text
			return rr, nil
		}
		st.Depth = ev.Depth
		st.Stage = StageEquipment
		return r.equipmentSets(st), nil

	case EventSelectSet:
		if st.Stage != StageEquipment {
			return m.reprompt(st, r), nil
		}
		set := cat.SetByName(ev.Name)
		if set == nil {
			return nil, fmt.Errorf("select set: unknown set %q", ev.Name)
		}
		st.EquipmentSet = set.Name
		st.CustomEquipment = false
		st.SelectedEquipment = nil
		for _, comp := range set.Components {
			st.SelectedEquipment = append(st.SelectedEquipment, comp.Name)
		}
		st.Stage = StageServices
		return r.services(st), nil

	case EventCustomEquipment:
		if st.Stage != StageEquipment {
			return m.reprompt(st, r), nil
		}
		st.CustomEquipment = true
		st.EquipmentSet = ""
		st.SelectedEquipment = nil
		return r.components(st), nil

	case EventToggleEquipment:
		// Toggling is also honored after a set was picked: the set
		// becomes a plain component selection that the user edits.
		if st.Stage != StageEquipment && st.Stage != StageServices {
			return m.reprompt(st, r), nil
		}
		st.EquipmentSet = ""
		st.CustomEquipment = true
		st.SelectedEquipment = toggle(st.SelectedEquipment, ev.Name)
		return r.components(st), nil

	case EventEquipmentDone:
		if st.Stage != StageEquipment && st.Stage != StageServices {
			return m.reprompt(st, r), nil
		}
		st.Stage = StageServices
		return r.services(st), nil

	case EventToggleService:
		if st.Stage != StageServices {
			return m.reprompt(st, r), nil
		}
		st.SelectedServices = toggle(st.SelectedServices, ev.Name)
		return r.services(st), nil

	case EventServicesDone:
		if st.Stage != StageServices && st.Stage != StageFinal {
			return m.reprompt(st, r), nil
		}
		st.Stage = StageFinal
		return r.final(st), nil
	}

	return nil, fmt.Errorf("apply: unknown event kind %q", ev.Kind)
}

// reprompt re-renders the screen for the state's current stage without
// mutating anything. Stale and out-of-order taps land here.
func (m *Machine) reprompt(st *State, r renderer) *Render {
	switch st.Stage {
	case StageDepth:
		return r.depths(st)
	case StageEquipment:
		if st.CustomEquipment {
			return r.components(st)
		}
		return r.equipmentSets(st)
	case StageServices:
		return r.services(st)
	case StageFinal:
		return r.final(st)
	default:
		return r.districts()
	}
}
