// Package dialog implements the per-user quote calculation dialog: the
// conversation state, the state store and the state machine that walks a
// user from district selection to the final calculation.
package dialog

import (
	"time"

	"burovik/internal/pricing"
)

// Stage is the current step of the guided dialog.
type Stage string

const (
	StageStart     Stage = "start"
	StageDistrict  Stage = "district_selection"
	StageDepth     Stage = "depth_selection"
	StageEquipment Stage = "equipment_selection"
	StageServices  Stage = "services_selection"
	StageFinal     Stage = "final_calculation"
)

// State is the per-user conversation record. It is mutated only by the
// Machine while the owning store entry is locked.
type State struct {
	UserID            int64     `json:"user_id"`
	Stage             Stage     `json:"stage"`
	District          string    `json:"district,omitempty"`
	Depth             int       `json:"depth,omitempty"`
	EquipmentSet      string    `json:"equipment_set,omitempty"`
	CustomEquipment   bool      `json:"custom_equipment,omitempty"`
	SelectedEquipment []string  `json:"selected_equipment,omitempty"`
	SelectedServices  []string  `json:"selected_services,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewState returns a fresh state at the start stage.
func NewState(userID int64) *State {
	return &State{
		UserID:    userID,
		Stage:     StageStart,
		UpdatedAt: time.Now(),
	}
}

// Reset clears all selections and moves the state to district selection.
func (s *State) Reset() {
	s.Stage = StageDistrict
	s.District = ""
	s.Depth = 0
	s.EquipmentSet = ""
	s.CustomEquipment = false
	s.SelectedEquipment = nil
	s.SelectedServices = nil
	s.UpdatedAt = time.Now()
}

// Selection returns a pricing snapshot of the state.
func (s *State) Selection() pricing.Selection {
	return pricing.Selection{
		District:     s.District,
		Depth:        s.Depth,
		EquipmentSet: s.EquipmentSet,
		Equipment:    s.SelectedEquipment,
		Services:     s.SelectedServices,
	}
}

// HasEquipment reports whether name is currently toggled on.
func (s *State) HasEquipment(name string) bool {
	return contains(s.SelectedEquipment, name)
}

// HasService reports whether name is currently toggled on.
func (s *State) HasService(name string) bool {
	return contains(s.SelectedServices, name)
}

// toggle adds name if absent and removes it if present, preserving the
// insertion order of the remaining items.
func toggle(items []string, name string) []string {
	for i, it := range items {
		if it == name {
			return append(items[:i:i], items[i+1:]...)
		}
	}
	return append(items, name)
}

func contains(items []string, name string) bool {
	for _, it := range items {
		if it == name {
			return true
		}
	}
	return false
}

// IsExpired checks if the state has been idle longer than timeout.
func (s *State) IsExpired(timeout time.Duration) bool {
	return time.Since(s.UpdatedAt) > timeout
}
