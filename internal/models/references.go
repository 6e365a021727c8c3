package models

// ReferencesModel carries the entities a response entry points at by name.
type ReferencesModel struct {
	Buses []BusReference `json:"buses"`
	Stops []Stop         `json:"stops"`
}

// NewEmptyReferences creates references with initialized empty slices so they encode as [].
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Buses: []BusReference{},
		Stops: []Stop{},
	}
}
