package model

// EntityState is the sync state of a single tracked entity type.
type EntityState string

const (
	// EntityPending means the import for this entity has not started.
	EntityPending EntityState = "pending"
	// EntitySyncing means the import is in progress.
	EntitySyncing EntityState = "syncing"
	// EntityComplete means the import finished.
	EntityComplete EntityState = "complete"
	// EntityError means the import failed for this entity.
	EntityError EntityState = "error"
)

// EntityStatus is the sync status of one tracked entity type.
type EntityStatus struct {
	Entity  string      `json:"entity"`
	State   EntityState `json:"state"`
	Error   string      `json:"error,omitempty"`
	Records int         `json:"records"`
}

// SyncStatus is the per-entity status payload of the remote sync process.
type SyncStatus struct {
	Entities []EntityStatus `json:"entities"`
}

// Entity returns the status for the named entity, if present.
func (s SyncStatus) Entity(name string) (EntityStatus, bool) {
	for _, e := range s.Entities {
		if e.Entity == name {
			return e, true
		}
	}
	return EntityStatus{}, false
}

// TotalRecords sums the record counts across all entities.
func (s SyncStatus) TotalRecords() int {
	total := 0
	for _, e := range s.Entities {
		total += e.Records
	}
	return total
}
