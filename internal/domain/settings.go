package domain

import "time"

// DefaultGuides is the roster offered by the entry form.
// Guide is free text on the record, so names outside this list are accepted.
var DefaultGuides = []string{"Alvaro", "Benjamin", "Momoko", "Nana", "Honoka", "Kaho"}

// Settings holds the small scalar values persisted next to the records.
type Settings struct {
	// SyncURL is the user-supplied sync endpoint. Empty disables sync.
	SyncURL string `json:"sync_url"`

	// AutoSync pushes after every successful add when true.
	AutoSync bool `json:"auto_sync"`

	// LastSyncAt is nil until the first successful sync.
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`

	// AdminAuthenticated records that the admin gate was passed on this device.
	AdminAuthenticated bool `json:"admin_authenticated"`
}
