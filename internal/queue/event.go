// Package queue defines message payloads exchanged over the message broker.
package queue

// PassCreatedEvent is published when a monthly pass is successfully
// created for a holder who left an email address. The external email
// collaborator consumes it to send the confirmation; the payload
// carries everything it needs without querying the primary database.
type PassCreatedEvent struct {
	PassID    uint64 `json:"pass_id"`
	OwnerName string `json:"owner_name"`
	Email     string `json:"email"`
	Plate     string `json:"plate"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at"`
	CreatedAt string `json:"created_at"`
}

// PassExpiringEvent is published when an expiry warning is due for a
// pass ending within the warning window. Dispatch is recorded on the
// pass so the warning goes out once.
type PassExpiringEvent struct {
	PassID    uint64 `json:"pass_id"`
	OwnerName string `json:"owner_name"`
	Email     string `json:"email"`
	Plate     string `json:"plate"`
	EndsAt    string `json:"ends_at"`
}
