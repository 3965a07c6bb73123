package models

import "time"

// SystemFlag records a flagged employment record for later audit.
type SystemFlag struct {
	ID        string    `db:"id" json:"id"`
	RecordID  string    `db:"record_id" json:"record_id"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
