package model

import "time"

// AuditEntry is one structured record of a mutating action. Appending audit
// entries is best-effort and never blocks the primary operation.
type AuditEntry struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Action      string    `gorm:"index;size:64;not null" json:"action"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Severity    string    `gorm:"size:16;not null" json:"severity"`
	ActorID     *int64    `gorm:"index" json:"actor_id,omitempty"`
	CreatedAt   time.Time `gorm:"index;not null" json:"created_at"`
}
