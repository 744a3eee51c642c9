package models

import (
	"etix/src/types"
	"time"

	"github.com/google/uuid"
)

type Ticket struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Identifier uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"resource_id"`
	EventID    uint      `gorm:"index" json:"event_id,omitempty"`
	UserID     uint      `gorm:"index" json:"user_id,omitempty"`
	// PaymentID is the idempotency key: one ticket set per payment,
	// enforced by the (payment_id, seq) unique index.
	PaymentID   string             `gorm:"uniqueIndex:uniq_ticket_payment_seq" json:"payment_id,omitempty"`
	Seq         uint               `gorm:"uniqueIndex:uniq_ticket_payment_seq" json:"seq,omitempty"`
	AmountPaid  int64              `json:"amount_paid"`
	Status      types.TicketStatus `gorm:"default:'confirmed'" json:"status,omitempty"`
	QRSignature string             `json:"-"`
	// QRIssuedAt pins the timestamp baked into the signed code so the
	// code can be re-rendered later byte for byte.
	QRIssuedAt int64 `json:"-"`

	IsCheckedIn   bool       `gorm:"default:false" json:"is_checked_in"`
	CheckInTime   *time.Time `json:"check_in_time,omitempty"`
	CheckedInByID *uint      `json:"checked_in_by,omitempty"`

	Event Event `json:"event,omitempty"`
	User  User  `json:"user,omitempty"`

	types.Timestamps
}
