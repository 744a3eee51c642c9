package models

import (
	"etix/src/types"
	"time"
)

// PendingBooking is the time-boxed intent to purchase tied to a gateway
// order. No seats are decremented while one is pending; the expiry sweep
// therefore never has to compensate inventory.
type PendingBooking struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	OrderID   string              `gorm:"uniqueIndex" json:"order_id,omitempty"`
	EventID   uint                `gorm:"index" json:"event_id,omitempty"`
	UserID    uint                `gorm:"index" json:"user_id,omitempty"`
	Quantity  uint                `json:"quantity,omitempty"`
	Amount    int64               `json:"amount,omitempty"`
	Status    types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	ExpiresAt time.Time           `json:"expires_at,omitempty"`

	Event Event `json:"event,omitempty"`
	User  User  `json:"-"`

	types.Timestamps
}
