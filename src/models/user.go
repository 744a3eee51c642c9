package models

import "etix/src/types"

type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string `json:"-"`
	Role     string `gorm:"default:'user'" json:"role,omitempty"`

	Bookings []PendingBooking `gorm:"foreignKey:user_id" json:"bookings,omitempty"`
	Tickets  []Ticket         `gorm:"foreignKey:user_id" json:"tickets,omitempty"`

	types.Timestamps
}
