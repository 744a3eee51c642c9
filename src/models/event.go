package models

import (
	"etix/src/types"
	"time"
)

type Event struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Title       string    `json:"title,omitempty"`
	Slug        string    `gorm:"index" json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	DateTime    time.Time `json:"date_time,omitempty"`
	Price       int64     `json:"price"`
	TotalSeats  uint      `json:"total_seats,omitempty"`
	// AvailableSeats is written only through the inventory helpers in
	// src/common; invariant: 0 <= available_seats <= total_seats.
	AvailableSeats uint   `json:"available_seats"`
	OrganizerID    uint   `gorm:"index" json:"organizer,omitempty"`
	Image          string `json:"image,omitempty"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`

	Organizer User `gorm:"foreignKey:organizer_id" json:"-"`

	types.Timestamps
}
