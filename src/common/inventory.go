package common

import (
	"etix/src/models"

	"gorm.io/gorm"
)

// TryReserveSeats conditionally decrements available_seats by qty in a
// single statement. Returns false, without error, when the event lacks
// capacity or is inactive; it never drives the counter negative.
func TryReserveSeats(tx *gorm.DB, eventId uint, qty uint) (bool, error) {
	res := tx.
		Model(&models.Event{}).
		Where("id = ? AND is_active = ? AND available_seats >= ?", eventId, true, qty).
		UpdateColumn("available_seats", gorm.Expr("available_seats - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseSeats returns qty seats to the pool, clamped at total_seats.
func ReleaseSeats(tx *gorm.DB, eventId uint, qty uint) error {
	return tx.
		Model(&models.Event{}).
		Where("id = ?", eventId).
		UpdateColumn("available_seats", gorm.Expr("LEAST(available_seats + ?, total_seats)", qty)).
		Error
}
