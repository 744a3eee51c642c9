package common

import (
	"errors"
	"etix/src/db"
	"etix/src/models"
	"etix/src/types"
	"etix/src/utils"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanTicket is the QR entry path: strict decode, signature check,
// ownership/authorization checks, then the atomic check-and-set.
func ScanTicket(qrData string, scannerId uint, role string) (*types.CheckInResult, error) {
	env, err := utils.DecodeTicketQR(qrData)
	if err != nil {
		return nil, ErrForgedTicket
	}
	secret := []byte(os.Getenv("QR_SECRET"))
	if !utils.VerifyQRSignature(secret, env.Payload, env.Signature) {
		return nil, ErrForgedTicket
	}
	ident, err := uuid.Parse(env.Payload.TicketID)
	if err != nil {
		return nil, ErrForgedTicket
	}

	gdb := db.GetDb()
	var ticket models.Ticket
	if err := gdb.
		Where(&models.Ticket{Identifier: ident}).
		First(&ticket).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ticket %s: %w", ident, ErrNotFound)
		}
		return nil, err
	}
	// A signature lifted from another ticket is internally consistent;
	// the payload still has to match the stored row.
	if ticket.EventID != env.Payload.EventID || ticket.UserID != env.Payload.UserID {
		return nil, ErrForgedTicket
	}
	return admitTicket(gdb, &ticket, scannerId, role)
}

// ManualCheckIn performs the same transition without QR verification,
// for when the scanning hardware fails at the gate.
func ManualCheckIn(ticketId uint, scannerId uint, role string) (*types.CheckInResult, error) {
	gdb := db.GetDb()
	var ticket models.Ticket
	if err := gdb.
		Where(&models.Ticket{ID: ticketId}).
		First(&ticket).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ticket [%d]: %w", ticketId, ErrNotFound)
		}
		return nil, err
	}
	return admitTicket(gdb, &ticket, scannerId, role)
}

func admitTicket(gdb *gorm.DB, ticket *models.Ticket, scannerId uint, role string) (*types.CheckInResult, error) {
	var event models.Event
	if err := gdb.
		Where(&models.Event{ID: ticket.EventID}).
		First(&event).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrphanedTicket
		}
		return nil, err
	}
	if role != string(types.ROLE_ADMIN) && event.OrganizerID != scannerId {
		return nil, fmt.Errorf("scanner [%d] is not the organizer of event [%d]: %w", scannerId, event.ID, ErrNotAllowed)
	}

	now := time.Now()
	res := gdb.
		Model(&models.Ticket{}).
		Where("id = ? AND status = ? AND is_checked_in = ?", ticket.ID, types.TICKET_CONFIRMED, false).
		Updates(map[string]interface{}{
			"status":           types.TICKET_USED,
			"is_checked_in":    true,
			"check_in_time":    now,
			"checked_in_by_id": scannerId,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the check-and-set; reread for the precise refusal.
		var current models.Ticket
		if err := gdb.
			Where(&models.Ticket{ID: ticket.ID}).
			First(&current).
			Error; err != nil {
			return nil, err
		}
		if current.IsCheckedIn {
			e := &AlreadyCheckedInError{At: now}
			if current.CheckInTime != nil {
				e.At = *current.CheckInTime
			}
			if current.CheckedInByID != nil {
				e.By = *current.CheckedInByID
			}
			return nil, e
		}
		if current.Status == types.TICKET_CANCELLED {
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("ticket [%d] is %s: %w", ticket.ID, current.Status, ErrNotAllowed)
	}

	var attendee models.User
	if err := gdb.
		Where(&models.User{ID: ticket.UserID}).
		First(&attendee).
		Error; err != nil {
		return nil, err
	}
	return &types.CheckInResult{
		TicketID:  ticket.ID,
		Attendee:  attendee.Name,
		Email:     attendee.Email,
		Event:     event.Title,
		Timestamp: now,
	}, nil
}

// CancelTicket releases one seat back to the event. Only the owning
// user may cancel, and only from the confirmed state.
func CancelTicket(ticketId uint, userId uint) error {
	gdb := db.GetDb()
	return gdb.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.
			Where(&models.Ticket{ID: ticketId}).
			First(&ticket).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("ticket [%d]: %w", ticketId, ErrNotFound)
			}
			return err
		}
		if ticket.UserID != userId {
			return fmt.Errorf("ticket [%d] belongs to another user: %w", ticketId, ErrNotAllowed)
		}
		res := tx.
			Model(&models.Ticket{}).
			Where("id = ? AND user_id = ? AND status = ?", ticketId, userId, types.TICKET_CONFIRMED).
			Update("status", types.TICKET_CANCELLED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if ticket.Status == types.TICKET_CANCELLED {
				return ErrAlreadyCancelled
			}
			if ticket.Status == types.TICKET_USED {
				return fmt.Errorf("ticket [%d] already used: %w", ticketId, ErrNotAllowed)
			}
			return fmt.Errorf("ticket [%d]: %w", ticketId, ErrNotFound)
		}
		return ReleaseSeats(tx, ticket.EventID, 1)
	})
}
