package common

import (
	"errors"
	"etix/src/db"
	"etix/src/models"
	"etix/src/types"
	"etix/src/utils"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errBookingClaimed = errors.New("booking claimed by a concurrent caller")

// IssueTickets converts a pending booking into confirmed tickets as one
// atomic transaction: claim the booking pending->paid, decrement
// inventory, insert the ticket rows. Any failure rolls all three back.
// QR identifiers and signatures are minted concurrently beforehand; they
// have no side effects beyond CPU-bound encoding.
func IssueTickets(orderId string, paymentId string) ([]models.Ticket, error) {
	gdb := db.GetDb()
	var booking models.PendingBooking
	if err := gdb.
		Where(&models.PendingBooking{OrderID: orderId}).
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderId, ErrNotFound)
		}
		return nil, err
	}
	if booking.Status == types.BOOKING_EXPIRED {
		return nil, fmt.Errorf("order %s expired: %w", orderId, ErrBookingClosed)
	}

	tickets := mintTickets(&booking, paymentId)

	err := gdb.Transaction(func(tx *gorm.DB) error {
		claim := tx.
			Model(&models.PendingBooking{}).
			Where("order_id = ? AND status = ?", orderId, types.BOOKING_PENDING).
			Update("status", types.BOOKING_PAID)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return errBookingClaimed
		}
		ok, err := TryReserveSeats(tx, booking.EventID, booking.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSeatsUnavailable
		}
		if err := tx.Create(&tickets).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errBookingClaimed) {
			// Webhook and client verify raced; converge on the winner's set.
			existing, ferr := FindIssuedTickets(paymentId)
			if ferr != nil {
				return nil, ferr
			}
			if len(existing) > 0 {
				return existing, nil
			}
			return nil, fmt.Errorf("order %s: %w", orderId, ErrBookingClosed)
		}
		if errors.Is(err, ErrSeatsUnavailable) {
			return nil, ErrSeatsUnavailable
		}
		log.Printf("Ticket issuance failed for order %s: %s\n", orderId, err.Error())
		return nil, err
	}
	log.Printf("Issued %d tickets for order %s payment %s\n", len(tickets), orderId, paymentId)
	return tickets, nil
}

func mintTickets(booking *models.PendingBooking, paymentId string) []models.Ticket {
	qty := int(booking.Quantity)
	secret := []byte(os.Getenv("QR_SECRET"))
	issuedAt := time.Now()
	perSeat := booking.Amount / int64(qty)

	tickets := make([]models.Ticket, qty)
	var wg sync.WaitGroup
	for i := range tickets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ident := uuid.New()
			payload := types.QRPayload{
				V:        1,
				TicketID: ident.String(),
				EventID:  booking.EventID,
				UserID:   booking.UserID,
				IssuedAt: issuedAt.Unix(),
			}
			tickets[i] = models.Ticket{
				Identifier:  ident,
				EventID:     booking.EventID,
				UserID:      booking.UserID,
				PaymentID:   paymentId,
				Seq:         uint(i + 1),
				AmountPaid:  perSeat,
				Status:      types.TICKET_CONFIRMED,
				QRSignature: utils.SignQRPayload(secret, payload),
				QRIssuedAt:  payload.IssuedAt,
			}
		}(i)
	}
	wg.Wait()
	return tickets
}
