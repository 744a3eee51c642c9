package common

import (
	"context"
	"errors"
	"etix/src/config"
	"etix/src/db"
	"etix/src/lib"
	"etix/src/models"
	"etix/src/types"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCheckout validates the event, creates a gateway order and
// persists a pending booking tied to it. The capacity check here is
// advisory only; seats are decremented at issuance time, so an abandoned
// checkout needs no compensation.
func CreateCheckout(ctx context.Context, userId uint, params *types.BookTicketRequestBody) (*types.CheckoutResponse, error) {
	gdb := db.GetDb()
	var event models.Event
	if err := gdb.
		Where(&models.Event{ID: params.EventID, IsActive: true}).
		First(&event).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event [%d]: %w", params.EventID, ErrNotFound)
		}
		return nil, err
	}
	if time.Now().After(event.DateTime) {
		return nil, fmt.Errorf("event [%d] is no longer open for booking: %w", event.ID, ErrNotFound)
	}
	if event.AvailableSeats < params.Quantity {
		return nil, ErrSeatsUnavailable
	}

	amount := event.Price * int64(params.Quantity)
	receipt := fmt.Sprintf("receipt_%s", uuid.New().String()[:8])
	notes := map[string]interface{}{
		"eventId":  fmt.Sprintf("%d", event.ID),
		"userId":   fmt.Sprintf("%d", userId),
		"quantity": fmt.Sprintf("%d", params.Quantity),
	}

	order, err := createOrderWithTimeout(ctx, amount, receipt, notes)
	if err != nil {
		log.Printf("Error creating gateway order for Event [%d]: %s\n", event.ID, err.Error())
		return nil, err
	}
	orderId, ok := order["id"].(string)
	if !ok || orderId == "" {
		return nil, errors.New("gateway returned an order without an id")
	}

	booking := models.PendingBooking{
		OrderID:   orderId,
		EventID:   event.ID,
		UserID:    userId,
		Quantity:  params.Quantity,
		Amount:    amount,
		Status:    types.BOOKING_PENDING,
		ExpiresAt: time.Now().Add(config.BOOKING_EXPIRY),
	}
	if err := gdb.Create(&booking).Error; err != nil {
		log.Printf("Error persisting PendingBooking for order %s: %s\n", orderId, err.Error())
		return nil, err
	}

	return &types.CheckoutResponse{
		OrderID:  orderId,
		Amount:   amount,
		Currency: "INR",
		Key:      os.Getenv("RAZORPAY_KEY_ID"),
	}, nil
}

// createOrderWithTimeout bounds the only external-network suspension
// point in the checkout path. On timeout nothing has been persisted.
func createOrderWithTimeout(ctx context.Context, amount int64, receipt string, notes map[string]interface{}) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, config.GATEWAY_TIMEOUT)
	defer cancel()

	type orderResult struct {
		order map[string]interface{}
		err   error
	}
	ch := make(chan orderResult, 1)
	go func() {
		gw := lib.GetPaymentGateway()
		order, err := gw.CreateOrder(amount, "INR", receipt, notes)
		ch <- orderResult{order, err}
	}()
	select {
	case r := <-ch:
		return r.order, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CancelCheckout handles the closed-popup path: the user's own pending
// booking is expired immediately instead of waiting for the sweep. Paid
// bookings are refused; expiring twice is a no-op.
func CancelCheckout(userId uint, orderId string) error {
	gdb := db.GetDb()
	res := gdb.
		Model(&models.PendingBooking{}).
		Where("order_id = ? AND user_id = ? AND status = ?", orderId, userId, types.BOOKING_PENDING).
		Update("status", types.BOOKING_EXPIRED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var booking models.PendingBooking
	if err := gdb.
		Where(&models.PendingBooking{OrderID: orderId}).
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %s: %w", orderId, ErrNotFound)
		}
		return err
	}
	if booking.UserID != userId {
		return ErrNotAllowed
	}
	if booking.Status == types.BOOKING_PAID {
		return fmt.Errorf("order %s already paid: %w", orderId, ErrBookingClosed)
	}
	return nil
}

// ExpirePendingBookings is the scheduler-driven sweep replacing the TTL
// index of the document store: pending bookings past their window become
// expired. No seat compensation is needed because none were held.
func ExpirePendingBookings() {
	gdb := db.GetDb()
	res := gdb.
		Model(&models.PendingBooking{}).
		Where("status = ? AND expires_at < ?", types.BOOKING_PENDING, time.Now()).
		Update("status", types.BOOKING_EXPIRED)
	if res.Error != nil {
		log.Printf("Error expiring pending bookings: %s\n", res.Error.Error())
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Expired %d stale pending bookings\n", res.RowsAffected)
	}
}
