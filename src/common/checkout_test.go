package common

import (
	"context"
	"errors"
	"etix/src/db"
	"etix/src/lib"
	"etix/src/types"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// stubGateway is an in-memory PaymentGateway for exercising the
// checkout and verification flows without network access.
type stubGateway struct {
	orderId   string
	orders    map[string]string
	payments  map[string]string
	createErr error
}

func (s *stubGateway) CreateOrder(amount int64, currency string, receipt string, notes map[string]interface{}) (map[string]interface{}, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return map[string]interface{}{
		"id":       s.orderId,
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"status":   "created",
	}, nil
}

func (s *stubGateway) FetchOrder(orderId string) (map[string]interface{}, error) {
	status, ok := s.orders[orderId]
	if !ok {
		return nil, errors.New("order not found")
	}
	return map[string]interface{}{"id": orderId, "status": status}, nil
}

func (s *stubGateway) FetchPayment(paymentId string) (map[string]interface{}, error) {
	status, ok := s.payments[paymentId]
	if !ok {
		return nil, errors.New("payment not found")
	}
	return map[string]interface{}{"id": paymentId, "status": status}, nil
}

func futureEventRows(eventId uint, price int64, available uint) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "date_time", "price", "total_seats", "available_seats", "organizer_id", "is_active"}).
		AddRow(eventId, "Test Event", time.Now().Add(48*time.Hour), price, 100, available, 3, true)
}

func TestCreateCheckout(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	_, mock := db.GetMockDB()
	lib.NewPaymentGateway(&stubGateway{orderId: "order_Abc123"})

	mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(futureEventRows(10, 500, 100))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "pending_bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	checkout, err := CreateCheckout(context.Background(), 7, &types.BookTicketRequestBody{EventID: 10, Quantity: 2})
	assert.Nil(t, err)
	assert.Equal(t, "order_Abc123", checkout.OrderID)
	assert.Equal(t, int64(1000), checkout.Amount)
	assert.Equal(t, "INR", checkout.Currency)
	assert.Equal(t, "rzp_test_key", checkout.Key)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCreateCheckoutRefusesInsufficientCapacity(t *testing.T) {
	_, mock := db.GetMockDB()
	lib.NewPaymentGateway(&stubGateway{orderId: "order_Abc123"})

	mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(futureEventRows(10, 500, 1))

	_, err := CreateCheckout(context.Background(), 7, &types.BookTicketRequestBody{EventID: 10, Quantity: 2})
	assert.ErrorIs(t, err, ErrSeatsUnavailable)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCreateCheckoutRefusesPastEvent(t *testing.T) {
	_, mock := db.GetMockDB()

	rows := sqlmock.NewRows([]string{"id", "title", "date_time", "price", "available_seats", "is_active"}).
		AddRow(10, "Old Event", time.Now().Add(-time.Hour), 500, 100, true)
	mock.ExpectQuery(`SELECT \* FROM "events"`).WillReturnRows(rows)

	_, err := CreateCheckout(context.Background(), 7, &types.BookTicketRequestBody{EventID: 10, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCreateCheckoutPersistsNothingOnGatewayFailure(t *testing.T) {
	_, mock := db.GetMockDB()
	lib.NewPaymentGateway(&stubGateway{createErr: errors.New("gateway down")})

	mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(futureEventRows(10, 500, 100))

	_, err := CreateCheckout(context.Background(), 7, &types.BookTicketRequestBody{EventID: 10, Quantity: 1})
	assert.NotNil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCancelCheckout(t *testing.T) {
	_, mock := db.GetMockDB()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pending_bookings" SET "status"=.+ WHERE \(order_id = .+ AND user_id = .+ AND status = .+\) AND "pending_bookings"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.Nil(t, CancelCheckout(7, "order_Abc123"))
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCancelCheckoutIsIdempotent(t *testing.T) {
	_, mock := db.GetMockDB()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pending_bookings" SET "status"=.+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "pending_bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "user_id", "status"}).
			AddRow(1, "order_Abc123", 7, "expired"))

	assert.Nil(t, CancelCheckout(7, "order_Abc123"))
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCancelCheckoutRefusesPaidBooking(t *testing.T) {
	_, mock := db.GetMockDB()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pending_bookings" SET "status"=.+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "pending_bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "user_id", "status"}).
			AddRow(1, "order_Abc123", 7, "paid"))

	err := CancelCheckout(7, "order_Abc123")
	assert.ErrorIs(t, err, ErrBookingClosed)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCancelCheckoutRefusesForeignBooking(t *testing.T) {
	_, mock := db.GetMockDB()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pending_bookings" SET "status"=.+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "pending_bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "user_id", "status"}).
			AddRow(1, "order_Abc123", 99, "pending"))

	err := CancelCheckout(7, "order_Abc123")
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestConfirmPaymentReturnsExistingTickets(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "key_secret")
	_, mock := db.GetMockDB()
	// A gateway stub that knows no payments: a fetch would error, which
	// proves the replay path never reaches the gateway.
	lib.NewPaymentGateway(&stubGateway{})

	orderId := "order_Abc123"
	paymentId := "pay_Xyz789"
	sig := hmacHex("key_secret", orderId+"|"+paymentId)

	mock.ExpectQuery(`SELECT \* FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payment_id", "seq", "status"}).
			AddRow(1, paymentId, 1, "confirmed").
			AddRow(2, paymentId, 2, "confirmed"))

	tickets, err := ConfirmPayment(context.Background(), orderId, paymentId, sig)
	assert.Nil(t, err)
	assert.Len(t, tickets, 2)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestConfirmPaymentRejectsUncapturedPayment(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "key_secret")
	_, mock := db.GetMockDB()
	lib.NewPaymentGateway(&stubGateway{payments: map[string]string{"pay_Xyz789": "authorized"}})

	orderId := "order_Abc123"
	paymentId := "pay_Xyz789"
	sig := hmacHex("key_secret", orderId+"|"+paymentId)

	mock.ExpectQuery(`SELECT \* FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payment_id", "seq", "status"}))

	_, err := ConfirmPayment(context.Background(), orderId, paymentId, sig)
	assert.ErrorIs(t, err, ErrPaymentNotCaptured)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestExpirePendingBookings(t *testing.T) {
	_, mock := db.GetMockDB()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pending_bookings" SET "status"=.+ WHERE \(status = .+ AND expires_at < .+\) AND "pending_bookings"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	ExpirePendingBookings()
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestConfirmPaymentRejectsBadSignature(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "key_secret")

	_, err := ConfirmPayment(context.Background(), "order_Abc123", "pay_Xyz789", "forged")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
