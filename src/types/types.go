package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type Role string

const (
	ROLE_USER      Role = "user"
	ROLE_ORGANIZER Role = "organizer"
	ROLE_ADMIN     Role = "admin"
)

type BookingStatus string

const (
	BOOKING_PENDING BookingStatus = "pending"
	BOOKING_PAID    BookingStatus = "paid"
	BOOKING_EXPIRED BookingStatus = "expired"
)

type TicketStatus string

const (
	TICKET_CONFIRMED TicketStatus = "confirmed"
	TICKET_CANCELLED TicketStatus = "cancelled"
	TICKET_USED      TicketStatus = "used"
)

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role,omitempty" binding:"omitempty,oneof=user organizer"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateEventRequestBody struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Location    string `json:"location" binding:"required"`
	DateTime    string `json:"date_time" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	Price       int64  `json:"price" binding:"required,min=0"`
	TotalSeats  uint   `json:"total_seats" binding:"required,min=1"`
	Image       string `json:"image,omitempty"`
}

type UpdateEventRequestBody struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	DateTime    *string `json:"date_time,omitempty" binding:"omitempty,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,min=0"`
	Image       *string `json:"image,omitempty"`
}

type BookTicketRequestBody struct {
	EventID  uint `json:"event_id" binding:"required"`
	Quantity uint `json:"quantity" binding:"required,min=1,max=10"`
}

type VerifyPaymentRequestBody struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type CancelBookingRequestBody struct {
	OrderID string `json:"order_id" binding:"required"`
}

type CancelTicketRequestBody struct {
	TicketID uint `json:"ticket_id" binding:"required"`
}

type ScanTicketRequestBody struct {
	QRData string `json:"qr_data" binding:"required"`
}

type ManualCheckInRequestBody struct {
	TicketID uint `json:"ticket_id" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

// CheckoutResponse carries the gateway order handle the client needs to
// open the payment flow.
type CheckoutResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key"`
}

type CheckInResult struct {
	TicketID  uint      `json:"ticket_id"`
	Attendee  string    `json:"attendee"`
	Email     string    `json:"email,omitempty"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// QRPayload is the signed portion of a ticket QR code. The layout is
// versioned; decoding is strict and fails closed on unknown fields.
type QRPayload struct {
	V        int    `json:"v"`
	TicketID string `json:"ticket_id"`
	EventID  uint   `json:"event_id"`
	UserID   uint   `json:"user_id"`
	IssuedAt int64  `json:"issued_at"`
}

// QREnvelope is what actually gets encoded into the QR image: the
// payload plus its detached HMAC signature.
type QREnvelope struct {
	Payload   QRPayload `json:"payload"`
	Signature string    `json:"signature"`
}
