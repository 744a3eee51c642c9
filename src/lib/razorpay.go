package lib

import (
	"os"

	razorpay "github.com/razorpay/razorpay-go"
)

// PaymentGateway wraps the gateway endpoints the booking flow needs.
// Handlers never touch the SDK directly so tests can substitute a stub.
type PaymentGateway interface {
	CreateOrder(amount int64, currency string, receipt string, notes map[string]interface{}) (map[string]interface{}, error)
	FetchOrder(orderId string) (map[string]interface{}, error)
	FetchPayment(paymentId string) (map[string]interface{}, error)
}

type razorpayGateway struct {
	inner *razorpay.Client
}

func (g *razorpayGateway) CreateOrder(amount int64, currency string, receipt string, notes map[string]interface{}) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	return g.inner.Order.Create(data, nil)
}

func (g *razorpayGateway) FetchOrder(orderId string) (map[string]interface{}, error) {
	return g.inner.Order.Fetch(orderId, nil, nil)
}

func (g *razorpayGateway) FetchPayment(paymentId string) (map[string]interface{}, error) {
	return g.inner.Payment.Fetch(paymentId, nil, nil)
}

var paymentGateway PaymentGateway

func GetPaymentGateway() PaymentGateway {
	if paymentGateway != nil {
		return paymentGateway
	}
	client := razorpay.NewClient(os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"))
	paymentGateway = &razorpayGateway{inner: client}
	return paymentGateway
}

// NewPaymentGateway replaces the gateway instance with a custom client implementation
func NewPaymentGateway(g PaymentGateway) PaymentGateway {
	paymentGateway = g
	return paymentGateway
}
