package common

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"etix/src/config"
	"etix/src/db"
	"etix/src/lib"
	"etix/src/models"
	"fmt"
	"log"
	"os"
)

func signHMAC(key []byte, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

func constantTimeHexCompare(expected []byte, suppliedHex string) bool {
	supplied, err := hex.DecodeString(suppliedHex)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, supplied)
}

// VerifyCheckoutSignature checks the client-submitted callback values:
// HMAC-SHA256 over "orderId|paymentId" with the gateway key secret,
// compared in constant time. The error never says which part failed.
func VerifyCheckoutSignature(orderId, paymentId, signature string) error {
	secret := []byte(os.Getenv("RAZORPAY_KEY_SECRET"))
	expected := signHMAC(secret, []byte(orderId+"|"+paymentId))
	if !constantTimeHexCompare(expected, signature) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyWebhookSignature checks the raw webhook body against the
// X-Razorpay-Signature header using the dedicated webhook secret.
func VerifyWebhookSignature(body []byte, signature string) error {
	secret := []byte(os.Getenv("RAZORPAY_WEBHOOK_SECRET"))
	expected := signHMAC(secret, body)
	if !constantTimeHexCompare(expected, signature) {
		return ErrInvalidSignature
	}
	return nil
}

// FindIssuedTickets is the idempotency short-circuit shared by the
// verify and webhook paths: callback delivery is not exactly-once, so a
// payment that already minted tickets returns the existing set.
func FindIssuedTickets(paymentId string) ([]models.Ticket, error) {
	gdb := db.GetDb()
	var tickets []models.Ticket
	if err := gdb.
		Where(&models.Ticket{PaymentID: paymentId}).
		Order("seq asc").
		Find(&tickets).
		Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// ConfirmPayment is the client-side verify path: signature check,
// idempotent replay, then a gateway capture check before issuance.
func ConfirmPayment(ctx context.Context, orderId, paymentId, signature string) ([]models.Ticket, error) {
	if err := VerifyCheckoutSignature(orderId, paymentId, signature); err != nil {
		return nil, err
	}
	existing, err := FindIssuedTickets(paymentId)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}
	captured, err := paymentCaptured(ctx, orderId, paymentId)
	if err != nil {
		return nil, err
	}
	if !captured {
		return nil, ErrPaymentNotCaptured
	}
	return IssueTickets(orderId, paymentId)
}

// paymentCaptured asks the gateway for the payment's capture status with
// a bounded timeout. When the payment lookup fails it falls back to the
// order: an order the gateway marks paid means the payment was captured.
func paymentCaptured(ctx context.Context, orderId, paymentId string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, config.GATEWAY_TIMEOUT)
	defer cancel()

	type fetchResult struct {
		captured bool
		err      error
	}
	ch := make(chan fetchResult, 1)
	go func() {
		gw := lib.GetPaymentGateway()
		payment, err := gw.FetchPayment(paymentId)
		if err == nil {
			status, _ := payment["status"].(string)
			ch <- fetchResult{status == "captured", nil}
			return
		}
		log.Printf("Error fetching payment %s: %s\n", paymentId, err.Error())
		order, orderErr := gw.FetchOrder(orderId)
		if orderErr != nil {
			log.Printf("Error fetching order %s: %s\n", orderId, orderErr.Error())
			ch <- fetchResult{false, err}
			return
		}
		status, _ := order["status"].(string)
		ch <- fetchResult{status == "paid", nil}
	}()
	select {
	case r := <-ch:
		return r.captured, r.err
	case <-ctx.Done():
		return false, fmt.Errorf("payment fetch for %s: %w", paymentId, ctx.Err())
	}
}
