package main

import (
	"etix/src/common"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// paymentWebhookRoute receives gateway notifications. It shares the
// issuance path with client-side verification, so whichever of the two
// arrives first mints the tickets and the other converges on them.
func paymentWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/payment", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		signature := ctx.GetHeader("X-Razorpay-Signature")
		if err := common.VerifyWebhookSignature(payload, signature); err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		event := gjson.GetBytes(payload, "event").String()
		log.Printf("[PaymentEvent] %s\n", event)
		switch event {
		case "payment.captured":
			entity := gjson.GetBytes(payload, "payload.payment.entity")
			orderId := entity.Get("order_id").String()
			paymentId := entity.Get("id").String()
			if orderId == "" || paymentId == "" {
				log.Println("Webhook payload is missing order or payment id")
				ctx.Status(http.StatusBadRequest)
				return
			}
			if _, err := common.IssueTickets(orderId, paymentId); err != nil {
				log.Printf("Error issuing tickets for order %s: %s\n", orderId, err.Error())
				// Acknowledge anyway: a domain rejection here will not
				// change on redelivery.
			}
		default:
			log.Printf("Ignoring event type: %s\n", event)
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
