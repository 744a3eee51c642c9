package main

import (
	"context"
	"errors"
	"etix/src/common"
	"etix/src/db"
	"etix/src/lib"
	"etix/src/models"
	"etix/src/types"
	"etix/src/utils"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/tickets/book", func(ctx *gin.Context) {
			var body types.BookTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			checkout, err := common.CreateCheckout(ctx.Request.Context(), userId, &body)
			if err != nil {
				log.Printf("Error creating checkout: %s\n", err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": checkout})
		}).
		POST("/tickets/verify", func(ctx *gin.Context) {
			var body types.VerifyPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tickets, err := common.ConfirmPayment(ctx.Request.Context(), body.OrderID, body.PaymentID, body.Signature)
			if err != nil {
				log.Printf("Error confirming payment [%s]: %s\n", body.PaymentID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets})
		}).
		POST("/tickets/cancel-booking", func(ctx *gin.Context) {
			var body types.CancelBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := common.CancelCheckout(userId, body.OrderID); err != nil {
				log.Printf("Error cancelling booking [%s]: %s\n", body.OrderID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/tickets/cancel-ticket", func(ctx *gin.Context) {
			var body types.CancelTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := common.CancelTicket(body.TicketID, userId); err != nil {
				log.Printf("Error cancelling ticket [%d]: %s\n", body.TicketID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/tickets/my-tickets", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var tickets []models.Ticket
			gdb := db.GetDb()
			if err := gdb.
				Where(&models.Ticket{UserID: userId}).
				Preload("Event").
				Order("created_at desc").
				Find(&tickets).
				Error; err != nil {
				log.Printf("Error retrieving tickets: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets})
		}).
		GET("/tickets/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			var ticket models.Ticket
			gdb := db.GetDb()
			if err := gdb.
				Where(&models.Ticket{ID: params.ID, UserID: userId}).
				Preload("Event").
				First(&ticket).
				Error; err != nil {
				log.Printf("Error retrieving ticket [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		GET("/tickets/:id/code", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			var ticket models.Ticket
			gdb := db.GetDb()
			if err := gdb.
				Where(&models.Ticket{ID: params.ID, UserID: userId}).
				First(&ticket).
				Error; err != nil {
				log.Printf("Error retrieving ticket [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			if ticket.Status != types.TICKET_CONFIRMED {
				respondError(ctx, common.ErrAlreadyCancelled)
				return
			}
			wd, err := os.Getwd()
			if err != nil {
				log.Printf("Could not read working directory: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			filename := fmt.Sprintf("ticketcode_%d", ticket.ID)
			filepath := path.Join(wd, tempdir, fmt.Sprintf("%s.jpeg", filename))

			rd := lib.GetRedisClient()
			cached, err := rd.Get(context.Background(), filename).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("Error reading from cache: %s\n", err.Error())
			}
			if cached != "" {
				if _, err := os.Stat(cached); err == nil {
					ctx.FileAttachment(cached, "eticket.jpeg")
					return
				}
			}

			payload := types.QRPayload{
				V:        1,
				TicketID: ticket.Identifier.String(),
				EventID:  ticket.EventID,
				UserID:   ticket.UserID,
				IssuedAt: ticket.QRIssuedAt,
			}
			data := utils.EncodeTicketQR(payload, ticket.QRSignature)
			if err := utils.SaveTicketQRImage(data, filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			rd.SetEx(context.Background(), filename, filepath, 2*time.Hour)
			ctx.FileAttachment(filepath, "eticket.jpeg")
		})
	return g
}
