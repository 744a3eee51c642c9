package main

import (
	"etix/src/common"
	"etix/src/middlewares"
	"etix/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func checkinHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	organizer := g.Group("/organizer")
	organizer.Use(middlewares.RequireRoles(types.ROLE_ORGANIZER, types.ROLE_ADMIN))
	organizer.
		POST("/scan", func(ctx *gin.Context) {
			var body types.ScanTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			scannerId := ctx.GetUint("id")
			role := ctx.GetString("role")
			result, err := common.ScanTicket(body.QRData, scannerId, role)
			if err != nil {
				log.Printf("Error scanning ticket: %s\n", err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		POST("/manual-checkin", func(ctx *gin.Context) {
			var body types.ManualCheckInRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			scannerId := ctx.GetUint("id")
			role := ctx.GetString("role")
			result, err := common.ManualCheckIn(body.TicketID, scannerId, role)
			if err != nil {
				log.Printf("Error on manual check-in for ticket [%d]: %s\n", body.TicketID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		})
	return g
}
