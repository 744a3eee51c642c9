package main

import (
	"etix/src/common"
	"etix/src/config"
	"etix/src/db"
	"etix/src/middlewares"
	"etix/src/models"
	"etix/src/types"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// publicEventRoutes serves the browsable catalog. No auth required.
func publicEventRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		GET("/events", func(ctx *gin.Context) {
			var events []models.Event
			gdb := db.GetDb()
			if err := gdb.
				Where("is_active = ? AND date_time > ?", true, time.Now()).
				Order("date_time asc").
				Find(&events).
				Error; err != nil {
				log.Printf("Error retrieving events: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		}).
		GET("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var event models.Event
			gdb := db.GetDb()
			if err := gdb.
				Where(&models.Event{ID: params.ID, IsActive: true}).
				First(&event).
				Error; err != nil {
				log.Printf("Error retrieving event [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		})
	return apiv1
}

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	organizer := g.Group("/events")
	organizer.Use(middlewares.RequireRoles(types.ROLE_ORGANIZER, types.ROLE_ADMIN))
	organizer.
		POST("", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			datetime, err := time.Parse(config.TIME_PARSE_FORMAT, body.DateTime)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			event := models.Event{
				Title:          body.Title,
				Description:    body.Description,
				Location:       body.Location,
				DateTime:       datetime,
				Price:          body.Price,
				TotalSeats:     body.TotalSeats,
				AvailableSeats: body.TotalSeats,
				OrganizerID:    userId,
				Image:          body.Image,
				IsActive:       true,
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&event).Error; err != nil {
					return err
				}
				newSlug := slug.Make(event.Title)
				if err := tx.
					Model(&models.Event{}).
					Where("id = ?", event.ID).
					Update("slug", fmt.Sprintf("%s-%d", newSlug, event.ID)).
					Error; err != nil {
					return err
				}
				return nil
			}); err != nil {
				log.Printf("Error creating event: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": event.ID})
		}).
		PUT("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				var event models.Event
				if err := tx.
					Where(&models.Event{ID: params.ID}).
					First(&event).
					Error; err != nil {
					return err
				}
				if event.OrganizerID != userId && role != string(types.ROLE_ADMIN) {
					return common.ErrNotAllowed
				}
				updates := map[string]any{}
				if body.Title != nil {
					updates["title"] = *body.Title
					updates["slug"] = fmt.Sprintf("%s-%d", slug.Make(*body.Title), event.ID)
				}
				if body.Description != nil {
					updates["description"] = *body.Description
				}
				if body.Location != nil {
					updates["location"] = *body.Location
				}
				if body.DateTime != nil {
					datetime, err := time.Parse(config.TIME_PARSE_FORMAT, *body.DateTime)
					if err != nil {
						return err
					}
					updates["date_time"] = datetime
				}
				if body.Price != nil {
					updates["price"] = *body.Price
				}
				if body.Image != nil {
					updates["image"] = *body.Image
				}
				if len(updates) == 0 {
					return nil
				}
				if err := tx.
					Model(&models.Event{}).
					Where("id = ?", event.ID).
					Updates(updates).
					Error; err != nil {
					return err
				}
				return nil
			}); err != nil {
				log.Printf("Error updating event [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				var event models.Event
				if err := tx.
					Where(&models.Event{ID: params.ID}).
					First(&event).
					Error; err != nil {
					return err
				}
				if event.OrganizerID != userId && role != string(types.ROLE_ADMIN) {
					return common.ErrNotAllowed
				}
				// Deactivate first so no new checkout can race the delete.
				if err := tx.
					Model(&models.Event{}).
					Where("id = ?", event.ID).
					Update("is_active", false).
					Error; err != nil {
					return err
				}
				// Keep the row visible to ticket holders while any
				// confirmed ticket still references it.
				var live int64
				if err := tx.
					Model(&models.Ticket{}).
					Where("event_id = ? AND status = ?", event.ID, types.TICKET_CONFIRMED).
					Count(&live).
					Error; err != nil {
					return err
				}
				if live > 0 {
					return nil
				}
				if err := tx.Delete(&event).Error; err != nil {
					return err
				}
				return nil
			}); err != nil {
				log.Printf("Error deleting event [%d]: %s\n", params.ID, err.Error())
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func organizerEventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	organizer := g.Group("/organizer")
	organizer.Use(middlewares.RequireRoles(types.ROLE_ORGANIZER, types.ROLE_ADMIN))
	organizer.
		GET("/events", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var events []models.Event
			gdb := db.GetDb()
			if err := gdb.
				Where(&models.Event{OrganizerID: userId}).
				Order("date_time asc").
				Find(&events).
				Error; err != nil {
				log.Printf("Error retrieving events for organizer [%d]: %s\n", userId, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		}).
		GET("/events/:id/attendees", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			var event models.Event
			gdb := db.GetDb()
			if err := gdb.
				Where(&models.Event{ID: params.ID}).
				First(&event).
				Error; err != nil {
				respondError(ctx, err)
				return
			}
			if event.OrganizerID != userId && role != string(types.ROLE_ADMIN) {
				respondError(ctx, common.ErrNotAllowed)
				return
			}
			var tickets []models.Ticket
			if err := gdb.
				Where("event_id = ? AND status <> ?", event.ID, types.TICKET_CANCELLED).
				Preload("User").
				Order("created_at desc").
				Find(&tickets).
				Error; err != nil {
				log.Printf("Error retrieving attendees for event [%d]: %s\n", event.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets})
		})
	return g
}
