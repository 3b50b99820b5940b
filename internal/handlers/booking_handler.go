package handlers

import (
	"net/http"

	"github.com/event-oh/server/internal/models"
	"github.com/event-oh/server/internal/services"
	"github.com/gin-gonic/gin"
)

func CreateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok {
			return
		}

		var in services.CreateBookingInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking payload"))
			return
		}

		booking, err := b.CreateBooking(c.Request.Context(), session, in)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(booking, "Booking created successfully"))
	}
}

func ListBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok {
			return
		}

		bookings, err := b.ListBookings(c.Request.Context(), session)
		if err != nil {
			respondError(c, err)
			return
		}
		if bookings == nil {
			bookings = []*models.BookingView{}
		}

		c.JSON(http.StatusOK, models.SuccessResponse(bookings, ""))
	}
}

// GetBooking returns one booking. Customers only see their own; admins see
// everything.
func GetBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok {
			return
		}

		booking, err := b.GetBooking(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		if !session.IsOwner(booking.CustomerID.Hex()) && !session.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("you can only view your own bookings"))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(booking, ""))
	}
}

func UpdateBookingStatus(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok {
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("status is required"))
			return
		}

		booking, err := b.UpdateStatus(c.Request.Context(), session, c.Param("id"), req.Status)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking status updated successfully"))
	}
}
