package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdvanceRate is the fraction of the total amount collected up front to move
// a booking from pending to confirmed.
const AdvanceRate = 0.20

const DateLayout = "2006-01-02"

type Booking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID  primitive.ObjectID `bson:"customer_id" json:"customerId"`
	VendorID    primitive.ObjectID `bson:"vendor_id" json:"vendorId"`
	VenueUnitID primitive.ObjectID `bson:"venue_unit_id,omitempty" json:"venueUnitId,omitempty"`

	StartDate time.Time `bson:"start_date" json:"startDate"`
	EndDate   time.Time `bson:"end_date" json:"endDate"`

	TotalAmount     float64 `bson:"total_amount" json:"totalAmount"`
	AdvanceAmount   float64 `bson:"advance_amount" json:"advanceAmount"`
	RemainingAmount float64 `bson:"remaining_amount" json:"remainingAmount"`

	PaymentStatus PaymentStatus `bson:"payment_status" json:"paymentStatus"`
	BookingStatus BookingStatus `bson:"booking_status" json:"bookingStatus"`

	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AdvanceFor returns the rounded advance for a total amount.
func AdvanceFor(total float64) float64 {
	return math.Round(total * AdvanceRate)
}

// Overlaps reports whether the booking's [start,end) range intersects the
// given half-open range.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && b.EndDate.After(start)
}

// DatesBetween expands a half-open [start,end) range into its per-day date
// strings, the format the vendor booked-dates list stores.
func DatesBetween(start, end time.Time) []string {
	var dates []string
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// VendorRef and CustomerRef are the resolved display fields attached to
// booking listings.
type VendorRef struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type VendorType `json:"type"`
	City string     `json:"city"`
}

type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BookingView struct {
	Booking
	Vendor   *VendorRef   `json:"vendor,omitempty"`
	Customer *CustomerRef `json:"customer,omitempty"`
}
