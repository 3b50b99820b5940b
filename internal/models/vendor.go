package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VendorType string

const (
	VendorVenue      VendorType = "venue"
	VendorFreelancer VendorType = "freelancer"
	VendorEventTeam  VendorType = "event_team"
)

func ParseVendorType(s string) (VendorType, error) {
	switch VendorType(s) {
	case VendorVenue, VendorFreelancer, VendorEventTeam:
		return VendorType(s), nil
	}
	return "", ErrInvalid
}

// VenueUnit is one bookable hall/space owned by a venue vendor. Units are
// priced and verified independently of each other.
type VenueUnit struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Capacity    int                `bson:"capacity" json:"capacity" validate:"gte=0"`
	PricePerDay float64            `bson:"price_per_day" json:"pricePerDay" validate:"gte=0"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Verified    bool               `bson:"verified" json:"verified"`
}

type Vendor struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"userId"`

	Type          VendorType `bson:"type" json:"type" validate:"required,oneof=venue freelancer event_team"`
	Name          string     `bson:"name" json:"name" validate:"required"`
	City          string     `bson:"city" json:"city" validate:"required"`
	Description   string     `bson:"description,omitempty" json:"description,omitempty"`
	ContactNumber string     `bson:"contact_number,omitempty" json:"contactNumber,omitempty"`
	ProfilePhoto  string     `bson:"profile_photo,omitempty" json:"profilePhoto,omitempty"`
	Portfolio     []string   `bson:"portfolio,omitempty" json:"portfolio,omitempty"`

	// Freelancer-specific
	FreelancerCategory string  `bson:"freelancer_category,omitempty" json:"freelancerCategory,omitempty"`
	BasePrice          float64 `bson:"base_price,omitempty" json:"basePrice,omitempty"`

	// Event-team-specific
	PackageName        string   `bson:"package_name,omitempty" json:"packageName,omitempty"`
	PackageDescription string   `bson:"package_description,omitempty" json:"packageDescription,omitempty"`
	PackagePrice       float64  `bson:"package_price,omitempty" json:"packagePrice,omitempty"`
	EventTypes         []string `bson:"event_types,omitempty" json:"eventTypes,omitempty"`

	// Venue-specific
	VenueUnits []VenueUnit `bson:"venue_units,omitempty" json:"venueUnits,omitempty"`

	// Denormalized list of booked date strings (YYYY-MM-DD) kept for coarse
	// availability filtering on the directory pages. The booking service
	// patches it after every successful booking insert.
	BookedDates []string `bson:"booked_dates,omitempty" json:"bookedDates,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// VenueUnitByID returns the embedded unit with the given id, or nil.
func (v *Vendor) VenueUnitByID(id primitive.ObjectID) *VenueUnit {
	for i := range v.VenueUnits {
		if v.VenueUnits[i].ID == id {
			return &v.VenueUnits[i]
		}
	}
	return nil
}
