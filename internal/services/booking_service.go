package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/event-oh/server/internal/helpers"
	"github.com/event-oh/server/internal/lock"
	"github.com/event-oh/server/internal/metrics"
	"github.com/event-oh/server/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingService struct {
	bookingRepo models.BookingRepo
	vendorRepo  models.VendorRepo
	userRepo    models.UserRepo
	locker      lock.Locker
	logger      *slog.Logger
}

func NewBookingService(bookingRepo models.BookingRepo, vendorRepo models.VendorRepo, userRepo models.UserRepo, locker lock.Locker, logger *slog.Logger) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		vendorRepo:  vendorRepo,
		userRepo:    userRepo,
		locker:      locker,
		logger:      logger,
	}
}

type CreateBookingInput struct {
	VendorID    string  `json:"vendorId" validate:"required"`
	VenueUnitID string  `json:"venueUnitId"`
	StartDate   string  `json:"startDate" validate:"required"`
	EndDate     string  `json:"endDate" validate:"required"`
	TotalAmount float64 `json:"totalAmount" validate:"required,gt=0"`
	Notes       string  `json:"notes"`
}

const (
	lockAttempts = 3
	lockBackoff  = 150 * time.Millisecond
)

// CreateBooking reserves a vendor for a half-open date range. The overlap
// check, the insert, and the vendor booked-dates patch all run server-side
// under a per-vendor lock, so two concurrent requests for the same dates
// cannot both succeed and a failed patch rolls the booking back.
func (bs *BookingService) CreateBooking(ctx context.Context, session *helpers.Session, in CreateBookingInput) (*models.Booking, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: missing required fields", models.ErrInvalid)
	}

	customerID, err := session.ObjectID()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID in token", models.ErrInvalid)
	}

	vendorID, err := primitive.ObjectIDFromHex(in.VendorID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vendor ID", models.ErrInvalid)
	}

	start, err := time.Parse(models.DateLayout, in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startDate, expected YYYY-MM-DD", models.ErrInvalid)
	}
	end, err := time.Parse(models.DateLayout, in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endDate, expected YYYY-MM-DD", models.ErrInvalid)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: endDate must be after startDate", models.ErrInvalid)
	}

	vendor, err := bs.vendorRepo.GetVendorByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	var venueUnitID primitive.ObjectID
	if in.VenueUnitID != "" {
		venueUnitID, err = primitive.ObjectIDFromHex(in.VenueUnitID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid venue unit ID", models.ErrInvalid)
		}
		if vendor.VenueUnitByID(venueUnitID) == nil {
			return nil, fmt.Errorf("%w: venue unit", models.ErrNotFound)
		}
	}

	owner := uuid.New().String()
	if err := bs.acquireVendorLock(ctx, vendor.ID.Hex(), owner); err != nil {
		return nil, err
	}
	defer func() {
		if err := bs.locker.Release(ctx, vendor.ID.Hex(), owner); err != nil {
			bs.logger.Error("Failed to release vendor lock", "vendor_id", vendor.ID.Hex(), "error", err)
		}
	}()

	existing, err := bs.bookingRepo.FindOverlapping(ctx, vendor.ID, start, end)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.IncBookingConflict()
		return nil, fmt.Errorf("%w: vendor or venue is already booked for the selected dates", models.ErrConflict)
	}

	advance := models.AdvanceFor(in.TotalAmount)
	booking := &models.Booking{
		CustomerID:      customerID,
		VendorID:        vendor.ID,
		VenueUnitID:     venueUnitID,
		StartDate:       start,
		EndDate:         end,
		TotalAmount:     in.TotalAmount,
		AdvanceAmount:   advance,
		RemainingAmount: in.TotalAmount - advance,
		PaymentStatus:   models.PaymentPending,
		BookingStatus:   models.BookingPending,
		Notes:           in.Notes,
	}

	created, err := bs.bookingRepo.CreateBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	// Denormalized availability patch, with a compensating delete so the
	// booking and the vendor calendar cannot drift apart.
	if err := bs.vendorRepo.AddBookedDates(ctx, vendor.ID, models.DatesBetween(start, end)); err != nil {
		bs.logger.Error("Failed to patch vendor booked dates, rolling back booking",
			"booking_id", created.ID.Hex(), "vendor_id", vendor.ID.Hex(), "error", err)
		if delErr := bs.bookingRepo.DeleteBooking(ctx, created.ID); delErr != nil {
			bs.logger.Error("Compensating delete failed", "booking_id", created.ID.Hex(), "error", delErr)
		}
		return nil, fmt.Errorf("failed to update vendor availability: %v", err)
	}

	metrics.IncBookingCreated()
	return created, nil
}

func (bs *BookingService) acquireVendorLock(ctx context.Context, key, owner string) error {
	for attempt := 0; attempt < lockAttempts; attempt++ {
		ok, err := bs.locker.Acquire(ctx, key, owner)
		if err != nil {
			return fmt.Errorf("failed to acquire booking lock: %v", err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockBackoff):
		}
	}
	return fmt.Errorf("%w: vendor is handling another booking, please retry", models.ErrConflict)
}

// ListBookings returns the caller's bookings, newest first, with vendor and
// customer references resolved to display fields. Vendors see bookings
// against their vendor record, everyone else sees their own bookings as a
// customer.
func (bs *BookingService) ListBookings(ctx context.Context, session *helpers.Session) ([]*models.BookingView, error) {
	callerID, err := session.ObjectID()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID in token", models.ErrInvalid)
	}

	var bookings []*models.Booking
	if session.IsVendor() {
		vendor, err := bs.vendorRepo.GetVendorByUserID(ctx, callerID)
		if err != nil {
			return nil, err
		}
		bookings, err = bs.bookingRepo.ListByVendor(ctx, vendor.ID)
		if err != nil {
			return nil, err
		}
	} else {
		bookings, err = bs.bookingRepo.ListByCustomer(ctx, callerID)
		if err != nil {
			return nil, err
		}
	}

	return bs.resolveRefs(ctx, bookings)
}

func (bs *BookingService) resolveRefs(ctx context.Context, bookings []*models.Booking) ([]*models.BookingView, error) {
	vendors := make(map[primitive.ObjectID]*models.VendorRef)
	customers := make(map[primitive.ObjectID]*models.CustomerRef)

	views := make([]*models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		view := &models.BookingView{Booking: *b}

		if ref, ok := vendors[b.VendorID]; ok {
			view.Vendor = ref
		} else if vendor, err := bs.vendorRepo.GetVendorByID(ctx, b.VendorID); err == nil {
			ref := &models.VendorRef{ID: vendor.ID.Hex(), Name: vendor.Name, Type: vendor.Type, City: vendor.City}
			vendors[b.VendorID] = ref
			view.Vendor = ref
		}

		if ref, ok := customers[b.CustomerID]; ok {
			view.Customer = ref
		} else if user, err := bs.userRepo.GetUserByID(ctx, b.CustomerID); err == nil {
			ref := &models.CustomerRef{ID: user.ID.Hex(), Name: user.Name, Email: user.Email}
			customers[b.CustomerID] = ref
			view.Customer = ref
		}

		views = append(views, view)
	}

	return views, nil
}

// UpdateStatus moves a booking through the shared transition table. Unknown
// values and illegal moves are rejected without touching the record. Admins
// may apply any legal transition, the booking's vendor manages it, the owning
// customer may only cancel. Cancelling frees the booking's dates from the
// vendor calendar.
func (bs *BookingService) UpdateStatus(ctx context.Context, session *helpers.Session, id, status string) (*models.Booking, error) {
	next, err := models.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking ID", models.ErrInvalid)
	}

	booking, err := bs.bookingRepo.GetBookingByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if err := bs.authorizeStatusChange(ctx, session, booking, next); err != nil {
		return nil, err
	}

	if !booking.BookingStatus.CanTransition(next) {
		return nil, fmt.Errorf("%w: cannot transition booking from %s to %s",
			models.ErrInvalid, booking.BookingStatus, next)
	}
	if booking.BookingStatus == next {
		return booking, nil
	}

	updated, err := bs.bookingRepo.UpdateBookingStatus(ctx, oid, next)
	if err != nil {
		return nil, err
	}

	if next == models.BookingCancelled {
		bs.releaseBookedDates(ctx, updated)
	}

	return updated, nil
}

func (bs *BookingService) authorizeStatusChange(ctx context.Context, session *helpers.Session, booking *models.Booking, next models.BookingStatus) error {
	if session.IsAdmin() {
		return nil
	}
	if session.IsOwner(booking.CustomerID.Hex()) {
		if next == models.BookingCancelled || next == booking.BookingStatus {
			return nil
		}
		return fmt.Errorf("%w: customers can only cancel their bookings", models.ErrForbidden)
	}
	if session.IsVendor() {
		callerID, err := session.ObjectID()
		if err != nil {
			return fmt.Errorf("%w: invalid user ID in token", models.ErrInvalid)
		}
		vendor, err := bs.vendorRepo.GetVendorByUserID(ctx, callerID)
		if err == nil && vendor.ID == booking.VendorID {
			return nil
		}
	}
	return fmt.Errorf("%w: you cannot change this booking", models.ErrForbidden)
}

// releaseBookedDates removes a cancelled booking's dates from the vendor's
// denormalized calendar, keeping any date still claimed by another live
// booking. Best effort: the overlap check never counts cancelled bookings, so
// a failed removal only leaves the coarse directory calendar stale.
func (bs *BookingService) releaseBookedDates(ctx context.Context, booking *models.Booking) {
	dates := models.DatesBetween(booking.StartDate, booking.EndDate)
	if len(dates) == 0 {
		return
	}

	others, err := bs.bookingRepo.ListByVendor(ctx, booking.VendorID)
	if err != nil {
		bs.logger.Error("Failed to list vendor bookings while freeing dates",
			"booking_id", booking.ID.Hex(), "error", err)
		return
	}

	held := make(map[string]bool)
	for _, other := range others {
		if other.ID == booking.ID {
			continue
		}
		if other.BookingStatus != models.BookingPending && other.BookingStatus != models.BookingConfirmed {
			continue
		}
		for _, d := range models.DatesBetween(other.StartDate, other.EndDate) {
			held[d] = true
		}
	}

	free := make([]string, 0, len(dates))
	for _, d := range dates {
		if !held[d] {
			free = append(free, d)
		}
	}
	if len(free) == 0 {
		return
	}

	if err := bs.vendorRepo.RemoveBookedDates(ctx, booking.VendorID, free); err != nil {
		bs.logger.Error("Failed to free vendor booked dates",
			"booking_id", booking.ID.Hex(), "vendor_id", booking.VendorID.Hex(), "error", err)
	}
}

func (bs *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking ID", models.ErrInvalid)
	}
	return bs.bookingRepo.GetBookingByID(ctx, oid)
}
