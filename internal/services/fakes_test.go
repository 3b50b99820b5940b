package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"time"

	"github.com/event-oh/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRepo is an in-memory stand-in for MongodbRepo covering all three
// repository interfaces, with error injection hooks for failure paths.
type fakeRepo struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	vendors  map[primitive.ObjectID]*models.Vendor
	bookings map[primitive.ObjectID]*models.Booking

	addDatesErr error
	deleted     []primitive.ObjectID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[primitive.ObjectID]*models.User),
		vendors:  make(map[primitive.ObjectID]*models.Vendor),
		bookings: make(map[primitive.ObjectID]*models.Booking),
	}
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("%w: email already in use", models.ErrConflict)
		}
	}
	user.BeforeCreate()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: user", models.ErrNotFound)
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: user", models.ErrNotFound)
}

func (f *fakeRepo) CreateVendor(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vendor.BeforeCreate()
	f.vendors[vendor.ID] = vendor
	return vendor, nil
}

func (f *fakeRepo) GetVendorByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.vendors[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: vendor", models.ErrNotFound)
}

func (f *fakeRepo) GetVendorByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vendors {
		if v.UserID == userID {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: vendor", models.ErrNotFound)
}

func (f *fakeRepo) ListVendors(ctx context.Context, filter models.VendorFilter) ([]*models.Vendor, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Vendor
	for _, v := range f.vendors {
		if filter.Type != "" && string(v.Type) != filter.Type {
			continue
		}
		if filter.City != "" && v.City != filter.City {
			continue
		}
		out = append(out, v)
	}
	total := int64(len(out))
	if filter.Limit > 0 {
		if filter.Offset >= total {
			return nil, total, nil
		}
		end := filter.Offset + filter.Limit
		if end > total {
			end = total
		}
		out = out[filter.Offset:end]
	}
	return out, total, nil
}

func (f *fakeRepo) UpdateVendor(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok {
		return nil, fmt.Errorf("%w: vendor", models.ErrNotFound)
	}
	for key, value := range fields {
		switch key {
		case "name":
			v.Name, _ = value.(string)
		case "city":
			v.City, _ = value.(string)
		case "description":
			v.Description, _ = value.(string)
		}
	}
	return v, nil
}

func (f *fakeRepo) SetBookedDates(ctx context.Context, id primitive.ObjectID, dates []string) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok {
		return nil, fmt.Errorf("%w: vendor", models.ErrNotFound)
	}
	v.BookedDates = dates
	return v, nil
}

func (f *fakeRepo) AddBookedDates(ctx context.Context, id primitive.ObjectID, dates []string) error {
	if f.addDatesErr != nil {
		return f.addDatesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok {
		return fmt.Errorf("%w: vendor", models.ErrNotFound)
	}
	for _, d := range dates {
		seen := false
		for _, existing := range v.BookedDates {
			if existing == d {
				seen = true
				break
			}
		}
		if !seen {
			v.BookedDates = append(v.BookedDates, d)
		}
	}
	return nil
}

func (f *fakeRepo) RemoveBookedDates(ctx context.Context, id primitive.ObjectID, dates []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok {
		return fmt.Errorf("%w: vendor", models.ErrNotFound)
	}
	remove := make(map[string]bool, len(dates))
	for _, d := range dates {
		remove[d] = true
	}
	kept := v.BookedDates[:0]
	for _, d := range v.BookedDates {
		if !remove[d] {
			kept = append(kept, d)
		}
	}
	v.BookedDates = kept
	return nil
}

func (f *fakeRepo) AppendPortfolio(ctx context.Context, id primitive.ObjectID, urls []string) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok {
		return nil, fmt.Errorf("%w: vendor", models.ErrNotFound)
	}
	// set semantics, like the $addToSet the real repo issues
	for _, url := range urls {
		seen := false
		for _, existing := range v.Portfolio {
			if existing == url {
				seen = true
				break
			}
		}
		if !seen {
			v.Portfolio = append(v.Portfolio, url)
		}
	}
	return v, nil
}

func (f *fakeRepo) VerifyVenueUnit(ctx context.Context, vendorID, venueUnitID primitive.ObjectID) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[vendorID]
	if !ok {
		return nil, fmt.Errorf("%w: vendor", models.ErrNotFound)
	}
	unit := v.VenueUnitByID(venueUnitID)
	if unit == nil {
		return nil, fmt.Errorf("%w: venue unit", models.ErrNotFound)
	}
	unit.Verified = true
	return v, nil
}

func (f *fakeRepo) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking.BeforeCreate()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	f.bookings[booking.ID] = booking
	return booking, nil
}

func (f *fakeRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: booking", models.ErrNotFound)
}

func (f *fakeRepo) FindOverlapping(ctx context.Context, vendorID primitive.ObjectID, start, end time.Time) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.VendorID != vendorID {
			continue
		}
		if b.BookingStatus != models.BookingPending && b.BookingStatus != models.BookingConfirmed {
			continue
		}
		if b.Overlaps(start, end) {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.VendorID == vendorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateBookingStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking", models.ErrNotFound)
	}
	b.BookingStatus = status
	b.UpdatedAt = time.Now()
	return b, nil
}

func (f *fakeRepo) SetPaymentOutcome(ctx context.Context, id primitive.ObjectID, payment models.PaymentStatus, booking models.BookingStatus) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking", models.ErrNotFound)
	}
	b.PaymentStatus = payment
	b.BookingStatus = booking
	b.UpdatedAt = time.Now()
	return b, nil
}

func (f *fakeRepo) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[id]; !ok {
		return fmt.Errorf("%w: booking", models.ErrNotFound)
	}
	delete(f.bookings, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeUploader returns canned URLs instead of calling Cloudinary.
type fakeUploader struct {
	urls  []string
	err   error
	calls int
}

func (u *fakeUploader) UploadFiles(ctx context.Context, files []*multipart.FileHeader, folder string) ([]string, error) {
	u.calls++
	if u.err != nil {
		return nil, u.err
	}
	return u.urls, nil
}

// fakeLocker tracks acquisitions and can be forced to report the lock busy.
type fakeLocker struct {
	mu           sync.Mutex
	held         map[string]string
	busy         bool
	acquireCalls int
	releases     int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]string)}
}

func (l *fakeLocker) Acquire(ctx context.Context, key, owner string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquireCalls++
	if l.busy {
		return false, nil
	}
	if _, taken := l.held[key]; taken {
		return false, nil
	}
	l.held[key] = owner
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == owner {
		delete(l.held, key)
		l.releases++
	}
	return nil
}
