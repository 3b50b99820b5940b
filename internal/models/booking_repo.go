package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	FindOverlapping(ctx context.Context, vendorID primitive.ObjectID, start, end time.Time) (*Booking, error)
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]*Booking, error)
	ListByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]*Booking, error)
	UpdateBookingStatus(ctx context.Context, id primitive.ObjectID, status BookingStatus) (*Booking, error)
	SetPaymentOutcome(ctx context.Context, id primitive.ObjectID, payment PaymentStatus, booking BookingStatus) (*Booking, error)
	DeleteBooking(ctx context.Context, id primitive.ObjectID) error
}

func (b *Booking) BeforeCreate() {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
}

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	booking.BeforeCreate()
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("error inserting booking: %v", err)
	}

	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var booking Booking
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: booking", ErrNotFound)
		}
		return nil, fmt.Errorf("error finding booking: %v", err)
	}

	return &booking, nil
}

// FindOverlapping returns one live booking for the vendor whose [start,end)
// range intersects the given half-open range, or nil when the range is free.
// Only pending and confirmed bookings block dates.
func (mdb *MongodbRepo) FindOverlapping(ctx context.Context, vendorID primitive.ObjectID, start, end time.Time) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{
		"vendor_id":      vendorID,
		"start_date":     bson.M{"$lt": end},
		"end_date":       bson.M{"$gt": start},
		"booking_status": bson.M{"$in": []BookingStatus{BookingPending, BookingConfirmed}},
	}

	var booking Booking
	if err := col.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying overlapping bookings: %v", err)
	}

	return &booking, nil
}

func (mdb *MongodbRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]*Booking, error) {
	return mdb.listBookings(ctx, bson.M{"customer_id": customerID})
}

func (mdb *MongodbRepo) ListByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]*Booking, error) {
	return mdb.listBookings(ctx, bson.M{"vendor_id": vendorID})
}

func (mdb *MongodbRepo) listBookings(ctx context.Context, filter bson.M) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %v", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	for cursor.Next(ctx) {
		var b Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %v", err)
		}
		bookings = append(bookings, &b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return bookings, nil
}

func (mdb *MongodbRepo) UpdateBookingStatus(ctx context.Context, id primitive.ObjectID, status BookingStatus) (*Booking, error) {
	return mdb.updateBooking(ctx, id, bson.M{"booking_status": status})
}

// SetPaymentOutcome writes both status fields in a single update so the
// paid/completed pair lands together.
func (mdb *MongodbRepo) SetPaymentOutcome(ctx context.Context, id primitive.ObjectID, payment PaymentStatus, booking BookingStatus) (*Booking, error) {
	return mdb.updateBooking(ctx, id, bson.M{
		"payment_status": payment,
		"booking_status": booking,
	})
}

func (mdb *MongodbRepo) updateBooking(ctx context.Context, id primitive.ObjectID, set bson.M) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	set["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Booking
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: booking", ErrNotFound)
		}
		return nil, fmt.Errorf("error updating booking: %v", err)
	}

	return &updated, nil
}

// DeleteBooking is the compensating action for a failed booked-dates patch;
// observed client flows never delete bookings otherwise.
func (mdb *MongodbRepo) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DBName, BookingsCol)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("error deleting booking: %v", err)
	}
	return nil
}
