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

// VendorFilter narrows the directory listing. Zero values are ignored; a
// Limit of 0 means no paging.
type VendorFilter struct {
	Type     string
	City     string
	Category string
	Offset   int64
	Limit    int64
}

type VendorRepo interface {
	CreateVendor(ctx context.Context, vendor *Vendor) (*Vendor, error)
	GetVendorByID(ctx context.Context, id primitive.ObjectID) (*Vendor, error)
	GetVendorByUserID(ctx context.Context, userID primitive.ObjectID) (*Vendor, error)
	ListVendors(ctx context.Context, filter VendorFilter) ([]*Vendor, int64, error)
	UpdateVendor(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Vendor, error)
	SetBookedDates(ctx context.Context, id primitive.ObjectID, dates []string) (*Vendor, error)
	AddBookedDates(ctx context.Context, id primitive.ObjectID, dates []string) error
	RemoveBookedDates(ctx context.Context, id primitive.ObjectID, dates []string) error
	AppendPortfolio(ctx context.Context, id primitive.ObjectID, urls []string) (*Vendor, error)
	VerifyVenueUnit(ctx context.Context, vendorID, venueUnitID primitive.ObjectID) (*Vendor, error)
}

func (v *Vendor) BeforeCreate() {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	for i := range v.VenueUnits {
		if v.VenueUnits[i].ID.IsZero() {
			v.VenueUnits[i].ID = primitive.NewObjectID()
		}
	}
}

func (mdb *MongodbRepo) CreateVendor(ctx context.Context, vendor *Vendor) (*Vendor, error) {
	col, err := mdb.GetCollection(ctx, DBName, VendorsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	vendor.BeforeCreate()
	now := time.Now()
	vendor.CreatedAt = now
	vendor.UpdatedAt = now

	if _, err := col.InsertOne(ctx, vendor); err != nil {
		return nil, fmt.Errorf("error inserting vendor: %v", err)
	}

	return vendor, nil
}

func (mdb *MongodbRepo) GetVendorByID(ctx context.Context, id primitive.ObjectID) (*Vendor, error) {
	col, err := mdb.GetCollection(ctx, DBName, VendorsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var vendor Vendor
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&vendor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: vendor", ErrNotFound)
		}
		return nil, fmt.Errorf("error finding vendor: %v", err)
	}

	return &vendor, nil
}

func (mdb *MongodbRepo) GetVendorByUserID(ctx context.Context, userID primitive.ObjectID) (*Vendor, error) {
	col, err := mdb.GetCollection(ctx, DBName, VendorsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var vendor Vendor
	if err := col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&vendor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: vendor", ErrNotFound)
		}
		return nil, fmt.Errorf("error finding vendor by user: %v", err)
	}

	return &vendor, nil
}

func (mdb *MongodbRepo) ListVendors(ctx context.Context, filter VendorFilter) ([]*Vendor, int64, error) {
	col, err := mdb.GetCollection(ctx, DBName, VendorsCol)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.City != "" {
		query["city"] = bson.M{"$regex": fmt.Sprintf("^%s$", filter.City), "$options": "i"}
	}
	if filter.Category != "" {
		query["freelancer_category"] = filter.Category
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting vendors: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts = opts.SetSkip(filter.Offset).SetLimit(filter.Limit)
	}
	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing vendors: %v", err)
	}
	defer cursor.Close(ctx)

	var vendors []*Vendor
	for cursor.Next(ctx) {
		var v Vendor
		if err := cursor.Decode(&v); err != nil {
			return nil, 0, fmt.Errorf("error decoding vendor: %v", err)
		}
		vendors = append(vendors, &v)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %v", err)
	}

	return vendors, total, nil
}

func (mdb *MongodbRepo) UpdateVendor(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Vendor, error) {
	col, err := mdb.GetCollection(ctx, DBName, VendorsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Vendor
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: vendor", ErrNotFound)
		}
		return nil, fmt.Errorf("error updating vendor: %v", err)
	}

	return &updated, nil
}

func (mdb *MongodbRepo) SetBookedDates(ctx context.Context, id primitive.ObjectID, dates []string) (*Vendor, error) {
	return mdb.UpdateVendor(ctx, id, map[string]interface{}{"booked_dates": dates})
}

func (mdb *MongodbRepo) AddBookedDates(ctx context.Context, id primitive.ObjectID, dates []string) error {
	col, err := mdb.GetCollection(ctx, DBName, VendorsCol)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$addToSet": bson.M{"booked_dates": bson.M{"$each": dates}},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("error adding booked dates: %v", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: vendor", ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) RemoveBookedDates(ctx context.Context, id primitive.ObjectID, dates []string) error {
	col, err := mdb.GetCollection(ctx, DBName, VendorsCol)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$pull": bson.M{"booked_dates": bson.M{"$in": dates}},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("error removing booked dates: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) AppendPortfolio(ctx context.Context, id primitive.ObjectID, urls []string) (*Vendor, error) {
	col, err := mdb.GetCollection(ctx, DBName, VendorsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$addToSet": bson.M{"portfolio": bson.M{"$each": urls}},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Vendor
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: vendor", ErrNotFound)
		}
		return nil, fmt.Errorf("error appending portfolio: %v", err)
	}

	return &updated, nil
}

// VerifyVenueUnit flips the named embedded unit's verified flag to true.
// There is no un-verify path.
func (mdb *MongodbRepo) VerifyVenueUnit(ctx context.Context, vendorID, venueUnitID primitive.ObjectID) (*Vendor, error) {
	col, err := mdb.GetCollection(ctx, DBName, VendorsCol)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": vendorID, "venue_units._id": venueUnitID}
	update := bson.M{
		"$set": bson.M{
			"venue_units.$.verified": true,
			"updated_at":             time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Vendor
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: vendor or venue unit", ErrNotFound)
		}
		return nil, fmt.Errorf("error verifying venue unit: %v", err)
	}

	return &updated, nil
}
