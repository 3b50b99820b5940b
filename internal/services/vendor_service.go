package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/event-oh/server/internal/helpers"
	"github.com/event-oh/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Uploader pushes multipart files to image storage and returns their URLs.
type Uploader interface {
	UploadFiles(ctx context.Context, files []*multipart.FileHeader, folder string) ([]string, error)
}

type VendorService struct {
	vendorRepo models.VendorRepo
	userRepo   models.UserRepo
	uploader   Uploader
}

func NewVendorService(vendorRepo models.VendorRepo, userRepo models.UserRepo, uploader Uploader) *VendorService {
	return &VendorService{
		vendorRepo: vendorRepo,
		userRepo:   userRepo,
		uploader:   uploader,
	}
}

// vendorMutableFields maps the JSON field names a vendor may edit on their own
// profile to the stored keys. Anything else in an update payload is dropped.
var vendorMutableFields = map[string]string{
	"name":               "name",
	"city":               "city",
	"description":        "description",
	"contactNumber":      "contact_number",
	"freelancerCategory": "freelancer_category",
	"basePrice":          "base_price",
	"packageName":        "package_name",
	"packageDescription": "package_description",
	"packagePrice":       "package_price",
	"eventTypes":         "event_types",
}

// VendorFiles carries the multipart image fields of vendor registration.
type VendorFiles struct {
	ProfilePhoto *multipart.FileHeader
	Portfolio    []*multipart.FileHeader
	VenueImages  []*multipart.FileHeader
}

// RegisterVendor creates the owning user account and the vendor profile, and
// pushes any uploaded images to Cloudinary. The user insert and the vendor
// insert are separate writes; if the vendor insert fails the user remains and
// can retry registration through support.
func (vs *VendorService) RegisterVendor(ctx context.Context, user RegisterInput, vendor *models.Vendor, files VendorFiles, us *UserService) (*models.Vendor, *models.User, string, error) {
	user.Role = models.RoleVendor
	if err := models.Validate.Struct(vendor); err != nil {
		return nil, nil, "", fmt.Errorf("%w: %v", models.ErrInvalid, err)
	}
	if vendor.Type == models.VendorVenue && len(vendor.VenueUnits) == 0 {
		return nil, nil, "", fmt.Errorf("%w: a venue vendor needs at least one venue unit", models.ErrInvalid)
	}

	createdUser, token, err := us.Register(ctx, user)
	if err != nil {
		return nil, nil, "", err
	}

	if files.ProfilePhoto != nil {
		urls, err := vs.uploadWithTimeout(ctx, []*multipart.FileHeader{files.ProfilePhoto}, helpers.VendorFolder)
		if err != nil {
			return nil, nil, "", err
		}
		vendor.ProfilePhoto = urls[0]
	}
	if len(files.Portfolio) > 0 {
		urls, err := vs.uploadWithTimeout(ctx, files.Portfolio, helpers.PortfolioFolder)
		if err != nil {
			return nil, nil, "", err
		}
		vendor.Portfolio = urls
	}
	if len(files.VenueImages) > 0 && len(vendor.VenueUnits) > 0 {
		urls, err := vs.uploadWithTimeout(ctx, files.VenueImages, helpers.VenueFolder)
		if err != nil {
			return nil, nil, "", err
		}
		// Venue images arrive as one flat multipart field; they land on the
		// first unit, matching how the registration form submits them.
		vendor.VenueUnits[0].Images = urls
	}

	vendor.UserID = createdUser.ID
	createdVendor, err := vs.vendorRepo.CreateVendor(ctx, vendor)
	if err != nil {
		return nil, nil, "", err
	}

	return createdVendor, createdUser, token, nil
}

func (vs *VendorService) uploadWithTimeout(ctx context.Context, files []*multipart.FileHeader, folder string) ([]string, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	urls, err := vs.uploader.UploadFiles(uploadCtx, files, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload images: %v", err)
	}
	return urls, nil
}

func (vs *VendorService) ListVendors(ctx context.Context, filter models.VendorFilter) ([]*models.Vendor, int64, error) {
	if filter.Type != "" {
		if _, err := models.ParseVendorType(filter.Type); err != nil {
			return nil, 0, fmt.Errorf("%w: unknown vendor type %q", models.ErrInvalid, filter.Type)
		}
	}
	return vs.vendorRepo.ListVendors(ctx, filter)
}

func (vs *VendorService) GetVendorByID(ctx context.Context, id string) (*models.Vendor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vendor ID", models.ErrInvalid)
	}
	return vs.vendorRepo.GetVendorByID(ctx, oid)
}

// UpdateVendor applies whitelisted profile fields after the ownership check:
// the caller must own the vendor record or be an admin.
func (vs *VendorService) UpdateVendor(ctx context.Context, session *helpers.Session, id string, fields map[string]interface{}) (*models.Vendor, error) {
	vendor, err := vs.GetVendorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.IsOwner(vendor.UserID.Hex()) && !session.IsAdmin() {
		return nil, fmt.Errorf("%w: you can only update your own profile", models.ErrForbidden)
	}

	set := make(map[string]interface{})
	for key, value := range fields {
		if stored, ok := vendorMutableFields[key]; ok {
			set[stored] = value
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields provided", models.ErrInvalid)
	}

	return vs.vendorRepo.UpdateVendor(ctx, vendor.ID, set)
}

// UpdateAvailability replaces the vendor's denormalized booked-dates list.
func (vs *VendorService) UpdateAvailability(ctx context.Context, session *helpers.Session, id string, dates []string) (*models.Vendor, error) {
	vendor, err := vs.GetVendorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.IsOwner(vendor.UserID.Hex()) && !session.IsAdmin() {
		return nil, fmt.Errorf("%w: you can only update your own availability", models.ErrForbidden)
	}

	for _, d := range dates {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return nil, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", models.ErrInvalid, d)
		}
	}

	return vs.vendorRepo.SetBookedDates(ctx, vendor.ID, dates)
}

func (vs *VendorService) GetBookedDates(ctx context.Context, id string) ([]string, error) {
	vendor, err := vs.GetVendorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vendor.BookedDates == nil {
		return []string{}, nil
	}
	return vendor.BookedDates, nil
}

// UploadPortfolio pushes images to Cloudinary and appends the resulting URLs
// to the vendor's portfolio, deduplicated.
func (vs *VendorService) UploadPortfolio(ctx context.Context, session *helpers.Session, id string, files []*multipart.FileHeader) (*models.Vendor, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", models.ErrInvalid)
	}

	vendor, err := vs.GetVendorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.IsOwner(vendor.UserID.Hex()) {
		return nil, fmt.Errorf("%w: you can only upload to your own profile", models.ErrForbidden)
	}

	urls, err := vs.uploadWithTimeout(ctx, files, helpers.PortfolioFolder)
	if err != nil {
		return nil, err
	}

	return vs.vendorRepo.AppendPortfolio(ctx, vendor.ID, urls)
}

// VerifyVenueUnit is the admin-only, one-way verification flip for a single
// embedded venue unit.
func (vs *VendorService) VerifyVenueUnit(ctx context.Context, vendorID, venueUnitID string) (*models.Vendor, error) {
	vOID, err := primitive.ObjectIDFromHex(vendorID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vendor ID", models.ErrInvalid)
	}
	uOID, err := primitive.ObjectIDFromHex(venueUnitID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid venue unit ID", models.ErrInvalid)
	}
	return vs.vendorRepo.VerifyVenueUnit(ctx, vOID, uOID)
}
