package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/event-oh/server/internal/config"
	"github.com/event-oh/server/internal/helpers"
	"github.com/event-oh/server/internal/lock"
	"github.com/event-oh/server/internal/models"
	"github.com/event-oh/server/internal/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	MongoDBClient *mongo.Client
	RedisClient   *redis.Client

	UserService    *services.UserService
	VendorService  *services.VendorService
	BookingService *services.BookingService
	PaymentService *services.PaymentService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
) *Container {
	// Initialize repositories
	repo := models.MongodbNewRepo(mongoDBClient)
	locker := lock.NewRedisLocker(redisClient, lock.DefaultTTL)

	userService := services.NewUserService(repo, cfg.JWTSecret, cfg.TokenTTL)
	vendorService := services.NewVendorService(repo, repo, helpers.NewCloudinaryUploader(cld))
	bookingService := services.NewBookingService(repo, repo, repo, locker, logger)
	paymentService := services.NewPaymentService(repo, cfg.StripeWebhookSecret, cfg.StripeCurrency, cfg.FrontendURL, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Cloudinary:     cld,
		MongoDBClient:  mongoDBClient,
		RedisClient:    redisClient,
		UserService:    userService,
		VendorService:  vendorService,
		BookingService: bookingService,
		PaymentService: paymentService,
	}
}
