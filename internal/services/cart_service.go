package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

const (
	// DefaultCheckoutPath is where a successful buy-now sends the shopper.
	DefaultCheckoutPath = "/checkout"
	// DefaultCartMaxRetries bounds the re-reads after a version conflict.
	DefaultCartMaxRetries = 3

	addedMessage = "Successfully Added to Bag"
)

// CartEventPublisher publishes accepted cart changes.
type CartEventPublisher interface {
	PublishCartEvent(event models.CartEvent) error
}

// CartResult describes a successful add-to-cart or buy-now.
type CartResult struct {
	Cart         *models.Cart    `json:"cart"`
	Line         models.CartLine `json:"line"`
	Incremented  bool            `json:"incremented"`
	Confirmation Confirmation    `json:"confirmation"`
	Redirect     string          `json:"redirect,omitempty"`
}

// CartService keeps each device's cart in the cart store.
type CartService struct {
	carts        repositories.CartRepository
	catalog      *CatalogService
	board        *ConfirmationBoard
	publisher    CartEventPublisher
	logger       *zap.Logger
	maxRetries   int
	checkoutPath string
}

// CartOption configures a CartService.
type CartOption func(*CartService)

// WithPublisher publishes a CartEvent after every successful write.
func WithPublisher(p CartEventPublisher) CartOption {
	return func(s *CartService) { s.publisher = p }
}

// WithMaxRetries sets how many times a conflicting write is retried.
func WithMaxRetries(n int) CartOption {
	return func(s *CartService) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithCheckoutPath sets the buy-now redirect target.
func WithCheckoutPath(path string) CartOption {
	return func(s *CartService) {
		if path != "" {
			s.checkoutPath = path
		}
	}
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, catalog *CatalogService, board *ConfirmationBoard, logger *zap.Logger, opts ...CartOption) *CartService {
	s := &CartService{
		carts:        carts,
		catalog:      catalog,
		board:        board,
		logger:       logger,
		maxRetries:   DefaultCartMaxRetries,
		checkoutPath: DefaultCheckoutPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCart returns the cart of deviceID. A device without a stored cart has
// an empty one.
func (s *CartService) GetCart(ctx context.Context, deviceID string) (*models.Cart, error) {
	if deviceID == "" {
		return nil, ErrMissingIdentity
	}

	cart, err := s.carts.GetCart(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repositories.ErrCartNotFound) {
			return &models.Cart{DeviceID: deviceID, Lines: []models.CartLine{}}, nil
		}
		s.logger.Error("Error reading cart", zap.String("device_id", deviceID), zap.Error(err))
		return nil, errors.Wrapf(ErrFetchFailure, "cart of device %q: %v", deviceID, err)
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	return cart, nil
}

// AddToCart adds one unit of product to the cart of deviceID.
func (s *CartService) AddToCart(ctx context.Context, deviceID string, product *models.Product) (*CartResult, error) {
	return s.add(ctx, deviceID, product)
}

// BuyNow adds one unit of product like AddToCart and points the caller to
// the checkout destination.
func (s *CartService) BuyNow(ctx context.Context, deviceID string, product *models.Product) (*CartResult, error) {
	result, err := s.add(ctx, deviceID, product)
	if err != nil {
		return nil, err
	}
	result.Redirect = s.checkoutPath
	return result, nil
}

// AddProduct looks productID up in the catalog and adds it to the cart.
func (s *CartService) AddProduct(ctx context.Context, deviceID, productID string) (*CartResult, error) {
	product, err := s.resolve(ctx, deviceID, productID)
	if err != nil {
		return nil, err
	}
	return s.AddToCart(ctx, deviceID, product)
}

// BuyProduct looks productID up in the catalog and buys it now.
func (s *CartService) BuyProduct(ctx context.Context, deviceID, productID string) (*CartResult, error) {
	product, err := s.resolve(ctx, deviceID, productID)
	if err != nil {
		return nil, err
	}
	return s.BuyNow(ctx, deviceID, product)
}

func (s *CartService) resolve(ctx context.Context, deviceID, productID string) (*models.Product, error) {
	if err := s.checkPreconditions(deviceID, productID); err != nil {
		return nil, err
	}
	return s.catalog.FetchProduct(ctx, productID)
}

func (s *CartService) checkPreconditions(deviceID, productID string) error {
	if deviceID == "" {
		s.logger.Info("No device identity, cart operation skipped")
		return ErrMissingIdentity
	}
	if productID == "" {
		s.logger.Error("Product ID is undefined. Cannot add to cart.", zap.String("device_id", deviceID))
		return ErrMissingProductKey
	}
	return nil
}

func (s *CartService) add(ctx context.Context, deviceID string, product *models.Product) (*CartResult, error) {
	productID := ""
	if product != nil {
		productID = product.ID
	}
	if err := s.checkPreconditions(deviceID, productID); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		current, err := s.GetCart(ctx, deviceID)
		if err != nil {
			return nil, err
		}

		lines, line, incremented := MergeLine(current.Lines, product)
		next := &models.Cart{DeviceID: deviceID, Lines: lines}

		err = s.carts.PutCart(ctx, next, current.Version)
		if err == nil {
			return s.accepted(deviceID, product, next, line, incremented), nil
		}
		if errors.Is(err, repositories.ErrCartVersionConflict) && attempt < s.maxRetries {
			s.logger.Debug("Cart changed concurrently, retrying",
				zap.String("device_id", deviceID), zap.Int("attempt", attempt+1))
			continue
		}

		s.logger.Error("Error adding item to cart",
			zap.String("device_id", deviceID), zap.String("product_id", product.ID), zap.Error(err))
		return nil, errors.Wrapf(ErrWriteFailure, "device %q: %v", deviceID, err)
	}
}

func (s *CartService) accepted(deviceID string, product *models.Product, cart *models.Cart, line models.CartLine, incremented bool) *CartResult {
	confirmation := Confirmation{
		ProductID:   product.ID,
		Title:       product.Title,
		Message:     addedMessage,
		Incremented: incremented,
	}
	if s.board != nil {
		confirmation = s.board.Post(deviceID, confirmation)
	}

	if s.publisher != nil {
		eventType := models.CartEventLineAdded
		if incremented {
			eventType = models.CartEventLineIncremented
		}
		event := models.CartEvent{
			Type:       eventType,
			DeviceID:   deviceID,
			ProductID:  line.ID,
			Quantity:   line.Quantity,
			Price:      line.Price,
			OccurredAt: time.Now(),
		}
		if err := s.publisher.PublishCartEvent(event); err != nil {
			s.logger.Warn("Failed to publish cart event", zap.String("device_id", deviceID), zap.Error(err))
		}
	}

	return &CartResult{
		Cart:         cart,
		Line:         line,
		Incremented:  incremented,
		Confirmation: confirmation,
	}
}

// MergeLine returns a new line list with one more unit of product. An
// existing line keeps the price captured when it was first added; a new line
// takes the product's current price. lines is not modified.
func MergeLine(lines []models.CartLine, product *models.Product) ([]models.CartLine, models.CartLine, bool) {
	merged := make([]models.CartLine, len(lines), len(lines)+1)
	copy(merged, lines)

	for i := range merged {
		if merged[i].ID == product.ID {
			merged[i].Quantity++
			return merged, merged[i], true
		}
	}

	line := models.CartLine{ID: product.ID, Quantity: 1, Price: product.Price}
	return append(merged, line), line, false
}
