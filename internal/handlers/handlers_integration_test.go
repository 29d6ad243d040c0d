package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/identity"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

type testEnv struct {
	app   *fiber.App
	carts repositories.CartRepository
	board *services.ConfirmationBoard
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T, catalogRepo repositories.CatalogRepository) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	if catalogRepo == nil {
		catalogRepo = repositories.NewGORMCatalogRepository(db)
	}
	cartRepo := repositories.NewGORMCartRepository(db)

	log := zap.NewNop()
	catalogService := services.NewCatalogService(catalogRepo, log)
	board := services.NewConfirmationBoard(200 * time.Millisecond)
	t.Cleanup(board.Close)
	cartService := services.NewCartService(cartRepo, catalogService, board, log)
	checkoutService := services.NewCheckoutService(cartService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1", middleware.DeviceIdentity(identity.NewGenerator(99), "deviceId", false, log))
	handlers.NewProductHandler(catalogService, log).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService, board, log).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(checkoutService).RegisterRoutes(apiV1)

	seedProductsForTest(t, catalogService)

	return &testEnv{app: app, carts: cartRepo, board: board}
}

// seedProductsForTest populates the catalog for tests.
func seedProductsForTest(t *testing.T, catalog *services.CatalogService) {
	t.Helper()
	products := []models.Product{
		{
			ID: "red-dress", Title: "Red Dress", Price: 1200, OriginalPrice: 2000, DiscountPercentage: 40, Category: "dresses",
			ColorVariants: []models.ColorVariant{
				{Name: "red", Source: []models.ImageSource{{URL: "A"}, {URL: "B"}}},
				{Name: "black", Source: []models.ImageSource{{URL: "C"}}},
			},
		},
		{ID: "blue-dress", Title: "Blue Dress", Price: 1100, Category: "dresses"},
		{ID: "scarf", Title: "Scarf", Price: 300, Category: "accessories"},
	}
	for i := range products {
		require.NoError(t, catalog.CreateProduct(context.Background(), &products[i]))
	}
}

const testDevice = "0b5a2c1e-3f4d-4a6b-8c7d-9e0f1a2b3c4d"

func request(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "deviceId", Value: testDevice})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestGetProductPage(t *testing.T) {
	env := setupApp(t, nil)

	resp := request(t, env.app, http.MethodGet, "/api/v1/products/red-dress", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page services.ProductPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, "red-dress", page.Product.ID)
	assert.Equal(t, []string{"A", "B", "C"}, page.Product.Images)
	assert.Equal(t, "A", page.Gallery.Main)

	ids := make([]string, 0, len(page.Related))
	for _, p := range page.Related {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"red-dress", "blue-dress"}, ids)
}

func TestGetProductPageNotFound(t *testing.T) {
	env := setupApp(t, nil)

	resp := request(t, env.app, http.MethodGet, "/api/v1/products/nothing-here", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// failingCatalog fails every read.
type failingCatalog struct{}

func (failingCatalog) GetProduct(context.Context, string) (*models.Product, error) {
	return nil, errors.New("firestore unavailable")
}

func (failingCatalog) QueryByCategory(context.Context, string) ([]models.Product, error) {
	return nil, errors.New("firestore unavailable")
}

func (failingCatalog) Upsert(context.Context, *models.Product) error { return nil }

func TestGetProductPageFetchFailure(t *testing.T) {
	env := setupApp(t, failingCatalog{})

	resp := request(t, env.app, http.MethodGet, "/api/v1/products/red-dress", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp = request(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]string{"product_id": "red-dress"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGetByCategory(t *testing.T) {
	env := setupApp(t, nil)

	resp := request(t, env.app, http.MethodGet, "/api/v1/products?category=accessories", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, "scarf", products[0].ID)

	resp = request(t, env.app, http.MethodGet, "/api/v1/products", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGallerySelect(t *testing.T) {
	env := setupApp(t, nil)

	resp := request(t, env.app, http.MethodPost, "/api/v1/gallery/select", map[string]interface{}{
		"images":  []string{"A", "B", "C"},
		"main":    "A",
		"clicked": "B",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var gallery services.Gallery
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&gallery))
	assert.Equal(t, services.Gallery{Main: "B", Images: []string{"B", "A", "C"}}, gallery)

	resp = request(t, env.app, http.MethodPost, "/api/v1/gallery/select", map[string]interface{}{"main": "A"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddToCartTwice(t *testing.T) {
	env := setupApp(t, nil)

	resp := request(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]string{"product_id": "red-dress"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var first services.CartResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))
	assert.Equal(t, []models.CartLine{{ID: "red-dress", Quantity: 1, Price: 1200}}, first.Cart.Lines)
	assert.Equal(t, "Successfully Added to Bag", first.Confirmation.Message)
	assert.Empty(t, first.Redirect)

	resp = request(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]string{"product_id": "red-dress"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	stored, err := env.carts.GetCart(context.Background(), testDevice)
	require.NoError(t, err)
	assert.Equal(t, []models.CartLine{{ID: "red-dress", Quantity: 2, Price: 1200}}, stored.Lines)

	resp = request(t, env.app, http.MethodGet, "/api/v1/cart", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart models.Cart
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cart))
	assert.Equal(t, int64(2), cart.Version)
}

func TestAddToCartMissingProductIsNoOp(t *testing.T) {
	env := setupApp(t, nil)

	resp := request(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]string{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err := env.carts.GetCart(context.Background(), testDevice)
	assert.True(t, errors.Is(err, repositories.ErrCartNotFound))
}

func TestAddToCartUnknownProduct(t *testing.T) {
	env := setupApp(t, nil)

	resp := request(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]string{"product_id": "ghost"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBuyNow(t *testing.T) {
	env := setupApp(t, nil)

	resp := request(t, env.app, http.MethodPost, "/api/v1/cart/buy", map[string]string{"product_id": "scarf"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/checkout", resp.Header.Get("Location"))

	var result services.CartResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "/checkout", result.Redirect)

	resp = request(t, env.app, http.MethodGet, "/api/v1/checkout", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary models.CheckoutSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 1, summary.ItemCount)
	assert.Equal(t, "300", summary.Total.String())
}

func TestConfirmationSelfClears(t *testing.T) {
	env := setupApp(t, nil)

	resp := request(t, env.app, http.MethodGet, "/api/v1/cart/confirmation", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = request(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]string{"product_id": "red-dress"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = request(t, env.app, http.MethodGet, "/api/v1/cart/confirmation", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var confirmation services.Confirmation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&confirmation))
	assert.Equal(t, "Red Dress", confirmation.Title)

	assert.Eventually(t, func() bool {
		resp := request(t, env.app, http.MethodGet, "/api/v1/cart/confirmation", nil)
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 2*time.Second, 25*time.Millisecond)
}

func TestCartWithoutIdentity(t *testing.T) {
	env := setupApp(t, nil)

	// No identity middleware: the device id is empty and cart calls are no-ops.
	app := fiber.New()
	log := zap.NewNop()
	catalog := services.NewCatalogService(repositories.NewMockCatalogRepository(), log)
	carts := services.NewCartService(env.carts, catalog, env.board, log)
	handlers.NewCartHandler(carts, env.board, log).RegisterRoutes(app)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader([]byte(`{"product_id":"red-dress"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/cart", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
