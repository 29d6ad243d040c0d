package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

type repoSet struct {
	catalog repositories.CatalogRepository
	carts   repositories.CartRepository
}

// backends returns the GORM (in-memory SQLite) and map-backed repositories,
// which must behave the same.
func backends(t *testing.T) map[string]repoSet {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)

	return map[string]repoSet{
		"gorm": {
			catalog: repositories.NewGORMCatalogRepository(db),
			carts:   repositories.NewGORMCartRepository(db),
		},
		"memory": {
			catalog: repositories.NewMockCatalogRepository(),
			carts:   repositories.NewMockCartRepository(),
		},
	}
}

func dress(id, category string, price float64) *models.Product {
	return &models.Product{
		ID:       id,
		Title:    "Dress " + id,
		Price:    price,
		Category: category,
		ColorVariants: []models.ColorVariant{
			{Name: "red", Source: []models.ImageSource{{URL: "https://cdn.example/" + id + "/red-1.jpg"}}},
		},
	}
}

func TestCatalogRepository_GetProduct(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repos.catalog.Upsert(ctx, dress("red-dress", "dresses", 1200)))

			product, err := repos.catalog.GetProduct(ctx, "red-dress")
			require.NoError(t, err)
			assert.Equal(t, "Dress red-dress", product.Title)
			assert.Equal(t, 1200.0, product.Price)
			require.Len(t, product.ColorVariants, 1)
			assert.Equal(t, "https://cdn.example/red-dress/red-1.jpg", product.ColorVariants[0].Source[0].URL)

			_, err = repos.catalog.GetProduct(ctx, "missing")
			assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
		})
	}
}

func TestCatalogRepository_UpsertReplaces(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repos.catalog.Upsert(ctx, dress("red-dress", "dresses", 1200)))
			require.NoError(t, repos.catalog.Upsert(ctx, dress("red-dress", "dresses", 999)))

			product, err := repos.catalog.GetProduct(ctx, "red-dress")
			require.NoError(t, err)
			assert.Equal(t, 999.0, product.Price)
		})
	}
}

func TestCatalogRepository_QueryByCategory(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repos.catalog.Upsert(ctx, dress("red-dress", "dresses", 1200)))
			require.NoError(t, repos.catalog.Upsert(ctx, dress("blue-dress", "dresses", 1100)))
			require.NoError(t, repos.catalog.Upsert(ctx, dress("scarf", "accessories", 300)))

			products, err := repos.catalog.QueryByCategory(ctx, "dresses")
			require.NoError(t, err)

			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.ElementsMatch(t, []string{"red-dress", "blue-dress"}, ids)

			none, err := repos.catalog.QueryByCategory(ctx, "shoes")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestCartRepository_PutAndGet(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repos.carts.GetCart(ctx, "device-x")
			assert.True(t, errors.Is(err, repositories.ErrCartNotFound))

			cart := &models.Cart{
				DeviceID: "device-x",
				Lines:    []models.CartLine{{ID: "red-dress", Quantity: 1, Price: 1200}},
			}
			require.NoError(t, repos.carts.PutCart(ctx, cart, 0))
			assert.Equal(t, int64(1), cart.Version)

			stored, err := repos.carts.GetCart(ctx, "device-x")
			require.NoError(t, err)
			assert.Equal(t, int64(1), stored.Version)
			assert.Equal(t, []models.CartLine{{ID: "red-dress", Quantity: 1, Price: 1200}}, stored.Lines)

			cart.Lines = []models.CartLine{{ID: "red-dress", Quantity: 2, Price: 1200}}
			require.NoError(t, repos.carts.PutCart(ctx, cart, 1))
			assert.Equal(t, int64(2), cart.Version)

			stored, err = repos.carts.GetCart(ctx, "device-x")
			require.NoError(t, err)
			assert.Equal(t, 2, stored.Lines[0].Quantity)
		})
	}
}

func TestCartRepository_VersionConflict(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := &models.Cart{DeviceID: "device-y", Lines: []models.CartLine{{ID: "a", Quantity: 1, Price: 10}}}
			require.NoError(t, repos.carts.PutCart(ctx, first, 0))

			// A second "first write" lost the race.
			late := &models.Cart{DeviceID: "device-y", Lines: []models.CartLine{{ID: "b", Quantity: 1, Price: 20}}}
			err := repos.carts.PutCart(ctx, late, 0)
			assert.True(t, errors.Is(err, repositories.ErrCartVersionConflict))

			// A stale update is rejected too.
			stale := &models.Cart{DeviceID: "device-y", Lines: []models.CartLine{{ID: "a", Quantity: 5, Price: 10}}}
			err = repos.carts.PutCart(ctx, stale, 7)
			assert.True(t, errors.Is(err, repositories.ErrCartVersionConflict))

			stored, err := repos.carts.GetCart(ctx, "device-y")
			require.NoError(t, err)
			assert.Equal(t, []models.CartLine{{ID: "a", Quantity: 1, Price: 10}}, stored.Lines)
		})
	}
}
