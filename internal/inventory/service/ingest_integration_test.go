package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/repository"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/service"
	"github.com/cheftrack/cheftrack-backend/pkg/actor"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDBService() *service.InventoryService {
	db := suite.DB
	return service.NewInventoryService(db, service.Repositories{
		Categories: repository.NewCategoryRepository(db),
		Products:   repository.NewProductRepository(db, nil),
		Batches:    repository.NewBatchRepository(db),
		UsageLogs:  repository.NewUsageLogRepository(db),
		Stats:      repository.NewStatsRepository(db),
	}, nil, nil, service.Config{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}, logger.Nop())
}

func scan(barcode, name, category string) string {
	return fmt.Sprintf(`{
		"product": {"barcode": %q, "name": %q, "category": %q, "unit_price": "3.20"},
		"quantity": 2,
		"purchase_date": "2025-06-10",
		"expiry_date": "2025-07-01",
		"supplier": "Market"
	}`, barcode, name, category)
}

func TestIngest_PersistsScansAcrossNewCategories(t *testing.T) {
	testutil.RequireSuite(t, suite)
	suite.Reset(t)

	svc := newDBService()
	user := suite.Fixtures.User(t)
	ctx := actor.WithActor(context.Background(), &actor.Actor{ID: user.ID, Email: user.Email})

	scans := []string{
		scan("1001", "Milk", "Dairy"),
		scan("1001", "Milk", "Dairy"),
		scan("1002", "Yogurt", "Dairy"),
		scan("2001", "Apple", "Produce"),
		scan("2002", "Carrot", "Produce"),
	}
	for _, body := range scans {
		view, err := svc.Ingest(ctx, decodeIngest(t, body))
		require.NoError(t, err)
		assert.Equal(t, user.ID, *view.AddedBy)
	}

	assert.Equal(t, 2, suite.Fixtures.Count(t, "categories"))
	assert.Equal(t, 4, suite.Fixtures.Count(t, "products"))
	assert.Equal(t, len(scans), suite.Fixtures.Count(t, "inventory_batches"))

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalCategories)
	assert.EqualValues(t, len(scans), stats.TotalItems)
	assert.EqualValues(t, 0, stats.ExpiringSoon)
	assert.EqualValues(t, 0, stats.ExpiredItems)
}

func TestIngest_ConcurrentScansShareNewCategories(t *testing.T) {
	testutil.RequireSuite(t, suite)
	suite.Reset(t)

	svc := newDBService()
	user := suite.Fixtures.User(t)
	ctx := actor.WithActor(context.Background(), &actor.Actor{ID: user.ID, Email: user.Email})

	const n = 6
	categories := []string{"Bakery", "Frozen"}
	reqs := make([]*domain.IngestRequest, n)
	for i := range reqs {
		reqs[i] = decodeIngest(t, scan(fmt.Sprintf("30%02d", i), fmt.Sprintf("Item %d", i), categories[i%len(categories)]))
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Ingest(ctx, reqs[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "scan %d", i)
	}

	assert.Equal(t, len(categories), suite.Fixtures.Count(t, "categories"))
	assert.Equal(t, n, suite.Fixtures.Count(t, "products"))
	assert.Equal(t, n, suite.Fixtures.Count(t, "inventory_batches"))

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, len(categories), stats.TotalCategories)
}
