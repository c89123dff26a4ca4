package catalog

import (
	"context"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)
	return NewService(memory.NewStore(), logger.WithField("component", "catalog-test"))
}

func TestCreateAndGetProduct(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), CreateProduct{
		Name:        "bolt",
		PriceMinor:  150,
		Stock:       10,
		Description: "M8 bolt",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateProduct{Name: "", PriceMinor: 0, Stock: -1})
	require.ErrorIs(t, err, domain.ErrProductNameRequired)
	require.ErrorIs(t, err, domain.ErrProductPriceInvalid)
	require.ErrorIs(t, err, domain.ErrProductStockNegative)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateProduct{Name: "bolt", PriceMinor: 100})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateProduct{Name: "bolt", PriceMinor: 200})
	require.ErrorIs(t, err, domain.ErrProductNameTaken)
}

func TestListSortedByName(t *testing.T) {
	svc := newTestService(t)

	for _, name := range []string{"washer", "bolt", "nut"} {
		_, err := svc.Create(context.Background(), CreateProduct{Name: name, PriceMinor: 100})
		require.NoError(t, err)
	}

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	require.Equal(t, "bolt", products[0].Name)
	require.Equal(t, "nut", products[1].Name)
	require.Equal(t, "washer", products[2].Name)
}

func TestUpdatePartial(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), CreateProduct{Name: "bolt", PriceMinor: 100, Stock: 5})
	require.NoError(t, err)

	price := int64(250)
	updated, err := svc.Update(context.Background(), created.ID, domain.ProductUpdate{PriceMinor: &price})
	require.NoError(t, err)
	require.Equal(t, int64(250), updated.PriceMinor)
	require.Equal(t, "bolt", updated.Name)
	require.Equal(t, int64(5), updated.Stock)
}

func TestUpdateEmpty(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), CreateProduct{Name: "bolt", PriceMinor: 100})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, domain.ProductUpdate{})
	require.ErrorIs(t, err, domain.ErrEmptyUpdate)
}

func TestUpdateInvalidResult(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), CreateProduct{Name: "bolt", PriceMinor: 100})
	require.NoError(t, err)

	stock := int64(-1)
	_, err = svc.Update(context.Background(), created.ID, domain.ProductUpdate{Stock: &stock})
	require.ErrorIs(t, err, domain.ErrProductStockNegative)
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(t)

	price := int64(100)
	_, err := svc.Update(context.Background(), "missing", domain.ProductUpdate{PriceMinor: &price})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), CreateProduct{Name: "bolt", PriceMinor: 100})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), domain.ErrProductNotFound)
}
