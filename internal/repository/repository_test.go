package repository

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `SKU,Shop,Product Name,Price,Stock,Incoming Stock
test-001,shop-1,Lip Tint,"1,250.50",20,0
test-002,shop-2,Cushion,,0,4

sku-0012,shop-1,Sheet Mask,15,5,
`

func TestParseProductsCSV(t *testing.T) {
	products, err := ParseProductsCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "test-001", products[0].ID)
	assert.Equal(t, "shop-1", products[0].Scope)
	assert.Equal(t, "Lip Tint", products[0].Name)
	require.NotNil(t, products[0].Price)
	assert.Equal(t, "1250.5", products[0].Price.String())
	assert.Equal(t, 20, products[0].Quantity)

	assert.Nil(t, products[1].Price)
	assert.Equal(t, 4, products[1].IncomingStock)
	assert.Equal(t, 0, products[2].IncomingStock)
}

func TestParseProductsCSV_Errors(t *testing.T) {
	_, err := ParseProductsCSV(strings.NewReader("name,price\nfoo,1\n"))
	assert.Error(t, err)

	_, err = ParseProductsCSV(strings.NewReader("id,quantity\nfoo,many\n"))
	assert.ErrorContains(t, err, "invalid quantity")
}

func TestParseProductsCSV_MalformedPriceUsesDefault(t *testing.T) {
	products, err := ParseProductsCSV(strings.NewReader("id,name,price,quantity\nsku-1,Tint,abc,4\nsku-2,Toner,12.5,1\n"))
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "sku-1", products[0].ID)
	assert.Nil(t, products[0].Price)
	assert.Equal(t, 4, products[0].Quantity)
	require.NotNil(t, products[1].Price)
	assert.Equal(t, "12.5", products[1].Price.String())

	rows, err := ParseProductRows([][]string{{"id", "harga", "stok"}, {"sku-3", "n/a", "2"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Price)
}

func TestParseProductRows(t *testing.T) {
	rows := [][]string{
		{"ID", "Nama", "Harga", "Stok", "Sedang PO"},
		{"sku-0001", "Toner", "35000", "12"},
		{"", "blank id is skipped"},
		{"sku-0002", "Serum", "", "0", "6"},
	}

	products, err := ParseProductRows(rows)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Toner", products[0].Name)
	assert.Equal(t, 12, products[0].Quantity)
	assert.Equal(t, 0, products[0].IncomingStock)
	assert.Nil(t, products[1].Price)
	assert.Equal(t, 6, products[1].IncomingStock)

	_, err = ParseProductRows(nil)
	assert.ErrorContains(t, err, "header")
}

func TestWriteProductsCSV_RoundTrip(t *testing.T) {
	products, err := ParseProductsCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteProductsCSV(&buf, products))

	again, err := ParseProductsCSV(&buf)
	require.NoError(t, err)
	require.Len(t, again, len(products))
	assert.Equal(t, products[2].Name, again[2].Name)
	assert.True(t, products[0].Price.Equal(*again[0].Price))
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository([]domain.ProductRecord{
		{ID: "a", Scope: "shop-1", Quantity: 1},
		{ID: "b", Scope: "shop-2", Quantity: 2},
		{ID: "c", Scope: "shop-1", Quantity: 3},
	})

	all, err := repo.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	shop1, err := repo.ListProducts(ctx, "shop-1")
	require.NoError(t, err)
	require.Len(t, shop1, 2)
	assert.Equal(t, "c", shop1[1].ID)

	_, err = repo.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	created, err := repo.CreateRestockRequests(ctx, []domain.RestockRequest{{ProductID: "a", Quantity: 12}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, int64(1), created[0].ID)

	p, err := repo.GetProduct(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 12, p.IncomingStock)
	assert.Len(t, repo.RestockRequests(), 1)

	_, err = repo.CreateRestockRequests(ctx, []domain.RestockRequest{{ProductID: "b", Quantity: 1}, {ProductID: "zzz", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	p, _ = repo.GetProduct(ctx, "b")
	assert.Equal(t, 0, p.IncomingStock)
}

func TestNewMemoryRepository_DuplicateIDs(t *testing.T) {
	repo := NewMemoryRepository([]domain.ProductRecord{
		{ID: "sku-2", Quantity: 1},
		{ID: "sku-1", Quantity: 3},
		{ID: "sku-2", Quantity: 9},
	})

	products, err := repo.ListProducts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "sku-2", products[0].ID)
	assert.Equal(t, 9, products[0].Quantity)
	assert.Equal(t, "sku-1", products[1].ID)
}
