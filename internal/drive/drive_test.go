package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/stockpilot/internal/pipeline"
	"github.com/andresuchdata/stockpilot/internal/repository"
	"github.com/andresuchdata/stockpilot/internal/stock_health"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const productsCSV = `id,scope,name,price,quantity,incoming_stock
test-001,shop-a,Widget,50,10,0
test-002,shop-a,Gadget,50,20,0
`

type fakeSource struct {
	files    map[string]*File
	contents map[string][]byte
	folders  map[string]string
}

func (s *fakeSource) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "broken" {
		return nil, errors.New("drive unavailable")
	}
	files := make([]*File, 0, len(s.files))
	for _, id := range []string{"csv-1", "xlsx-1", "gsheet-1", "pdf-1", "bad-1"} {
		if f, ok := s.files[id]; ok {
			files = append(files, f)
		}
	}
	return files, nil
}

func (s *fakeSource) GetFile(ctx context.Context, fileID string) (*File, error) {
	f, ok := s.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	return f, nil
}

func (s *fakeSource) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	_, err := w.Write(s.contents[fileID])
	return err
}

func (s *fakeSource) ExportFile(ctx context.Context, fileID, mimeType string, w io.Writer) error {
	if mimeType != "text/csv" {
		return fmt.Errorf("unexpected export type %s", mimeType)
	}
	return s.DownloadFile(ctx, fileID, w)
}

func (s *fakeSource) FindFolderByPath(ctx context.Context, path string) (string, error) {
	id, ok := s.folders[path]
	if !ok {
		return "", fmt.Errorf("folder not found: %s", path)
	}
	return id, nil
}

func buildXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"SKU", "Shop", "Nama", "Harga", "Stok"},
		{"sku-0004", "shop-b", "Sprocket", 50, 0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newFakeSource(t *testing.T) *fakeSource {
	return &fakeSource{
		files: map[string]*File{
			"csv-1":    {ID: "csv-1", Name: "products.CSV", MimeType: "text/csv"},
			"xlsx-1":   {ID: "xlsx-1", Name: "stock.xlsx", MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
			"gsheet-1": {ID: "gsheet-1", Name: "Live stock", MimeType: googleSheetMimeType},
			"pdf-1":    {ID: "pdf-1", Name: "invoice.pdf", MimeType: "application/pdf"},
			"bad-1":    {ID: "bad-1", Name: "broken.csv", MimeType: "text/csv"},
		},
		contents: map[string][]byte{
			"csv-1":    []byte(productsCSV),
			"xlsx-1":   buildXLSX(t),
			"gsheet-1": []byte("id,quantity\nsku-0012,5\n"),
			"bad-1":    []byte("name,price\nfoo,1\n"),
		},
		folders: map[string]string{"inventory/daily": "folder-1"},
	}
}

func newTestImporter(t *testing.T) (*ProductImporter, *fakeSource, *repository.MemoryRepository) {
	t.Helper()
	source := newFakeSource(t)
	repo := repository.NewMemoryRepository(nil)
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	analyzer := stock_health.NewAnalyzer(stock_health.WithClock(func() time.Time { return day }))
	runner := pipeline.NewRunner(analyzer, pipeline.DefaultRunnerConfig())
	return NewProductImporter(source, repo, runner), source, repo
}

func TestLoadProducts_Formats(t *testing.T) {
	importer, _, _ := newTestImporter(t)
	ctx := context.Background()

	_, products, err := importer.LoadProducts(ctx, "csv-1")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "test-001", products[0].ID)

	_, products, err = importer.LoadProducts(ctx, "xlsx-1")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "sku-0004", products[0].ID)
	assert.Equal(t, "shop-b", products[0].Scope)
	require.NotNil(t, products[0].Price)
	assert.Equal(t, "50", products[0].Price.String())

	_, products, err = importer.LoadProducts(ctx, "gsheet-1")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 5, products[0].Quantity)

	_, _, err = importer.LoadProducts(ctx, "pdf-1")
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, _, err = importer.LoadProducts(ctx, "bad-1")
	assert.ErrorContains(t, err, "id column")
}

func TestImportAndFolder(t *testing.T) {
	importer, _, repo := newTestImporter(t)
	ctx := context.Background()

	count, err := importer.Import(ctx, "csv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := repo.ListProducts(ctx, "shop-a")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	result, err := importer.ImportFolder(ctx, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Files)
	assert.Equal(t, 4, result.Products)
	assert.Equal(t, []string{"broken.csv"}, result.Skipped)

	all, err := repo.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = NewProductImporter(newFakeSource(t), nil, nil).Import(ctx, "csv-1")
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	importer, _, _ := newTestImporter(t)

	result, err := importer.Analyze(context.Background(), "csv-1")
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "test-001", result.Items[0].ID)
	assert.Equal(t, "REORDER", string(result.Items[0].Status))
	assert.Equal(t, "OPTIMAL", string(result.Items[1].Status))
}

func newTestRouter(t *testing.T) *mux.Router {
	importer, source, _ := newTestImporter(t)
	router := mux.NewRouter()
	NewHandler(source, importer, "folder-1").RegisterRoutes(router)
	return router
}

func serve(router *mux.Router, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandler_ListFiles(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/drive/files?path=inventory/daily")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Files []File `json:"files"`
		Total int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Total)

	rec = serve(router, http.MethodGet, "/drive/files")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Total)

	rec = serve(router, http.MethodGet, "/drive/files?path=missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodGet, "/drive/files?folderId=broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_AnalyzeFile(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/drive/files/csv-1/analysis")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte(`"date":"2024-01-15"`)))
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte(`"total":2`)))

	rec = serve(router, http.MethodGet, "/drive/files/pdf-1/analysis")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandler_Ingest(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodPost, "/drive/files/xlsx-1/ingest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","products":1}`, rec.Body.String())

	rec = serve(router, http.MethodPost, "/drive/folders/folder-1/ingest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":3,"products":4,"skipped":["broken.csv"]}`, rec.Body.String())
}
