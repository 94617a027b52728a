package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/andresuchdata/stockpilot/internal/pipeline"
	"github.com/andresuchdata/stockpilot/internal/repository"
	"github.com/rs/zerolog/log"
)

var ErrUnsupportedFile = errors.New("unsupported product sheet")

type sheetFormat int

const (
	formatUnknown sheetFormat = iota
	formatCSV
	formatXLSX
	formatGoogleSheet
)

func detectFormat(f *File) sheetFormat {
	if f.MimeType == googleSheetMimeType {
		return formatGoogleSheet
	}
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".csv":
		return formatCSV
	case ".xlsx":
		return formatXLSX
	}
	return formatUnknown
}

// IsProductSheet reports whether f can be read as a product sheet.
func IsProductSheet(f *File) bool {
	return detectFormat(f) != formatUnknown
}

// FolderImport summarizes an ImportFolder call.
type FolderImport struct {
	Files    int      `json:"files"`
	Products int      `json:"products"`
	Skipped  []string `json:"skipped,omitempty"`
}

// ProductImporter reads product sheets from Drive, stores them and analyzes them.
type ProductImporter struct {
	source FileSource
	writer repository.ProductWriter
	runner *pipeline.Runner
}

func NewProductImporter(source FileSource, writer repository.ProductWriter, runner *pipeline.Runner) *ProductImporter {
	if runner == nil {
		runner = pipeline.NewRunner(nil, pipeline.DefaultRunnerConfig())
	}
	return &ProductImporter{
		source: source,
		writer: writer,
		runner: runner,
	}
}

// ListSheets lists the product sheets in a folder.
func (i *ProductImporter) ListSheets(ctx context.Context, folderID string) ([]*File, error) {
	files, err := i.source.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	sheets := make([]*File, 0, len(files))
	for _, f := range files {
		if IsProductSheet(f) {
			sheets = append(sheets, f)
		}
	}
	return sheets, nil
}

// LoadProducts downloads a sheet and parses its product records.
func (i *ProductImporter) LoadProducts(ctx context.Context, fileID string) (*File, []domain.ProductRecord, error) {
	file, err := i.source.GetFile(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	var products []domain.ProductRecord
	switch detectFormat(file) {
	case formatCSV:
		products, err = i.streamCSV(func(w io.Writer) error {
			return i.source.DownloadFile(ctx, fileID, w)
		})
	case formatGoogleSheet:
		products, err = i.streamCSV(func(w io.Writer) error {
			return i.source.ExportFile(ctx, fileID, "text/csv", w)
		})
	case formatXLSX:
		var buf bytes.Buffer
		if err = i.source.DownloadFile(ctx, fileID, &buf); err != nil {
			break
		}
		var rows [][]string
		if rows, err = readXLSXRows(&buf); err != nil {
			break
		}
		products, err = repository.ParseProductRows(rows)
	default:
		return file, nil, fmt.Errorf("%s (%s): %w", file.Name, file.MimeType, ErrUnsupportedFile)
	}
	if err != nil {
		return file, nil, fmt.Errorf("load %s: %w", file.Name, err)
	}

	return file, products, nil
}

func (i *ProductImporter) streamCSV(download func(w io.Writer) error) ([]domain.ProductRecord, error) {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(download(pw))
	}()

	products, err := repository.ParseProductsCSV(pr)
	// unblocks the download when parsing stops early
	pr.Close()
	return products, err
}

// Import stores the products of one sheet and returns how many were written.
func (i *ProductImporter) Import(ctx context.Context, fileID string) (int, error) {
	if i.writer == nil {
		return 0, errors.New("product import requires a writable repository")
	}

	file, products, err := i.LoadProducts(ctx, fileID)
	if err != nil {
		return 0, err
	}

	if err := i.writer.UpsertProducts(ctx, products); err != nil {
		return 0, fmt.Errorf("store products from %s: %w", file.Name, err)
	}

	log.Info().Str("file", file.Name).Int("products", len(products)).Msg("drive: products imported")
	return len(products), nil
}

// ImportFolder imports every product sheet in a folder. A sheet that fails to
// load is recorded and skipped; a failing store aborts the import.
func (i *ProductImporter) ImportFolder(ctx context.Context, folderID string) (*FolderImport, error) {
	sheets, err := i.ListSheets(ctx, folderID)
	if err != nil {
		return nil, err
	}

	result := &FolderImport{}
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, products, err := i.LoadProducts(ctx, sheet.ID)
		if err != nil {
			log.Warn().Err(err).Str("file", sheet.Name).Msg("drive: skipping sheet")
			result.Skipped = append(result.Skipped, sheet.Name)
			continue
		}

		if i.writer != nil {
			if err := i.writer.UpsertProducts(ctx, products); err != nil {
				return nil, fmt.Errorf("store products from %s: %w", sheet.Name, err)
			}
		}

		result.Files++
		result.Products += len(products)
	}

	return result, nil
}

// Analyze loads a sheet and analyzes it without storing anything.
func (i *ProductImporter) Analyze(ctx context.Context, fileID string) (*pipeline.RunResult, error) {
	_, products, err := i.LoadProducts(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return i.runner.Run(ctx, products)
}
