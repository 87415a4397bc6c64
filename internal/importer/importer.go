package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// Kind names the entity a CSV file carries.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, category domain.Category) (*domain.Category, error)
}

// CSVImporter reads catalogue exports and upserts them by application id, so
// ids stay stable across export and re-import.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	now        func() time.Time
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		now:        time.Now,
	}
}

// DetectKind inspects the header row: a price column means products.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["price"]; ok {
		return KindProducts, nil
	}
	if _, ok := index["name"]; ok {
		return KindCategories, nil
	}
	return "", errors.New("unrecognised CSV header")
}

type productRow struct {
	ID          string
	Name        string
	Description string
	Price       string
	CategoryID  string
	ImgURL      string
	Variants    []domain.Variant
	line        int
}

// Run imports every row and returns the number of entities written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["price"]; ok {
		return i.runProducts(ctx, index)
	}
	return i.runCategories(ctx, index)
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	if i.products == nil {
		return 0, errors.New("product writer not configured")
	}
	var (
		current  *productRow
		imported int
		line     = 1
	)
	for {
		record, err := i.reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		name := pick(record, index, "name")
		variantName := pick(record, index, "variant.name")
		if name != "" {
			if current != nil {
				if err := i.saveProduct(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = &productRow{
				ID:          pick(record, index, "id"),
				Name:        name,
				Description: pick(record, index, "description"),
				Price:       pick(record, index, "price"),
				CategoryID:  pick(record, index, "categoryId"),
				ImgURL:      pick(record, index, "imgUrl"),
				line:        line,
			}
		}
		if variantName == "" {
			continue
		}
		// Variant rows without a name continue the current product.
		if current == nil {
			return imported, fmt.Errorf("row %d: variant without product", line)
		}
		cents, err := domain.ParseCents(pick(record, index, "variant.price"))
		if err != nil {
			return imported, fmt.Errorf("row %d: variant %q: %w", line, variantName, err)
		}
		current.Variants = append(current.Variants, domain.Variant{Name: variantName, PriceCents: cents})
	}
	if current != nil {
		if err := i.saveProduct(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, row *productRow) error {
	id, err := stableID(row.ID)
	if err != nil {
		return fmt.Errorf("row %d: %w", row.line, err)
	}
	p := domain.Product{
		ID:          id,
		Name:        row.Name,
		Description: row.Description,
		CategoryID:  row.CategoryID,
		ImgURL:      row.ImgURL,
		Variants:    row.Variants,
		UpdatedAt:   i.now().UTC(),
	}
	if p.HasVariants() {
		p.PriceCents = p.DisplayPriceCents()
	} else if p.PriceCents, err = domain.ParseCents(row.Price); err != nil {
		return fmt.Errorf("row %d: product %q: %w", row.line, row.Name, err)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("row %d: product %q: %w", row.line, row.Name, err)
	}
	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Name, err)
	}
	return nil
}

func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (int, error) {
	if i.categories == nil {
		return 0, errors.New("category writer not configured")
	}
	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		name := pick(record, index, "name")
		if name == "" {
			continue
		}
		id, err := stableID(pick(record, index, "id"))
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		c := domain.Category{
			ID:          id,
			Name:        name,
			Description: pick(record, index, "description"),
			UpdatedAt:   i.now().UTC(),
		}
		if _, err := i.categories.Upsert(ctx, c); err != nil {
			return imported, fmt.Errorf("upsert category %q: %w", name, err)
		}
		imported++
	}
	return imported, nil
}

// stableID keeps a valid exported id and mints one for new rows.
func stableID(raw string) (string, error) {
	if raw == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid id %q", raw)
	}
	return id.String(), nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
