package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"menubasket/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.BranchProduct) (*domain.BranchProduct, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, category domain.MenuCategory) (*domain.MenuCategory, error)
}

// Kind identifies which CSV layout a file uses.
type Kind string

const (
	KindMenu       Kind = "menu"
	KindCategories Kind = "categories"
)

// DetectKind peeks at the header row to decide whether a file carries
// menu products or categories.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	idx := headerIndex(headers)
	if _, ok := idx["priceCents"]; ok {
		return KindMenu, nil
	}
	if _, ok := idx["sortOrder"]; ok {
		return KindCategories, nil
	}
	return "", fmt.Errorf("unrecognised CSV headers: %v", headers)
}

// CSVImporter reads menu exports and inserts/updates branch products and
// categories. Product files may carry addon continuation rows: a row with
// an empty product key attaches its addon columns to the preceding product.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	branchID   int64

	categoryIDs map[string]int64
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, branchID int64) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		products:    products,
		categories:  categories,
		branchID:    branchID,
		categoryIDs: make(map[string]int64),
	}
}

type csvRow struct {
	Key         string
	CategoryKey string
	Name        string
	Desc        string
	Cents       int64
	ImageURL    string
	SortOrder   int
	Addons      []domain.BranchProductAddon
}

// Run parses CSV rows and upserts menu entities. The header row decides
// whether the file holds products or categories.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	if _, ok := index["priceCents"]; ok {
		return i.runProducts(ctx, index)
	}
	return i.runCategories(ctx, index)
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseProductRow(record, index)
		if row == nil {
			continue
		}

		if row.Key != "" {
			if current != nil {
				if err := i.saveProduct(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (addons) belong to the current product.
		if current != nil && len(row.Addons) > 0 {
			current.Addons = append(current.Addons, row.Addons...)
		}
	}

	if current != nil {
		if err := i.saveProduct(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (int, error) {
	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		key := pick(record, index, "key")
		name := pick(record, index, "name")
		if key == "" || name == "" {
			continue
		}
		sortOrder, _ := strconv.Atoi(pick(record, index, "sortOrder"))

		saved, err := i.categories.Upsert(ctx, domain.MenuCategory{
			BranchID:  i.branchID,
			Key:       key,
			Name:      name,
			SortOrder: sortOrder,
		})
		if err != nil {
			return imported, fmt.Errorf("upsert category %q: %w", key, err)
		}
		i.categoryIDs[key] = saved.ID
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, row *csvRow) error {
	if row.Key == "" || row.Name == "" || row.Cents <= 0 {
		return fmt.Errorf("invalid product row (missing required fields) for key %q", row.Key)
	}

	p := domain.BranchProduct{
		BranchID:    i.branchID,
		Key:         row.Key,
		Name:        row.Name,
		Description: row.Desc,
		PriceCents:  row.Cents,
		ImageURL:    row.ImageURL,
		Addons:      row.Addons,
	}

	if row.CategoryKey != "" {
		categoryID, err := i.resolveCategory(ctx, row.CategoryKey)
		if err != nil {
			return err
		}
		p.CategoryID = &categoryID
	}

	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	return nil
}

// resolveCategory maps a category key to its id, upserting a bare
// category when the key has not been seen in this run.
func (i *CSVImporter) resolveCategory(ctx context.Context, key string) (int64, error) {
	if id, ok := i.categoryIDs[key]; ok {
		return id, nil
	}
	saved, err := i.categories.Upsert(ctx, domain.MenuCategory{
		BranchID: i.branchID,
		Key:      key,
		Name:     titleFromKey(key),
	})
	if err != nil {
		return 0, fmt.Errorf("upsert category %q: %w", key, err)
	}
	i.categoryIDs[key] = saved.ID
	return saved.ID, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseProductRow(record []string, index map[string]int) *csvRow {
	key := pick(record, index, "key")
	addonKey := pick(record, index, "addon.key")

	if key == "" && addonKey == "" {
		return nil
	}

	var cents int64
	if centStr := pick(record, index, "priceCents"); centStr != "" {
		cents, _ = strconv.ParseInt(centStr, 10, 64)
	}

	row := &csvRow{
		Key:         key,
		CategoryKey: pick(record, index, "category.key"),
		Name:        pick(record, index, "name"),
		Desc:        pick(record, index, "description"),
		Cents:       cents,
		ImageURL:    pick(record, index, "imageUrl"),
	}

	if addonKey != "" {
		addonCents, _ := strconv.ParseInt(pick(record, index, "addon.priceCents"), 10, 64)
		row.Addons = []domain.BranchProductAddon{{
			Key:        addonKey,
			Name:       pick(record, index, "addon.name"),
			PriceCents: addonCents,
		}}
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func titleFromKey(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
