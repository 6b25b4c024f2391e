package product

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Products"

var xlsxColumns = []string{
	"name", "slug", "description", "category", "price", "compareAtPrice", "stock", "colors",
	"sizes", "material", "brand", "collection", "tags", "images", "status", "rating",
	"isOnSale", "isBestSeller", "isNew", "inStock",
}

// ImportRow is one parsed spreadsheet row.
type ImportRow struct {
	Row   int
	Input Input
}

// WriteXLSX renders products into a single-sheet workbook with a header row.
// List cells are comma-separated and colors are written as name:#hex.
func WriteXLSX(products []Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(xlsxColumns))
	for i, col := range xlsxColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			p.Name, p.Slug, p.Description, p.Category, p.Price, optionalFloat(p.CompareAtPrice), p.Stock,
			formatColors(p.Colors), strings.Join(p.Sizes, ", "), p.Material, p.Brand, p.Collection,
			strings.Join(p.Tags, ", "), strings.Join(p.Images, ", "), string(p.Status), optionalFloat(p.Rating),
			p.IsOnSale, p.IsBestSeller, p.IsNew, p.InStock,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadXLSX parses the first sheet of a workbook. Columns are matched by header
// name, case-insensitively; a row that cannot be parsed is reported and skipped.
func ReadXLSX(r io.Reader) ([]ImportRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("workbook is empty")
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, nil, errors.New("header row must contain a name column")
	}

	var (
		out     []ImportRow
		rowErrs []RowError
	)
	for i, cells := range rows[1:] {
		rowNum := i + 2
		get := func(col string) string {
			idx, ok := index[strings.ToLower(col)]
			if !ok || idx >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx])
		}
		if isBlankRow(cells) {
			continue
		}
		in, err := parseRow(get)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		out = append(out, ImportRow{Row: rowNum, Input: in})
	}
	return out, rowErrs, nil
}

func parseRow(get func(string) string) (Input, error) {
	in := Input{
		Name:        get("name"),
		Slug:        get("slug"),
		Description: get("description"),
		Category:    get("category"),
		Colors:      parseColors(get("colors")),
		Sizes:       splitList(get("sizes")),
		Material:    get("material"),
		Brand:       get("brand"),
		Collection:  get("collection"),
		Tags:        splitList(get("tags")),
		Images:      splitList(get("images")),
		Status:      Status(get("status")),
	}

	var err error
	if in.Price, err = parseFloat(get("price"), "price"); err != nil {
		return Input{}, err
	}
	if v := get("compareAtPrice"); v != "" {
		cmp, err := parseFloat(v, "compareAtPrice")
		if err != nil {
			return Input{}, err
		}
		in.CompareAtPrice = &cmp
	}
	if v := get("rating"); v != "" {
		rating, err := parseFloat(v, "rating")
		if err != nil {
			return Input{}, err
		}
		in.Rating = &rating
	}
	if v := get("stock"); v != "" {
		if in.Stock, err = strconv.Atoi(v); err != nil {
			return Input{}, fmt.Errorf("stock: %q is not a whole number", v)
		}
	}
	if in.IsOnSale, err = parseBool(get("isOnSale"), "isOnSale"); err != nil {
		return Input{}, err
	}
	if in.IsBestSeller, err = parseBool(get("isBestSeller"), "isBestSeller"); err != nil {
		return Input{}, err
	}
	if in.IsNew, err = parseBool(get("isNew"), "isNew"); err != nil {
		return Input{}, err
	}
	if v := get("inStock"); v != "" {
		inStock, err := parseBool(v, "inStock")
		if err != nil {
			return Input{}, err
		}
		in.InStock = &inStock
	}
	return in, nil
}

func parseFloat(v, field string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", field, v)
	}
	return f, nil
}

func parseBool(v, field string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false, fmt.Errorf("%s: %q is not true or false", field, v)
	}
	return b, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return cleanList(strings.Split(v, ","))
}

func parseColors(v string) []Color {
	var out []Color
	for _, part := range splitList(v) {
		name, hex, _ := strings.Cut(part, ":")
		out = append(out, Color{Name: strings.TrimSpace(name), Hex: strings.TrimSpace(hex)})
	}
	return out
}

func formatColors(colors []Color) string {
	parts := make([]string, len(colors))
	for i, c := range colors {
		parts[i] = c.Name
		if c.Hex != "" {
			parts[i] += ":" + c.Hex
		}
	}
	return strings.Join(parts, ", ")
}

func optionalFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
