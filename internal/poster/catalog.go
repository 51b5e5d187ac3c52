package poster

import "strings"

// CatalogCategory is one entry of a menu.getCategories reply.
type CatalogCategory struct {
	SourceID  string
	Name      string
	SortOrder int
	Image     string
}

// CatalogProduct is one entry of a menu.getProducts reply. Price is in major units.
type CatalogProduct struct {
	SourceID         string
	CategorySourceID string
	CategoryName     string
	Name             string
	SortOrder        int
	Price            float64
	Image            string
}

// firstPresent returns the first non-null value among keys.
func firstPresent(record map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := record[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func sortOrder(record map[string]any, index int) int {
	if f, ok := toNumber(record["sort_order"]); ok {
		return int(f)
	}
	return index + 1
}

func trimmedString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// ParseCategories reads a category list. Entries without an id or a name are skipped;
// a missing sort_order falls back to the position in the reply.
func ParseCategories(data any) []CatalogCategory {
	var out []CatalogCategory
	for i, entry := range ExtractArray(data, "categories") {
		record, ok := asRecord(entry)
		if !ok {
			continue
		}
		category := CatalogCategory{
			SourceID:  scalarString(firstPresent(record, "category_id", "id")),
			Name:      trimmedString(firstPresent(record, "category_name", "name")),
			SortOrder: sortOrder(record, i),
			Image:     EntityImage(record),
		}
		if category.SourceID == "" || category.Name == "" {
			continue
		}
		out = append(out, category)
	}
	return out
}

// ParseProducts reads a product list, pricing each entry for spotID.
// Entries without an id or a name are skipped.
func ParseProducts(data any, spotID string) []CatalogProduct {
	var out []CatalogProduct
	for i, entry := range ExtractArray(data, "products") {
		record, ok := asRecord(entry)
		if !ok {
			continue
		}
		nested, _ := asRecord(record["category"])
		if nested == nil {
			nested = map[string]any{}
		}

		categorySource := scalarString(firstPresent(record, "category_id", "menu_category_id"))
		if categorySource == "" {
			categorySource = scalarString(firstPresent(nested, "category_id", "id"))
		}
		categoryName := trimmedString(firstPresent(record, "category_name", "menu_category_name"))
		if categoryName == "" {
			categoryName = trimmedString(nested["name"])
		}

		product := CatalogProduct{
			SourceID:         scalarString(firstPresent(record, "product_id", "id")),
			CategorySourceID: categorySource,
			CategoryName:     categoryName,
			Name:             trimmedString(firstPresent(record, "product_name", "name")),
			SortOrder:        sortOrder(record, i),
			Price:            ProductPrice(record, spotID),
			Image:            EntityImage(record),
		}
		if product.SourceID == "" || product.Name == "" {
			continue
		}
		out = append(out, product)
	}
	return out
}
