package poster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategories(t *testing.T) {
	categories := ParseCategories(loadFixture(t, "categories_response.json"))
	require.Len(t, categories, 2)
	assert.Equal(t, CatalogCategory{SourceID: "1", Name: "Супы", SortOrder: 2, Image: "https://joinposter.com/upload/pos/cat1.png"}, categories[0])
	assert.Equal(t, CatalogCategory{SourceID: "2", Name: "Плов", SortOrder: 2, Image: "https://joinposter.com/upload/pos/cat2.jpg"}, categories[1])

	nested := ParseCategories(loadFixture(t, "categories_nested.json"))
	require.Len(t, nested, 1)
	assert.Equal(t, "3", nested[0].SourceID)
	assert.Equal(t, "Напитки", nested[0].Name)
	assert.Equal(t, 1, nested[0].SortOrder)

	assert.Empty(t, ParseCategories(loadFixture(t, "error_string.json")))
}

func TestParseProducts(t *testing.T) {
	products := ParseProducts(loadFixture(t, "products_response.json"), "1")
	require.Len(t, products, 4)

	assert.Equal(t, "42", products[0].SourceID)
	assert.Equal(t, "1", products[0].CategorySourceID)
	assert.Equal(t, 25000.0, products[0].Price)
	assert.Equal(t, "https://cdn.example.com/lagman.jpg", products[0].Image)
	assert.Equal(t, 1, products[0].SortOrder)

	assert.Empty(t, products[1].CategorySourceID)
	assert.Equal(t, "супы", products[1].CategoryName)
	assert.Equal(t, 18000.0, products[1].Price)
	assert.Equal(t, "https://joinposter.com/upload/shurpa_t.jpg", products[1].Image)

	assert.Equal(t, 5000.0, products[2].Price)
	assert.Equal(t, 0.0, products[3].Price)
	assert.Equal(t, 4, products[3].SortOrder)
}

func TestParseProductsNestedCategory(t *testing.T) {
	data := map[string]any{"response": []any{
		map[string]any{"id": "9", "name": " Чучвара ", "category": map[string]any{"id": "5", "name": "Горячее"}},
		map[string]any{"product_id": "10", "product_name": ""},
	}}
	products := ParseProducts(data, "")
	require.Len(t, products, 1)
	assert.Equal(t, "9", products[0].SourceID)
	assert.Equal(t, "Чучвара", products[0].Name)
	assert.Equal(t, "5", products[0].CategorySourceID)
	assert.Equal(t, "Горячее", products[0].CategoryName)
}
