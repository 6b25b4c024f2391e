package product

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	base := Product{
		ID: "base", Category: "tops", Price: 100,
		Colors:   []Color{{Name: "Black"}, {Name: "White"}},
		Sizes:    []string{"S", "M", "L"},
		Material: "Cotton", Brand: "NOWIHT",
	}
	candidate := Product{
		ID: "cand", Category: "Tops", Price: 110,
		Colors:   []Color{{Name: "black"}},
		Sizes:    []string{"M", "L"},
		Material: "Organic cotton", Brand: "nowiht",
	}

	assert.InDelta(t, 84, Similarity(base, candidate), 1e-9)
	assert.InDelta(t, 79, Similarity(candidate, base), 1e-9, "material containment is one-directional")
}

func TestSimilarity_Caps(t *testing.T) {
	colors := []Color{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	sizes := []string{"XS", "S", "M", "L", "XL", "XXL"}
	base := Product{Price: 1000, Colors: colors, Sizes: sizes, IsOnSale: true}
	candidate := Product{Price: 5000, Colors: colors, Sizes: sizes}

	assert.InDelta(t, 25, Similarity(base, candidate), 1e-9)
}

func TestSimilarity_PriceBand(t *testing.T) {
	base := Product{Price: 100, IsOnSale: true}
	assert.InDelta(t, 25, Similarity(base, Product{Price: 80}), 1e-9)
	assert.InDelta(t, 25, Similarity(base, Product{Price: 120}), 1e-9)
	assert.InDelta(t, 0, Similarity(base, Product{Price: 121}), 1e-9)
	assert.InDelta(t, 0, Similarity(base, Product{Price: 79}), 1e-9)
}

func TestRelatedProducts(t *testing.T) {
	base := Product{ID: "base", Category: "hoodies", Price: 1000}
	catalog := []Product{base}
	for i := 0; i < 10; i++ {
		catalog = append(catalog, Product{ID: fmt.Sprintf("other-%d", i), Category: "shirts", Price: 10})
	}
	catalog = append(catalog, Product{ID: "match", Category: "hoodies", Price: 1000})

	related := RelatedProducts(base, catalog, 0)
	require.Len(t, related, DefaultRelatedLimit)
	assert.Equal(t, "match", related[0].ID)
	assert.Equal(t, "other-0", related[1].ID, "ties keep catalog order")
	for _, p := range related {
		assert.NotEqual(t, "base", p.ID)
	}

	assert.Len(t, RelatedProducts(base, catalog, 3), 3)
	assert.Empty(t, RelatedProducts(base, []Product{base}, 5))
}

func TestYouMayAlsoLike(t *testing.T) {
	hoodie := Product{ID: "hoodie", Category: "hoodies", Price: 1000}
	tee := Product{ID: "tee", Category: "t-shirts", Price: 300}
	catalog := []Product{
		hoodie, tee,
		{ID: "quiet-pants", Category: "pants", Price: 50},
		{ID: "loud-pants", Category: "pants", Price: 50, SoldCount: 100},
		{ID: "zip-hoodie", Category: "hoodies", Price: 1100},
		{ID: "long-tee", Category: "t-shirts", Price: 2000},
	}

	got := YouMayAlsoLike([]Product{hoodie, tee}, catalog, 4)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"zip-hoodie", "long-tee", "loud-pants", "quiet-pants"}, ids(got))

	popular := YouMayAlsoLike(nil, catalog, 1)
	assert.Equal(t, "loud-pants", popular[0].ID, "without bases popularity decides")
}
