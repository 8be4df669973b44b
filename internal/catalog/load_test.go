package catalog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dealchef/internal/catalog"
)

const offersEnvelope = `{
  "lastUpdated": "2025-03-03T06:00:00Z",
  "totalOffers": 2,
  "offers": [
    {"store": "Albert Heijn", "productName": "Kipfilet", "originalPrice": 7.49, "offerPrice": 4.99,
     "category": "vlees", "validFrom": "2025-03-03", "validUntil": "2025-03-09"},
    {"id": "j-1", "store": "jumbo", "productName": "Pasta", "originalPrice": 1.50, "offerPrice": 0.75,
     "discountPercentage": "1+1 gratis", "category": "pasta-rijst"}
  ]
}`

func TestDecodeOffers_EnvelopeDerivesFields(t *testing.T) {
	offers, err := catalog.DecodeOffers(strings.NewReader(offersEnvelope), catalog.FormatJSON)
	require.NoError(t, err)
	require.Len(t, offers, 2)

	assert.Equal(t, "albert-heijn-1", offers[0].ID)
	assert.Equal(t, catalog.AlbertHeijn, offers[0].Store)
	assert.Equal(t, 33, offers[0].Discount.Percent())
	assert.Equal(t, "2025-03-09", offers[0].ValidUntil.String())

	assert.Equal(t, "j-1", offers[1].ID)
	assert.Equal(t, 50, offers[1].Discount.Percent())
	assert.True(t, offers[1].ValidUntil.IsZero())
}

func TestDecodeOffers_BareList(t *testing.T) {
	offers, err := catalog.DecodeOffers(
		strings.NewReader(`[{"id":"x","store":"lidl","productName":"Ui","originalPrice":1,"offerPrice":1,"discountPercentage":"onbekend"}]`),
		catalog.FormatJSON,
	)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, 0, offers[0].Discount.Percent())
	assert.True(t, offers[0].Discount.Present())
}

func TestDecodeOffers_YAML(t *testing.T) {
	doc := `
- id: plus-7
  store: plus
  productName: Rookworst
  originalPrice: 2.99
  offerPrice: 1.99
  discountPercentage: 33%
  category: vlees
`
	offers, err := catalog.DecodeOffers(strings.NewReader(doc), catalog.FormatYAML)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, catalog.Plus, offers[0].Store)
	assert.Equal(t, 33, offers[0].Discount.Percent())
}

func TestDecodeOffers_EmptyInput(t *testing.T) {
	offers, err := catalog.DecodeOffers(strings.NewReader("  "), catalog.FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestDecodeOffers_Malformed(t *testing.T) {
	_, err := catalog.DecodeOffers(strings.NewReader(`{"offers": [`), catalog.FormatJSON)
	assert.ErrorContains(t, err, "decoding offers")
}

func TestDecodeRecipes_ValidatesAndRejectsDuplicates(t *testing.T) {
	doc := `{"recipes": [
	  {"id": "a", "name": "Chili", "servings": 4, "ingredients": [{"name": "gehakt", "amount": 500, "unit": "g"}]},
	  {"id": "a", "name": "Chili again", "servings": 4},
	  {"id": "b", "name": "", "servings": 2},
	  {"id": "c", "name": "Soep", "servings": 0}
	]}`
	_, err := catalog.DecodeRecipes(strings.NewReader(doc), catalog.FormatJSON)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "recipe a: duplicate id")
	assert.Contains(t, msg, "recipe b: name is empty")
	assert.Contains(t, msg, "recipe c: servings must be positive")
}

func TestLoadRecipes_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.yml")
	doc := `
recipes:
  - id: stamppot
    name: Boerenkoolstamppot
    servings: 4
    batchCookingScore: 5
    freezerFriendly: true
    tags: [winter, hollands]
    ingredients:
      - {name: boerenkool, amount: 500, unit: g, category: groenten}
      - {name: rookworst, amount: 1, unit: stuk, category: vlees}
      - {name: zout, amount: 1, unit: tl, isPantryStaple: true}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	recipes, err := catalog.LoadRecipes(path)
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	r := recipes[0]
	assert.Equal(t, "Boerenkoolstamppot", r.Name)
	assert.True(t, r.FreezerFriendly)
	assert.True(t, r.HasTag("Hollands"))
	require.Len(t, r.Ingredients, 3)
	assert.True(t, r.Ingredients[2].IsPantryStaple)
}

func TestLoadOffers_MissingFile(t *testing.T) {
	_, err := catalog.LoadOffers(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "opening offers")
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, catalog.FormatYAML, catalog.FormatFor("a/b.YAML"))
	assert.Equal(t, catalog.FormatYAML, catalog.FormatFor("x.yml"))
	assert.Equal(t, catalog.FormatJSON, catalog.FormatFor("x.json"))
	assert.Equal(t, catalog.FormatJSON, catalog.FormatFor("feed"))
}
