package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// OffersDocument is the export shape of an offers feed.
type OffersDocument struct {
	LastUpdated string  `json:"lastUpdated" yaml:"lastUpdated"`
	TotalOffers int     `json:"totalOffers" yaml:"totalOffers"`
	Offers      []Offer `json:"offers" yaml:"offers"`
}

// RecipesDocument wraps a recipe list for files that use an envelope.
type RecipesDocument struct {
	Recipes []Recipe `json:"recipes" yaml:"recipes"`
}

// Format selects the decoder for catalog data.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks a format from a file extension; anything that is not
// .yaml/.yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeOffers reads either a bare offer list or an OffersDocument and fills
// in derived fields.
func DecodeOffers(r io.Reader, format Format) ([]Offer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading offers: %w", err)
	}

	var offers []Offer
	if isList(data, format) {
		err = decode(data, format, &offers)
	} else {
		var doc OffersDocument
		err = decode(data, format, &doc)
		offers = doc.Offers
	}
	if err != nil {
		return nil, fmt.Errorf("decoding offers: %w", err)
	}

	for i := range offers {
		fillDerived(&offers[i], i)
	}
	return offers, nil
}

// DecodeRecipes reads either a bare recipe list or a RecipesDocument and
// validates every recipe.
func DecodeRecipes(r io.Reader, format Format) ([]Recipe, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading recipes: %w", err)
	}

	var recipes []Recipe
	if isList(data, format) {
		err = decode(data, format, &recipes)
	} else {
		var doc RecipesDocument
		err = decode(data, format, &doc)
		recipes = doc.Recipes
	}
	if err != nil {
		return nil, fmt.Errorf("decoding recipes: %w", err)
	}

	seen := make(map[string]struct{}, len(recipes))
	var errs []error
	for _, recipe := range recipes {
		if err := recipe.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[recipe.ID]; dup {
			errs = append(errs, fmt.Errorf("recipe %s: duplicate id", recipe.ID))
		}
		seen[recipe.ID] = struct{}{}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid recipes: %w", errors.Join(errs...))
	}
	return recipes, nil
}

// LoadOffers reads an offers file.
func LoadOffers(path string) ([]Offer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening offers: %w", err)
	}
	defer f.Close()
	return DecodeOffers(f, FormatFor(path))
}

// LoadRecipes reads a recipes file.
func LoadRecipes(path string) ([]Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipes: %w", err)
	}
	defer f.Close()
	return DecodeRecipes(f, FormatFor(path))
}

func decode(data []byte, format Format, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if format == FormatYAML {
		return yaml.Unmarshal(data, out)
	}
	return json.Unmarshal(data, out)
}

func isList(data []byte, format Format) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return true
	}
	if format == FormatJSON {
		return trimmed[0] == '['
	}
	return trimmed[0] == '-' || trimmed[0] == '['
}

// fillDerived completes fields the acquisition layer may leave out.
func fillDerived(o *Offer, idx int) {
	if !o.Discount.Present() {
		o.Discount = Percent(DeriveDiscount(o.OriginalPrice, o.OfferPrice))
	}
	if o.ID == "" {
		o.ID = fmt.Sprintf("%s-%d", o.Store, idx+1)
	}
}
