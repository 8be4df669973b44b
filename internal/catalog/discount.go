package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	reOnePlusOne   = regexp.MustCompile(`1\s*\+\s*1`)
	reTwoPlusOne   = regexp.MustCompile(`2\s*\+\s*1`)
	reSecondHalf   = regexp.MustCompile(`(2e|tweede)\s*(voor\s*)?halve\s*prijs`)
	rePercent      = regexp.MustCompile(`(\d{1,3})\s*%`)
	reBareDecimals = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Discount is an offer's discount percentage in 0..100. It decodes from a
// JSON/YAML number or from retailer promotion text such as "31%" or
// "2e halve prijs". Unparsable text decodes as 0.
type Discount struct {
	value   int
	present bool
}

// Percent builds a Discount of n percent, clamped to 0..100.
func Percent(n int) Discount {
	return Discount{value: clampPercent(n), present: true}
}

// Percent returns the discount percentage.
func (d Discount) Percent() int { return d.value }

// Present reports whether the source record carried a discount field.
func (d Discount) Present() bool { return d.present }

// ParseDiscount maps promotion text to a percentage. Multi-buy promotions
// map to their per-unit equivalent: "1+1 gratis" is 50, "2+1 gratis" is 33,
// "2e halve prijs" is 25.
func ParseDiscount(text string) int {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "":
		return 0
	case reOnePlusOne.MatchString(t):
		return 50
	case reTwoPlusOne.MatchString(t):
		return 33
	case reSecondHalf.MatchString(t):
		return 25
	}
	if m := rePercent.FindStringSubmatch(t); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return clampPercent(n)
		}
	}
	if reBareDecimals.MatchString(t) {
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return clampPercent(int(math.Round(f)))
		}
	}
	return 0
}

// DeriveDiscount computes the percentage implied by a price pair.
func DeriveDiscount(original, offer float64) int {
	if original <= 0 || offer < 0 || offer >= original {
		return 0
	}
	return clampPercent(int(math.Round((1 - offer/original) * 100)))
}

func clampPercent(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return n
	}
}

// MarshalJSON encodes the percentage as a number.
func (d Discount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(d.value)), nil
}

// UnmarshalJSON accepts a number, a numeric string or promotion text.
func (d *Discount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Discount{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*d = Percent(0)
			return nil
		}
		*d = Percent(ParseDiscount(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*d = Percent(0)
		return nil
	}
	*d = Percent(int(math.Round(f)))
	return nil
}

// MarshalYAML encodes the percentage as a number.
func (d Discount) MarshalYAML() (any, error) {
	return d.value, nil
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (d *Discount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		*d = Discount{}
		return nil
	}
	*d = Percent(ParseDiscount(node.Value))
	return nil
}
