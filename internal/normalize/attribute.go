package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AttributeClassifier reclassifies ambiguous attribute key/value pairs
// into semantically correct keys. Marketplaces routinely file storage,
// RAM, battery capacity and screen diagonals all under a "size" key;
// the classifier untangles them by value shape.
type AttributeClassifier struct {
	colors        *ColorNormalizer
	sizeKeys      map[string]struct{}
	storageKeys   map[string]struct{}
	leadingDigits *regexp.Regexp
	digitsOnly    *regexp.Regexp
	clothingSizes map[string]struct{}
	cmSize        *regexp.Regexp
}

// Storage capacities that exist as marketed tiers. Anything ending in gb
// below the RAM cutoff is RAM, anything in this set is storage.
var storageTiers = map[int]struct{}{
	32: {}, 64: {}, 128: {}, 256: {}, 512: {}, 1000: {}, 1024: {},
}

// NewAttributeClassifier creates a new classifier instance.
func NewAttributeClassifier(colors *ColorNormalizer) *AttributeClassifier {
	return &AttributeClassifier{
		colors: colors,
		sizeKeys: map[string]struct{}{
			"size": {}, "größe": {}, "grösse": {}, "groesse": {},
			"taille": {}, "talla": {}, "taglia": {}, "maat": {},
			"storlek": {}, "rozmiar": {}, "velikost": {},
		},
		storageKeys: map[string]struct{}{
			"storage": {}, "storage_size": {}, "ram": {}, "ram_size": {},
		},
		clothingSizes: map[string]struct{}{
			"xs": {}, "s": {}, "m": {}, "l": {}, "xl": {}, "xxl": {},
		},
		leadingDigits: regexp.MustCompile(`^\d+`),
		digitsOnly:    regexp.MustCompile(`^\d+$`),
		cmSize:        regexp.MustCompile(`^\d{2}cm$`),
	}
}

// Classify returns the corrected key/value pair. It never fails and
// makes a single pass: the first matching rule wins.
func (c *AttributeClassifier) Classify(key, value string) (string, string) {
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	trimmed := strings.TrimSpace(value)

	switch {
	case normalizedKey == "color":
		return key, c.colors.Normalize(trimmed)
	case c.isStorageKey(normalizedKey):
		return strings.TrimSuffix(normalizedKey, "_size"), c.normalizeCapacity(trimmed)
	case c.isSizeKey(normalizedKey):
		return c.classifySize(trimmed)
	default:
		return key, trimmed
	}
}

func (c *AttributeClassifier) isStorageKey(key string) bool {
	_, ok := c.storageKeys[key]
	return ok
}

func (c *AttributeClassifier) isSizeKey(key string) bool {
	_, ok := c.sizeKeys[key]
	return ok
}

// classifySize runs the shape cascade over a "size" value. The order
// matters: the clothing-vocabulary rescue must come before the numeric
// rules so that a bare "S" or "42cm" is never mistaken for storage.
func (c *AttributeClassifier) classifySize(value string) (string, string) {
	compact := strings.ReplaceAll(strings.ToLower(value), " ", "")

	// Rule 1: known fixed clothing vocabulary keeps the size key.
	if c.cmSize.MatchString(compact) {
		return "size", value
	}
	if _, ok := c.clothingSizes[compact]; ok && len(compact) <= 3 {
		return "size", value
	}

	// Rule 2: battery capacity.
	if strings.HasSuffix(compact, "mahakku") || strings.HasSuffix(compact, "mah") {
		return "battery", c.leadingDigits.FindString(compact) + "mAh"
	}

	// Rule 3: storage or RAM.
	endsGB := strings.HasSuffix(compact, "gb")
	endsTB := strings.HasSuffix(compact, "tb")
	if endsGB || endsTB || (c.digitsOnly.MatchString(compact) && len(compact) <= 4) {
		digits := c.leadingDigits.FindString(compact)
		if digits != "" {
			n, _ := strconv.Atoi(digits)
			unit := "GB"
			if endsTB {
				unit = "TB"
			}

			if (n <= 16 || n == 24) && endsGB {
				return "ram", fmt.Sprintf("%dGB", n)
			}
			if _, ok := storageTiers[n]; ok {
				if n >= 1000 {
					return "storage", "1TB"
				}
				return "storage", fmt.Sprintf("%d%s", n, unit)
			}
			return "storage", fmt.Sprintf("%d%s", n, unit)
		}
	}

	// Rule 4: screen diagonal.
	lower := strings.ToLower(value)
	if strings.Contains(lower, `"`) || strings.Contains(lower, "zoll") || strings.Contains(lower, "inches") {
		screen := strings.ReplaceAll(lower, "zoll", `"`)
		screen = strings.ReplaceAll(screen, "inches", `"`)
		return "screen_size", strings.ReplaceAll(screen, " ", "")
	}

	// Rule 5: a genuine size after all.
	return "size", value
}

// normalizeCapacity brings storage/RAM values into the <N>GB / <N>TB form.
func (c *AttributeClassifier) normalizeCapacity(value string) string {
	compact := strings.ReplaceAll(strings.ToLower(value), " ", "")
	compact = strings.ReplaceAll(compact, "gigabyte", "gb")
	compact = strings.ReplaceAll(compact, "terabyte", "tb")
	if c.digitsOnly.MatchString(compact) {
		compact += "gb"
	}
	return strings.ToUpper(compact)
}
