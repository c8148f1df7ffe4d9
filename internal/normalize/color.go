package normalize

import "strings"

// ColorNormalizer maps localized color words to one of 16 canonical
// English color names. The table is built once and never mutated, so the
// normalizer is safe for unlimited concurrent readers.
type ColorNormalizer struct {
	colorMappings map[string]string
}

// NewColorNormalizer creates a new normalizer instance.
func NewColorNormalizer() *ColorNormalizer {
	return &ColorNormalizer{
		colorMappings: map[string]string{
			"black":       "Black",
			"schwarz":     "Black",
			"noir":        "Black",
			"noire":       "Black",
			"negro":       "Black",
			"negra":       "Black",
			"nero":        "Black",
			"zwart":       "Black",
			"svart":       "Black",
			"czarny":      "Black",
			"white":       "White",
			"weiß":        "White",
			"weiss":       "White",
			"blanc":       "White",
			"blanche":     "White",
			"blanco":      "White",
			"blanca":      "White",
			"bianco":      "White",
			"wit":         "White",
			"vit":         "White",
			"biały":       "White",
			"gray":        "Gray",
			"grey":        "Gray",
			"grau":        "Gray",
			"gris":        "Gray",
			"grigio":      "Gray",
			"grijs":       "Gray",
			"grå":         "Gray",
			"szary":       "Gray",
			"anthrazit":   "Gray",
			"space gray":  "Gray",
			"space grey":  "Gray",
			"spacegrau":   "Gray",
			"red":         "Red",
			"rot":         "Red",
			"rouge":       "Red",
			"rojo":        "Red",
			"roja":        "Red",
			"rosso":       "Red",
			"rood":        "Red",
			"röd":         "Red",
			"czerwony":    "Red",
			"orange":      "Orange",
			"naranja":     "Orange",
			"arancione":   "Orange",
			"oranje":      "Orange",
			"yellow":      "Yellow",
			"gelb":        "Yellow",
			"jaune":       "Yellow",
			"amarillo":    "Yellow",
			"giallo":      "Yellow",
			"geel":        "Yellow",
			"gul":         "Yellow",
			"green":       "Green",
			"grün":        "Green",
			"gruen":       "Green",
			"vert":        "Green",
			"verde":       "Green",
			"groen":       "Green",
			"grön":        "Green",
			"zielony":     "Green",
			"blue":        "Blue",
			"blau":        "Blue",
			"bleu":        "Blue",
			"azul":        "Blue",
			"blu":         "Blue",
			"blauw":       "Blue",
			"blå":         "Blue",
			"niebieski":   "Blue",
			"navy":        "Blue",
			"dunkelblau":  "Blue",
			"hellblau":    "Blue",
			"purple":      "Purple",
			"lila":        "Purple",
			"violett":     "Purple",
			"violet":      "Purple",
			"morado":      "Purple",
			"viola":       "Purple",
			"paars":       "Purple",
			"purpur":      "Purple",
			"pink":        "Pink",
			"rosa":        "Pink",
			"rose":        "Pink",
			"roze":        "Pink",
			"różowy":      "Pink",
			"brown":       "Brown",
			"braun":       "Brown",
			"marron":      "Brown",
			"marrón":      "Brown",
			"marrone":     "Brown",
			"bruin":       "Brown",
			"brun":        "Brown",
			"beige":       "Beige",
			"creme":       "Beige",
			"cream":       "Beige",
			"sand":        "Beige",
			"gold":        "Gold",
			"golden":      "Gold",
			"oro":         "Gold",
			"dorado":      "Gold",
			"goud":        "Gold",
			"rosegold":    "Gold",
			"rose gold":   "Gold",
			"silver":      "Silver",
			"silber":      "Silver",
			"argent":      "Silver",
			"plata":       "Silver",
			"argento":     "Silver",
			"zilver":      "Silver",
			"multicolor":   "Multicolor",
			"multicolour":  "Multicolor",
			"mehrfarbig":   "Multicolor",
			"bunt":         "Multicolor",
			"multicolore":  "Multicolor",
			"transparent":  "Transparent",
			"clear":        "Transparent",
			"durchsichtig": "Transparent",
			"transparente": "Transparent",
			"trasparente":  "Transparent",
			"transparant":  "Transparent",
			"klar":         "Transparent",
		},
	}
}

// Normalize maps a localized color word to its canonical name. Unknown
// colors pass through trimmed but otherwise unchanged, so dirty values
// stay searchable instead of being discarded.
func (n *ColorNormalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := n.colorMappings[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// IsKnownColor reports whether the value is present in the color table.
func (n *ColorNormalizer) IsKnownColor(raw string) bool {
	_, ok := n.colorMappings[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// GetUnnormalizedColors returns every table key that normalizes to the
// given canonical name, plus the canonical name itself, deduplicated.
// Used to expand a canonical color into its cross-language synonyms for
// search.
func (n *ColorNormalizer) GetUnnormalizedColors(canonicalName string) []string {
	seen := map[string]struct{}{canonicalName: {}}
	colors := []string{canonicalName}

	for key, canonical := range n.colorMappings {
		if !strings.EqualFold(canonical, canonicalName) {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		colors = append(colors, key)
	}

	return colors
}
