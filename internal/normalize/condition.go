package normalize

import (
	"sort"
	"strings"
)

// Canonical condition buckets. Every listing ends up in exactly one of
// these unless it carries an unrecognized but condition-looking value,
// which passes through verbatim.
const (
	ConditionNew     = "new"
	ConditionUsed    = "used"
	ConditionBroken  = "broken"
	ConditionUnknown = "unknown"
)

// Inputs longer than this are treated as descriptions, not condition values.
const maxConditionLength = 30

// ConditionNormalizer maps free-text, multilingual condition phrases to
// the four canonical buckets. "Like new"-class phrases collapse into
// used; there is no separate like-new bucket.
type ConditionNormalizer struct {
	conditionMappings map[string]string
	fallbackKeys      []string // table keys of length >= 3, longest first
	keywords          []string
}

// NewConditionNormalizer creates a new normalizer instance.
func NewConditionNormalizer() *ConditionNormalizer {
	n := &ConditionNormalizer{
		conditionMappings: map[string]string{
			// canonical values normalize to themselves
			"new":     ConditionNew,
			"used":    ConditionUsed,
			"broken":  ConditionBroken,
			"unknown": ConditionUnknown,

			// new
			"neu":                 ConditionNew,
			"brand new":           ConditionNew,
			"brandneu":            ConditionNew,
			"nagelneu":            ConditionNew,
			"fabrikneu":           ConditionNew,
			"bnib":                ConditionNew,
			"new with tags":       ConditionNew,
			"new in box":          ConditionNew,
			"neu mit etikett":     ConditionNew,
			"ovp":                 ConditionNew,
			"neu ovp":             ConditionNew,
			"neu in ovp":          ConditionNew,
			"originalverpackt":    ConditionNew,
			"unbenutzt":           ConditionNew,
			"ungetragen":          ConditionNew,
			"ungeöffnet":          ConditionNew,
			"unopened":            ConditionNew,
			"unused":              ConditionNew,
			"sealed":              ConditionNew,
			"factory sealed":      ConditionNew,
			"versiegelt":          ConditionNew,
			"werksversiegelt":     ConditionNew,
			"neuf":                ConditionNew,
			"jamais utilisé":      ConditionNew,
			"jamais servi":        ConditionNew,
			"sous blister":        ConditionNew,
			"nuevo":               ConditionNew,
			"a estrenar":          ConditionNew,
			"sin usar":            ConditionNew,
			"nuevo a estrenar":    ConditionNew,
			"nuovo":               ConditionNew,
			"mai usato":           ConditionNew,
			"nieuw":               ConditionNew,
			"nooit gebruikt":      ConditionNew,
			"nytt":                ConditionNew,
			"ny":                  ConditionNew,
			"nowy":                ConditionNew,
			"nové":                ConditionNew,
			"nový":                ConditionNew,

			// used, including the like-new and good/acceptable tiers
			"gebraucht":               ConditionUsed,
			"second hand":             ConditionUsed,
			"secondhand":              ConditionUsed,
			"pre-owned":               ConditionUsed,
			"preowned":                ConditionUsed,
			"occasion":                ConditionUsed,
			"d'occasion":              ConditionUsed,
			"usado":                   ConditionUsed,
			"usato":                   ConditionUsed,
			"gebruikt":                ConditionUsed,
			"begagnad":                ConditionUsed,
			"używany":                 ConditionUsed,
			"uzywany":                 ConditionUsed,
			"použité":                 ConditionUsed,
			"like new":                ConditionUsed,
			"wie neu":                 ConditionUsed,
			"neuwertig":               ConditionUsed,
			"fast neu":                ConditionUsed,
			"fast wie neu":            ConditionUsed,
			"almost new":              ConditionUsed,
			"as new":                  ConditionUsed,
			"mint":                    ConditionUsed,
			"mint condition":          ConditionUsed,
			"comme neuf":              ConditionUsed,
			"como nuevo":              ConditionUsed,
			"come nuovo":              ConditionUsed,
			"zo goed als nieuw":       ConditionUsed,
			"som ny":                  ConditionUsed,
			"jak nowy":                ConditionUsed,
			"sehr gut":                ConditionUsed,
			"sehr gut erhalten":       ConditionUsed,
			"gut erhalten":            ConditionUsed,
			"sehr guter zustand":      ConditionUsed,
			"guter zustand":           ConditionUsed,
			"top zustand":             ConditionUsed,
			"gepflegt":                ConditionUsed,
			"gepflegter zustand":      ConditionUsed,
			"kaum benutzt":            ConditionUsed,
			"kaum gebraucht":          ConditionUsed,
			"wenig benutzt":           ConditionUsed,
			"wenig gebraucht":         ConditionUsed,
			"leichte gebrauchsspuren": ConditionUsed,
			"gebrauchsspuren":         ConditionUsed,
			"normale gebrauchsspuren": ConditionUsed,
			"good":                    ConditionUsed,
			"good condition":          ConditionUsed,
			"very good":               ConditionUsed,
			"very good condition":     ConditionUsed,
			"excellent":               ConditionUsed,
			"excellent condition":     ConditionUsed,
			"bon état":                ConditionUsed,
			"très bon état":           ConditionUsed,
			"état correct":            ConditionUsed,
			"buen estado":             ConditionUsed,
			"muy buen estado":         ConditionUsed,
			"buono stato":             ConditionUsed,
			"ottimo stato":            ConditionUsed,
			"in goede staat":          ConditionUsed,
			"goede staat":             ConditionUsed,
			"bra skick":               ConditionUsed,
			"mycket bra skick":        ConditionUsed,
			"dobrý stav":              ConditionUsed,
			"dobry stan":              ConditionUsed,
			"bardzo dobry stan":       ConditionUsed,
			"acceptable":              ConditionUsed,
			"akzeptabel":              ConditionUsed,
			"okay":                    ConditionUsed,
			"funktioniert einwandfrei": ConditionUsed,
			"voll funktionsfähig":      ConditionUsed,
			"funktionsfähig":           ConditionUsed,
			"fully functional":         ConditionUsed,
			"works fine":               ConditionUsed,
			"working":                  ConditionUsed,
			"funktioniert":             ConditionUsed,
			"getestet":                 ConditionUsed,
			"refurbished":              ConditionUsed,
			"generalüberholt":          ConditionUsed,
			"reconditionné":            ConditionUsed,
			"wiederaufbereitet":        ConditionUsed,

			// broken
			"defekt":                  ConditionBroken,
			"defect":                  ConditionBroken,
			"defective":               ConditionBroken,
			"faulty":                  ConditionBroken,
			"kaputt":                  ConditionBroken,
			"kapot":                   ConditionBroken,
			"beschädigt":              ConditionBroken,
			"damaged":                 ConditionBroken,
			"for parts":               ConditionBroken,
			"for parts or repair":     ConditionBroken,
			"spares or repair":        ConditionBroken,
			"für bastler":             ConditionBroken,
			"an bastler":              ConditionBroken,
			"bastlergerät":            ConditionBroken,
			"für ersatzteile":         ConditionBroken,
			"ersatzteilspender":       ConditionBroken,
			"not working":             ConditionBroken,
			"doesn't work":            ConditionBroken,
			"funktioniert nicht":      ConditionBroken,
			"geht nicht":              ConditionBroken,
			"hors service":            ConditionBroken,
			"pour pièces":             ConditionBroken,
			"averiado":                ConditionBroken,
			"para piezas":             ConditionBroken,
			"no funciona":             ConditionBroken,
			"guasto":                  ConditionBroken,
			"non funziona":            ConditionBroken,
			"per pezzi di ricambio":   ConditionBroken,
			"voor onderdelen":         ConditionBroken,
			"trasig":                  ConditionBroken,
			"uszkodzony":              ConditionBroken,
			"rozbité":                 ConditionBroken,
			"vadný":                   ConditionBroken,
			"wasserschaden":           ConditionBroken,
			"display defekt":          ConditionBroken,
			"displayschaden":          ConditionBroken,
			"akku defekt":             ConditionBroken,
			"totalschaden":            ConditionBroken,
			"broken screen":           ConditionBroken,
			"cracked screen":          ConditionBroken,

			// unknown
			"unbekannt":          ConditionUnknown,
			"n/a":                ConditionUnknown,
			"keine angabe":       ConditionUnknown,
			"siehe beschreibung": ConditionUnknown,
			"see description":    ConditionUnknown,
			"sonstiges":          ConditionUnknown,
		},
		keywords: []string{
			"new", "neu", "neuf", "nuevo", "nuovo", "nieuw",
			"used", "gebraucht", "usado", "usato", "occasion",
			"zustand", "état", "estado", "condition", "skick",
			"mint", "gut", "good", "defekt", "kaputt", "broken",
			"funktionsfähig", "working",
		},
	}

	// Fix the substring-fallback scan order once: longest key first, then
	// lexicographic, so inputs matching several dictionary keys always
	// resolve to the most specific entry.
	for key := range n.conditionMappings {
		if len(key) >= 3 {
			n.fallbackKeys = append(n.fallbackKeys, key)
		}
	}
	sort.Slice(n.fallbackKeys, func(i, j int) bool {
		if len(n.fallbackKeys[i]) != len(n.fallbackKeys[j]) {
			return len(n.fallbackKeys[i]) > len(n.fallbackKeys[j])
		}
		return n.fallbackKeys[i] < n.fallbackKeys[j]
	})

	return n
}

// Normalize maps a raw condition phrase to a canonical bucket. It never
// fails: anything unrecognized degrades to unknown or, when the input
// still looks like a condition value, passes through trimmed and
// lowercased.
func (n *ConditionNormalizer) Normalize(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ConditionUnknown
	}

	if canonical, ok := n.conditionMappings[value]; ok {
		return canonical
	}

	// Compound phrases like "1x vorhanden, gebraucht" carry a dictionary
	// phrase somewhere inside.
	for _, key := range n.fallbackKeys {
		if strings.Contains(value, key) {
			return n.conditionMappings[key]
		}
	}

	if len(value) > maxConditionLength || !n.looksLikeCondition(value) {
		return ConditionUnknown
	}

	return value
}

func (n *ConditionNormalizer) looksLikeCondition(value string) bool {
	for _, keyword := range n.keywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}
	return false
}
