package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionNormalizer_Normalize(t *testing.T) {
	n := NewConditionNormalizer()

	tests := []struct {
		raw  string
		want string
	}{
		// empty and whitespace
		{"", ConditionUnknown},
		{"   ", ConditionUnknown},

		// exact table hits across languages
		{"neu", ConditionNew},
		{"Brandneu", ConditionNew},
		{"OVP", ConditionNew},
		{"neuf", ConditionNew},
		{"nuevo", ConditionNew},
		{"gebraucht", ConditionUsed},
		{"d'occasion", ConditionUsed},
		{"begagnad", ConditionUsed},
		{"sehr gut erhalten", ConditionUsed},
		{"defekt", ConditionBroken},
		{"for parts", ConditionBroken},
		{"pour pièces", ConditionBroken},
		{"funktioniert nicht", ConditionBroken},
		{"keine angabe", ConditionUnknown},

		// like-new tier collapses into used, never a fifth bucket
		{"neuwertig", ConditionUsed},
		{"wie neu", ConditionUsed},
		{"like new", ConditionUsed},
		{"come nuovo", ConditionUsed},
		{"mint", ConditionUsed},

		// substring fallback on compound phrases
		{"1x vorhanden, gebraucht", ConditionUsed},
		{"artikel ist defekt!", ConditionBroken},
		{"neuwertiger zustand", ConditionUsed},

		// garbage rejected as unknown
		{"25 eur", ConditionUnknown},
		{"nur abholung", ConditionUnknown},
		{"bitte lesen sie die gesamte artikelbeschreibung sorgfältig durch", ConditionUnknown},

		// unrecognized but condition-looking values pass through
		{"Zustand: ok", "zustand: ok"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestConditionNormalizer_CanonicalIdempotent(t *testing.T) {
	n := NewConditionNormalizer()

	for _, bucket := range []string{ConditionNew, ConditionUsed, ConditionBroken, ConditionUnknown} {
		assert.Equal(t, bucket, n.Normalize(bucket))
	}
}

func TestConditionNormalizer_OnlyCanonicalBucketsFromTable(t *testing.T) {
	n := NewConditionNormalizer()

	buckets := map[string]struct{}{
		ConditionNew: {}, ConditionUsed: {}, ConditionBroken: {}, ConditionUnknown: {},
	}
	for key, value := range n.conditionMappings {
		_, ok := buckets[value]
		assert.True(t, ok, "table entry %q maps to non-canonical bucket %q", key, value)
	}
}

func TestConditionNormalizer_FallbackOrderIsDeterministic(t *testing.T) {
	n := NewConditionNormalizer()

	for i := 1; i < len(n.fallbackKeys); i++ {
		prev, cur := n.fallbackKeys[i-1], n.fallbackKeys[i]
		longerFirst := len(prev) > len(cur) || (len(prev) == len(cur) && prev < cur)
		assert.True(t, longerFirst, "fallback keys out of order: %q before %q", prev, cur)
		assert.GreaterOrEqual(t, len(cur), 3)
	}

	// Longest-match-first: the specific phrase wins over its fragment.
	assert.Equal(t, ConditionBroken, n.Normalize("leider funktioniert nicht mehr"))
}

func TestConditionNormalizer_LongInputsRejected(t *testing.T) {
	n := NewConditionNormalizer()

	// Over 30 characters without any dictionary phrase inside.
	long := strings.Repeat("x", 31)
	assert.Equal(t, ConditionUnknown, n.Normalize(long))
}
