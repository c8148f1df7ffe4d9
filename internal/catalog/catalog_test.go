package catalog

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `{
	"version": "2024-11",
	"defaultLanguage": "de",
	"categories": [
		{
			"slug": "electronics",
			"label": "Elektronik",
			"attributeExtractionPrompt": "Extract brand, model and storage capacity.",
			"attributes": {"brand": "Apple", "model": "iPhone 13"},
			"subCategories": [
				{
					"slug": "netzwerk",
					"label": "Network",
					"attributeExtractionPrompt": "Extract port count and wifi standard.",
					"attributes": {"ports": "8", "standard": "wifi 6"}
				},
				{
					"slug": "smartphones",
					"label": "Smartphones",
					"subCategories": [
						{"slug": "smartphone-zubehoer", "label": "Zubehör"}
					]
				}
			]
		},
		{
			"slug": "fashion",
			"label": "Mode",
			"subCategories": [
				{"slug": "shoes", "label": "Schuhe"}
			]
		}
	]
}`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load([]byte(testDocument))
	require.NoError(t, err)
	return c
}

func TestLoad(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, "2024-11", c.Version())
	assert.Len(t, c.GetTopLevelCategories(), 2)
	require.NotNil(t, c.GetCategory("netzwerk"))
	assert.Equal(t, "Network", c.GetCategory("NETZWERK").Label)
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"version": "1",`},
		{"empty document", `{}`},
		{"no categories", `{"version": "1", "categories": []}`},
		{"missing slug", `{"version": "1", "categories": [{"label": "Elektronik"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadDuplicateSlugKeepsLastNode(t *testing.T) {
	doc := `{
		"version": "1",
		"categories": [
			{"slug": "audio", "label": "Audio"},
			{"slug": "AUDIO", "label": "Hi-Fi"}
		]
	}`

	c, err := Load([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Hi-Fi", c.GetCategory("audio").Label)

	// Traversal order still wins for path resolution.
	assert.Equal(t, []string{"audio"}, c.ResolvePath("audio"))
}

func TestResolvePath(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, []string{"electronics", "netzwerk"}, c.ResolvePath("netzwerk"))
	assert.Equal(t, []string{"electronics", "netzwerk"}, c.ResolvePath("NetzWerk"))
	assert.Equal(t, []string{"electronics", "smartphones", "smartphone-zubehoer"}, c.ResolvePath("smartphone-zubehoer"))
	assert.Equal(t, []string{"fashion"}, c.ResolvePath("fashion"))
	assert.Nil(t, c.ResolvePath("does-not-exist"))
	assert.Nil(t, c.ResolvePath(""))
}

func TestGetAttributeExtractionPrompt(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, "Extract port count and wifi standard.",
		c.GetAttributeExtractionPrompt([]string{"electronics", "netzwerk"}))

	// Labels resolve just like slugs, in any mix.
	assert.Equal(t, "Extract port count and wifi standard.",
		c.GetAttributeExtractionPrompt([]string{"Elektronik", "Network"}))
	assert.Equal(t, "Extract brand, model and storage capacity.",
		c.GetAttributeExtractionPrompt([]string{"electronics"}))

	assert.Empty(t, c.GetAttributeExtractionPrompt([]string{"electronics", "bogus"}))
	assert.Empty(t, c.GetAttributeExtractionPrompt(nil))
	// Nodes without a prompt yield the empty string, not an error.
	assert.Empty(t, c.GetAttributeExtractionPrompt([]string{"fashion", "shoes"}))
}

func TestGetAttributesToExtract(t *testing.T) {
	c := loadTestCatalog(t)

	attrs := c.GetAttributesToExtract([]string{"electronics", "Netzwerk"})
	require.NotNil(t, attrs)
	assert.Equal(t, "8", attrs["ports"])

	assert.Nil(t, c.GetAttributesToExtract([]string{"bogus"}))
	assert.Nil(t, c.GetAttributesToExtract([]string{"electronics", "netzwerk", "deeper"}))
}

func TestGetSubCategories(t *testing.T) {
	c := loadTestCatalog(t)

	subs := c.GetSubCategories("electronics")
	require.Len(t, subs, 2)
	assert.Equal(t, "netzwerk", subs[0].Slug)
	assert.Equal(t, "smartphones", subs[1].Slug)

	assert.Empty(t, c.GetSubCategories("netzwerk"))
	assert.Nil(t, c.GetSubCategories("bogus"))
}

func TestGetAllCategories(t *testing.T) {
	c := loadTestCatalog(t)

	flat := c.GetAllCategories()
	require.Len(t, flat, 6)

	// Pre-order: parents before children, children in declaration order.
	assert.Equal(t, []string{"electronics"}, flat[0].Path)
	assert.Equal(t, []string{"electronics", "netzwerk"}, flat[1].Path)
	assert.Equal(t, []string{"electronics", "smartphones"}, flat[2].Path)
	assert.Equal(t, []string{"electronics", "smartphones", "smartphone-zubehoer"}, flat[3].Path)
	assert.Equal(t, []string{"fashion"}, flat[4].Path)
	assert.Equal(t, []string{"fashion", "shoes"}, flat[5].Path)

	assert.Equal(t, []string{"Elektronik", "Network"}, flat[1].Labels)
	assert.Equal(t, "Extract port count and wifi standard.", flat[1].AttributeExtractionPrompt)

	// Each call is a fresh traversal; mutating one result must not leak.
	flat[0].Path[0] = "mutated"
	again := c.GetAllCategories()
	assert.Equal(t, []string{"electronics"}, again[0].Path)
}

func TestCategoryMatches(t *testing.T) {
	tests := []struct {
		name      string
		filter    []string
		candidate []string
		want      bool
	}{
		{"prefix matches", []string{"elektronik"}, []string{"elektronik", "netzwerk"}, true},
		{"case insensitive", []string{"Elektronik", "NETZWERK"}, []string{"elektronik", "netzwerk"}, true},
		{"filter longer than candidate", []string{"elektronik", "netzwerk"}, []string{"elektronik"}, false},
		{"empty filter matches anything", nil, []string{"elektronik", "netzwerk"}, true},
		{"empty filter matches empty", nil, nil, true},
		{"diverging segment", []string{"mode"}, []string{"elektronik", "netzwerk"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryMatches(tt.filter, tt.candidate))
		})
	}
}

func TestLoaderBuildsOnce(t *testing.T) {
	var calls int
	loader := NewLoader(func() ([]byte, error) {
		calls++
		return []byte(testDocument), nil
	})

	var wg sync.WaitGroup
	results := make([]*Catalog, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := loader.Get()
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, c := range results[1:] {
		assert.Same(t, results[0], c)
	}
}

func TestLoaderPropagatesSourceError(t *testing.T) {
	wantErr := errors.New("document not found")
	loader := NewLoader(func() ([]byte, error) {
		return nil, wantErr
	})

	_, err := loader.Get()
	assert.ErrorIs(t, err, wantErr)

	// The failure is cached as well; the source is not retried.
	_, err = loader.Get()
	assert.ErrorIs(t, err, wantErr)
}
