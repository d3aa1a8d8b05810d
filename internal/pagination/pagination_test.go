package pagination

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/api/recipes", 1, DefaultPageSize},
		{"explicit page", "/api/recipes?page=3", 3, DefaultPageSize},
		{"explicit limit", "/api/recipes?limit=10", 1, 10},
		{"both", "/api/recipes?page=2&limit=4", 2, 4},
		{"garbage ignored", "/api/recipes?page=abc&limit=-1", 1, DefaultPageSize},
		{"zero ignored", "/api/recipes?page=0&limit=0", 1, DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := Parse(testContext(t, tt.target))
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPageLinks(t *testing.T) {
	c := testContext(t, "/api/recipes?limit=2&page=2")

	p := NewPage(c, 5, 2, 2, []string{"a", "b"})
	assert.EqualValues(t, 5, p.Count)
	require.NotNil(t, p.Next)
	assert.Contains(t, *p.Next, "page=3")
	assert.Contains(t, *p.Next, "limit=2")
	require.NotNil(t, p.Previous)
	assert.Contains(t, *p.Previous, "page=1")

	// links are absolute, carrying the request host
	assert.True(t, strings.HasPrefix(*p.Next, "http://example.com/api/recipes?"))
	assert.True(t, strings.HasPrefix(*p.Previous, "http://example.com/api/recipes?"))
}

func TestNewPageBoundaries(t *testing.T) {
	c := testContext(t, "/api/recipes")

	// single page: no links either way
	p := NewPage(c, 3, 1, 6, nil)
	assert.Nil(t, p.Next)
	assert.Nil(t, p.Previous)

	// first of many
	p = NewPage(c, 20, 1, 6, nil)
	assert.NotNil(t, p.Next)
	assert.Nil(t, p.Previous)

	// last page
	p = NewPage(c, 20, 4, 6, nil)
	assert.Nil(t, p.Next)
	assert.NotNil(t, p.Previous)
}
