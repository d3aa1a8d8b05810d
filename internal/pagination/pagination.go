package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// DefaultPageSize is the fixed page size, overridable with the limit query
// parameter.
const DefaultPageSize = 6

// Page is the paginated response envelope: total count, links to the
// neighbouring pages and the page of results.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// Parse reads the page and limit query parameters, falling back to page 1
// and the default page size.
func Parse(c *gin.Context) (page, limit int) {
	page = 1
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	limit = DefaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}

// NewPage assembles the response envelope for one page of results
func NewPage(c *gin.Context, count int64, page, limit int, results interface{}) Page {
	p := Page{
		Count:   count,
		Results: results,
	}
	if int64(page*limit) < count {
		p.Next = pageURL(c, page+1)
	}
	if page > 1 {
		p.Previous = pageURL(c, page-1)
	}
	return p
}

// pageURL rebuilds the request URL with the page parameter swapped. The
// server-side request URL carries no scheme or host, so both are filled in
// to keep the links absolute.
func pageURL(c *gin.Context, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	u.Host = c.Request.Host
	u.Scheme = "http"
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	s := u.String()
	return &s
}
