package response

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"", 1, 20},
		{"page=3&per_page=50", 3, 50},
		{"page=0", 1, 20},
		{"page=-2&per_page=-1", 1, 20},
		{"per_page=1000", 1, 20},
		{"page=abc&per_page=xyz", 1, 20},
		{"per_page=100", 1, 100},
	}

	for _, tc := range cases {
		page, perPage := ParsePagination(testContext(tc.query))
		if page != tc.wantPage || perPage != tc.wantPerPage {
			t.Errorf("ParsePagination(%q) = (%d, %d), want (%d, %d)",
				tc.query, page, perPage, tc.wantPage, tc.wantPerPage)
		}
	}
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := ParseID(c, "id")
	if !ok || id != 42 {
		t.Errorf("ParseID valid = (%d, %v), want (42, true)", id, ok)
	}

	rec := httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	if _, ok := ParseID(c, "id"); ok {
		t.Error("ParseID should reject non-numeric id")
	}
	if rec.Code != 400 {
		t.Errorf("Expected 400 written for bad id, got %d", rec.Code)
	}
}
