package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params holds the 1-indexed page contract taken from a request.
type Params struct {
	PageNum  int
	PageSize int
}

// New clamps raw values into a usable page.
func New(pageNum, pageSize int) Params {
	if pageNum < 1 {
		pageNum = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Params{PageNum: pageNum, PageSize: pageSize}
}

// FromContext extracts pageNum and pageSize from the query string.
func FromContext(c *gin.Context) Params {
	pageNum, _ := strconv.Atoi(c.Query("pageNum"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	return New(pageNum, pageSize)
}

// Offset is the number of rows skipped before this page.
func (p Params) Offset() int {
	return (p.PageNum - 1) * p.PageSize
}

// Scope applies LIMIT and OFFSET to a gorm query.
func (p Params) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.PageSize)
}

// Result is the page echoed back to clients.
type Result[T any] struct {
	Total    int64 `json:"total"`
	PageNum  int   `json:"pageNum"`
	PageSize int   `json:"pageSize"`
	List     []T   `json:"list"`
}

func NewResult[T any](list []T, total int64, p Params) *Result[T] {
	if list == nil {
		list = []T{}
	}
	return &Result[T]{Total: total, PageNum: p.PageNum, PageSize: p.PageSize, List: list}
}
