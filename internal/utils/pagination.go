package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-dashboard-api/internal/constants"
)

// PageWindow is a 1-based page of a task listing.
type PageWindow struct {
	Page int
	Size int
}

// NewPageWindow clamps page to at least 1 and resets an out-of-range size to the default.
func NewPageWindow(page, size int) PageWindow {
	if page < 1 {
		page = 1
	}
	if size < constants.MinPageSize || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}
	return PageWindow{Page: page, Size: size}
}

// Offset is the number of rows skipped before this page.
func (w PageWindow) Offset() int {
	return (w.Page - 1) * w.Size
}

// TotalPages is the number of pages needed for total rows; zero when Size is unset.
func (w PageWindow) TotalPages(total int64) int {
	if w.Size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(w.Size) - 1) / int64(w.Size))
}

// PageWindowFromQuery reads ?page= and ?limit=, falling back to defaults on junk.
func PageWindowFromQuery(c *gin.Context) PageWindow {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	return NewPageWindow(page, size)
}
