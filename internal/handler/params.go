package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// pageParams reads the limit/offset query parameters. Absent values
// fall back to defaults; garbage values surface as -1 so the service
// layer rejects them instead of silently paging from zero.
func pageParams(c echo.Context) (limit, offset int) {
	limit, offset = defaultLimit, 0
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		} else {
			limit = -1
		}
	}
	if s := c.QueryParam("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			offset = n
		} else {
			offset = -1
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, offset
}

// pathID parses a numeric path parameter such as :id.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
