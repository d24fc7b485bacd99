package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

// pathID parses a positive numeric path parameter. It writes a 400 and
// returns false when the parameter is not a valid id.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "invalid_id", name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

type paging struct {
	Limit  int
	Offset int
}

// pageParams reads limit and offset, clamping limit to [1, maxPageSize].
func pageParams(c *gin.Context) (paging, bool) {
	p := paging{Limit: defaultPageSize}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "invalid_limit", "limit must be a positive integer")
			return p, false
		}
		p.Limit = min(n, maxPageSize)
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid_offset", "offset must be a non-negative integer")
			return p, false
		}
		p.Offset = n
	}
	return p, true
}

// optionalInt reads a non-negative integer query parameter, 0 when absent.
func optionalInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, "invalid_"+name, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func queryFlag(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}
