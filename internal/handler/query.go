package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 200
	maxPageLimit     = 500
	dateLayout       = "2006-01-02"
)

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

// pageQuery reads skip/limit. "offset" is accepted for skip.
func pageQuery(c *gin.Context) (limit, offset int) {
	limit = intQuery(c, "limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset = intQuery(c, "skip", intQuery(c, "offset", 0))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}

func uint64Param(c *gin.Context, key string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(key)), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func uint64QueryPtr(c *gin.Context, key string) (*uint64, error) {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &id, nil
}

// listQuery collects repeated and comma separated values.
func listQuery(c *gin.Context, key string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			val := strings.TrimSpace(part)
			if val == "" {
				continue
			}
			if _, ok := seen[val]; ok {
				continue
			}
			seen[val] = struct{}{}
			out = append(out, val)
		}
	}
	return out
}

// timeQuery accepts RFC3339 or a bare date. A bare date used as an upper
// bound covers the whole day.
func timeQuery(c *gin.Context, key string, endOfDay bool) (*time.Time, error) {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateLayout, val)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: use YYYY-MM-DD or RFC3339", key)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

func boolPtr(v bool) *bool {
	return &v
}
