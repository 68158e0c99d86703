package httpgin

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// writeJSONWithCache writes v as JSON with an ETag and Cache-Control.
// A matching If-None-Match answers 304 without a body.
func writeJSONWithCache(
	c *gin.Context,
	status int,
	v any,
	cacheControl string,
	weak bool,
) {
	b, err := json.Marshal(v)
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}

	tag := etag(b, weak)
	c.Header("ETag", tag)
	if cacheControl != "" {
		c.Header("Cache-Control", cacheControl)
	}

	if etagMatches(c.GetHeader("If-None-Match"), tag) {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(status, "application/json; charset=utf-8", b)
}

func etag(body []byte, weak bool) string {
	sum := sha256.Sum256(body)
	tag := `"` + hex.EncodeToString(sum[:16]) + `"`
	if weak {
		tag = "W/" + tag
	}
	return tag
}

// etagMatches applies weak comparison to a comma separated If-None-Match.
func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}

	want := strings.TrimPrefix(tag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}
