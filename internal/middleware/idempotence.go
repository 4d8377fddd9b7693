package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/baytfix/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotenceHeader = "X-Idempotence"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence rejects duplicate mutation requests inside a short
// window. Clients either send an X-Idempotence token, or the request
// body hash is used as the key.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(idempotenceHeader)
		if key == "" {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil || len(body) == 0 {
				c.Next()
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			sum := sha256.Sum256(append([]byte(c.FullPath()+":"), body...))
			key = hex.EncodeToString(sum[:])
		}

		ctx := c.Request.Context()
		redisKey := "bf:idempotence:" + key

		ok, err := rdb.SetNX(ctx, redisKey, "1", idempotenceTTL).Result()
		if err != nil {
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"ok":      0,
				"code":    http.StatusConflict,
				"message": response.Msg("Duplicate request, please wait", "طلب مكرر، يرجى الانتظار"),
			})
			return
		}

		c.Next()
	}
}
