package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-peoplehub/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// CachedResponse is the record handlers store for replay. The original
// status travels with the payload so a replayed 201 stays a 201.
type CachedResponse struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Idempotency guards POST endpoints against double submission. A cached
// response is replayed with its original status and envelope; an in-flight
// duplicate gets a 409 while the short-lived lock is held.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		userID := c.GetString("user_id")

		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cached CachedResponse
			if uerr := json.Unmarshal([]byte(val), &cached); uerr == nil && cached.Status != 0 {
				response.Success(c, cached.Status, cached.Data, nil)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"ok": true, "data": json.RawMessage(val)})
			return
		}

		// The lock expires on its own so a crashed worker cannot wedge the key.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()

		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "Your request is still being processed, please wait.",
			})
			return
		}

		// Handlers clear the lock and write the cache entry once done.
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		c.Next()
	}
}
