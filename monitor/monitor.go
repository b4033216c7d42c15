package monitor

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// RegisterMonitorRoutes exposes a runtime status endpoint for ops checks.
func RegisterMonitorRoutes(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		c.JSON(200, gin.H{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(startTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"heap_alloc_mb":  mem.HeapAlloc / 1024 / 1024,
			"num_gc":         mem.NumGC,
			"go_version":     runtime.Version(),
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
		})
	})
}
