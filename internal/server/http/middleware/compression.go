package middleware

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// maxRequestBody caps request bodies after decompression. API payloads are
// credentials and status names.
const maxRequestBody = 1 << 20

// Compression gzips responses for clients that accept it and inflates gzip
// encoded request bodies. A corrupt gzip body is answered with 400.
func Compression() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle))
}

// LimitRequestBody bounds every request body to maxRequestBody. Installed
// after Compression it applies to the inflated stream.
func LimitRequestBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)
		}
		c.Next()
	}
}
