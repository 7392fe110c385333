package httpctx

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CurrentWallet retrieves the authenticated wallet address from Gin context if
// present. Addresses are always stored lowercased.
func CurrentWallet(c *gin.Context) (string, bool) {
	val, exists := c.Get("wallet")
	if !exists {
		return "", false
	}
	wallet, ok := val.(string)
	if !ok || wallet == "" {
		return "", false
	}
	return strings.ToLower(wallet), true
}
