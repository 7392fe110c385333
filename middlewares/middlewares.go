package middlewares

import (
	"net/http"
	"os"
	"strings"

	"Foresight/auth"
	"Foresight/chain"

	"github.com/gin-gonic/gin"
)

// WalletAuthMiddleware requires a wallet identity on mutating routes. The
// identity normally arrives as a bearer token from the signed-nonce login; a
// plain X-Wallet-Address header is accepted as a fallback for tools that have
// not logged in, since follow/chat writes are tied to the address itself.
func WalletAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, err := auth.ExtractTokenWallet(c.Request)
		if err != nil {
			wallet = strings.TrimSpace(c.GetHeader("X-Wallet-Address"))
		}
		if wallet == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Connect a wallet to continue"})
			c.Abort()
			return
		}
		if !chain.IsWalletAddress(wallet) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format"})
			c.Abort()
			return
		}

		c.Set("wallet", strings.ToLower(wallet))
		c.Next()
	}
}

// OptionalWalletMiddleware attaches a wallet identity when one is present but
// never rejects the request; read paths stay open to anonymous viewers.
func OptionalWalletMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, err := auth.ExtractTokenWallet(c.Request)
		if err != nil {
			wallet = strings.TrimSpace(c.GetHeader("X-Wallet-Address"))
		}
		if wallet == "" {
			wallet = strings.TrimSpace(c.Query("viewer"))
		}
		if wallet != "" && chain.IsWalletAddress(wallet) {
			c.Set("wallet", strings.ToLower(wallet))
		}
		c.Next()
	}
}

// CORSMiddleware lets the browser frontend talk to the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowedOrigins := []string{
			"http://localhost:3000",
		}
		if extra := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); extra != "" {
			for _, o := range strings.Split(extra, ",") {
				if o = strings.TrimSpace(o); o != "" {
					allowedOrigins = append(allowedOrigins, o)
				}
			}
		}

		for _, o := range allowedOrigins {
			if o == origin {
				c.Writer.Header().Set("Access-Control-Allow-Origin", o)
				break
			}
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Authorization, Content-Length, X-Wallet-Address, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods",
			"POST, GET, OPTIONS, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
