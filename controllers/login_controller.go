package controllers

import (
	"errors"
	"net/http"
	"strings"

	"Foresight/auth"
	"Foresight/chain"
	"Foresight/utils"

	"github.com/gin-gonic/gin"
)

// IssueLoginNonce godoc
// @Summary      Issue a login nonce
// @Description  Issue a one-time message the wallet must sign to authenticate
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        wallet  body  NonceRequest  true  "Wallet address"
// @Success      200  {object}  NonceResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /auth/nonce [post]
func (server *Server) IssueLoginNonce(c *gin.Context) {
	errList = map[string]string{}

	var req NonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errList["Invalid_body"] = "Invalid request body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	wallet := strings.ToLower(strings.TrimSpace(req.Wallet))
	if !chain.IsWalletAddress(wallet) {
		errList["Invalid_wallet"] = "Invalid wallet address"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	message, err := auth.IssueNonce(c.Request.Context(), wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error issuing nonce",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": gin.H{"message": message},
	})
}

// Login godoc
// @Summary      Wallet login
// @Description  Verify the signed nonce and mint a bearer token for the wallet
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Wallet and signature"
// @Success      200  {object}  LoginResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /auth/login [post]
func (server *Server) Login(c *gin.Context) {
	errList = map[string]string{}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errList["Invalid_body"] = "Invalid request body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	wallet := strings.ToLower(strings.TrimSpace(req.Wallet))
	if !chain.IsWalletAddress(wallet) || req.Signature == "" {
		errList["Invalid_credentials"] = "Wallet and signature are required"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	message, err := auth.ConsumeNonce(c.Request.Context(), wallet)
	if err != nil {
		if errors.Is(err, auth.ErrNonceExpired) {
			errList["Expired_nonce"] = "Nonce expired, request a new one"
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": http.StatusUnauthorized,
				"error":  errList,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error verifying nonce",
		})
		return
	}

	if err := chain.VerifySignature(wallet, message, req.Signature); err != nil {
		utils.ErrorLogger.Printf("login signature rejected for %s: %v", wallet, err)
		errList["Invalid_signature"] = "Signature does not match wallet"
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": http.StatusUnauthorized,
			"error":  errList,
		})
		return
	}

	token, err := auth.CreateToken(wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error creating token",
		})
		return
	}

	utils.InfoLogger.Printf("wallet %s logged in", wallet)

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"response": gin.H{
			"token":  token,
			"wallet": wallet,
		},
	})
}
