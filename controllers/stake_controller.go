package controllers

import (
	"net/http"
	"strings"

	"Foresight/chain"
	"Foresight/models"
	"Foresight/utils"
	"Foresight/utils/formaterror"
	httpctx "Foresight/utils/httpctx"

	"github.com/gin-gonic/gin"
)

// StakePreflight godoc
// @Summary      Prepare a stake transaction
// @Description  Resolve contract addresses for the connected network, convert the human amount to token units, check the allowance, and return the calldata the wallet must sign; the prediction must already exist on-chain
// @Tags         stakes
// @Accept       json
// @Produce      json
// @Param        id     path  int                    true  "Prediction ID"
// @Param        stake  body  StakePreflightRequest  true  "Stake intent"
// @Success      200  {object}  StakePreflightResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /predictions/{id}/stake/preflight [post]
// @Security     BearerAuth
func (server *Server) StakePreflight(c *gin.Context) {
	errList = map[string]string{}

	wallet, ok := httpctx.CurrentWallet(c)
	if !ok {
		errList["Unauthorized"] = "Connect a wallet to continue"
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": http.StatusUnauthorized,
			"error":  errList,
		})
		return
	}
	if server.Chain == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": http.StatusServiceUnavailable,
			"error":  "Chain gateway is not configured",
		})
		return
	}

	pid, err := parsePredictionID(c.Param("id"))
	if err != nil {
		errList["Invalid_request"] = "Invalid Request"
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  errList,
		})
		return
	}
	if err := server.ensurePredictionExists(c, pid); err != nil {
		return
	}

	var req StakePreflightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errList["Invalid_body"] = "Invalid request body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}
	if req.Option != models.StakeOptionNo && req.Option != models.StakeOptionYes {
		errList["Invalid_option"] = "Option must be 0 (no) or 1 (yes)"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	ctx := c.Request.Context()
	chainID, err := server.Chain.ChainID(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": http.StatusServiceUnavailable,
			"error":  "Error reaching the network",
		})
		return
	}
	addresses, err := chain.ResolveAddresses(chainID)
	if err != nil {
		errList["Unsupported_network"] = "Contracts are not deployed on this network"
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  errList,
		})
		return
	}

	decimals := server.Chain.TokenDecimals(ctx, addresses.Token)
	amount, err := chain.ParseUnits(req.Amount, decimals)
	if err != nil {
		errList["Invalid_amount"] = "Amount must be a positive number"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	// The contract indexes predictions from 0; an id at or past the count
	// would revert, so reject it here instead of burning the user's gas.
	count, err := server.Chain.PredictionCount(ctx, addresses.Foresight)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": http.StatusServiceUnavailable,
			"error":  "Error reading the staking contract",
		})
		return
	}
	if uint64(pid) >= count.Uint64() {
		errList["Not_on_chain"] = "This prediction is not registered on-chain yet"
		c.JSON(http.StatusConflict, gin.H{
			"status": http.StatusConflict,
			"error":  errList,
		})
		return
	}

	allowance, err := server.Chain.Allowance(ctx, addresses.Token, wallet, addresses.Foresight)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": http.StatusServiceUnavailable,
			"error":  "Error reading the token allowance",
		})
		return
	}

	needsApproval := allowance.Cmp(amount) < 0
	response := gin.H{
		"chainId":       chainID,
		"token":         addresses.Token,
		"contract":      addresses.Foresight,
		"decimals":      decimals,
		"amountUnits":   amount.String(),
		"needsApproval": needsApproval,
	}
	if needsApproval {
		approveData, err := server.Chain.ApproveCalldata(addresses.Foresight, amount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": http.StatusInternalServerError,
				"error":  "Error building approve calldata",
			})
			return
		}
		response["approveCalldata"] = approveData
	}
	stakeData, err := server.Chain.StakeCalldata(pid, req.Option, amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error building stake calldata",
		})
		return
	}
	response["stakeCalldata"] = stakeData

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": response,
	})
}

// RecordStake godoc
// @Summary      Record a confirmed stake
// @Description  Persist the off-chain record of a stake the wallet already confirmed on-chain, so statistics aggregate without contract reads
// @Tags         stakes
// @Accept       json
// @Produce      json
// @Param        id     path  int                 true  "Prediction ID"
// @Param        stake  body  StakeRecordRequest  true  "Confirmed stake"
// @Success      201  {object}  StakeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /predictions/{id}/stakes [post]
// @Security     BearerAuth
func (server *Server) RecordStake(c *gin.Context) {
	errList = map[string]string{}

	wallet, ok := httpctx.CurrentWallet(c)
	if !ok {
		errList["Unauthorized"] = "Connect a wallet to continue"
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": http.StatusUnauthorized,
			"error":  errList,
		})
		return
	}

	pid, err := parsePredictionID(c.Param("id"))
	if err != nil {
		errList["Invalid_request"] = "Invalid Request"
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  errList,
		})
		return
	}
	if err := server.ensurePredictionExists(c, pid); err != nil {
		return
	}

	var req StakeRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errList["Invalid_body"] = "Invalid request body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	stake := models.Stake{
		EventID: pid,
		UserID:  wallet,
		Option:  req.Option,
		Amount:  req.Amount,
		TxHash:  strings.TrimSpace(req.TxHash),
	}
	stake.Prepare()
	errorMessages := stake.Validate()
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	created, err := stake.SaveStake(server.DB)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  formattedError,
		})
		return
	}

	utils.InfoLogger.Printf("stake %s recorded for event %d by %s", created.TxHash, pid, wallet)

	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": created,
	})
}
