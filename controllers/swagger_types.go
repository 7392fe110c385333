package controllers

import (
	"Foresight/followsync"
	"Foresight/models"
)

// Response envelopes for the generated API docs. Handlers marshal gin.H with
// the same shape; these exist so swag can name the schemas.

type ErrorResponse struct {
	Status int               `json:"status"`
	Error  map[string]string `json:"error"`
}

type SimpleMessageResponse struct {
	Status   int    `json:"status"`
	Response string `json:"response"`
}

type PredictionListResponse struct {
	Status   int                 `json:"status"`
	Response []models.Prediction `json:"response"`
}

type PredictionResponse struct {
	Status   int               `json:"status"`
	Response models.Prediction `json:"response"`
}

type PredictionDetailResponse struct {
	Status   int                 `json:"status"`
	Response PredictionDetailDTO `json:"response"`
}

type DuplicateTitleResponse struct {
	Status          int                 `json:"status"`
	Error           map[string]string   `json:"error"`
	DuplicateEvents []DuplicateEventDTO `json:"duplicateEvents"`
}

type FollowStatusResponse struct {
	Status   int               `json:"status"`
	Response followsync.Status `json:"response"`
}

type FollowToggleResponse struct {
	Status   int               `json:"status"`
	Response followsync.Status `json:"response"`
}

type FollowersResponse struct {
	Status   int `json:"status"`
	Response struct {
		FollowersCount int64    `json:"followersCount"`
		Recent         []string `json:"recent"`
	} `json:"response"`
}

type ChatMessageResponse struct {
	Status   int                `json:"status"`
	Response models.ChatMessage `json:"response"`
}

type ChatSnapshotResponse struct {
	Status   int                  `json:"status"`
	Response []models.ChatMessage `json:"response"`
}

type NonceResponse struct {
	Status   int `json:"status"`
	Response struct {
		Message string `json:"message"`
	} `json:"response"`
}

type LoginResponse struct {
	Status   int `json:"status"`
	Response struct {
		Token  string `json:"token"`
		Wallet string `json:"wallet"`
	} `json:"response"`
}

type StakePreflightResponse struct {
	Status   int `json:"status"`
	Response struct {
		ChainID         int64  `json:"chainId"`
		Token           string `json:"token"`
		Contract        string `json:"contract"`
		Decimals        int    `json:"decimals"`
		AmountUnits     string `json:"amountUnits"`
		NeedsApproval   bool   `json:"needsApproval"`
		ApproveCalldata string `json:"approveCalldata,omitempty"`
		StakeCalldata   string `json:"stakeCalldata"`
	} `json:"response"`
}

type StakeResponse struct {
	Status   int          `json:"status"`
	Response models.Stake `json:"response"`
}

type RecentEventsResponse struct {
	Status   int              `json:"status"`
	Response []RecentEventDTO `json:"response"`
}
