package chain

import (
	"errors"
	"os"
	"regexp"
	"strings"
)

var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsWalletAddress reports whether s looks like a hex-encoded EVM address.
func IsWalletAddress(s string) bool {
	return walletPattern.MatchString(strings.TrimSpace(s))
}

// Addresses is the pair of deployed contracts for one network.
type Addresses struct {
	Foresight string
	Token     string
}

var chainEnvSuffix = map[int64]string{
	137:      "_POLYGON",
	80002:    "_AMOY",
	11155111: "_SEPOLIA",
	31337:    "_LOCALHOST",
}

// ResolveAddresses picks the staking contract and token addresses for a chain
// id, falling back to the unsuffixed variables for unmapped networks.
func ResolveAddresses(chainID int64) (Addresses, error) {
	foresight := strings.TrimSpace(os.Getenv("FORESIGHT_ADDRESS"))
	token := strings.TrimSpace(os.Getenv("USDT_ADDRESS"))

	if suffix, ok := chainEnvSuffix[chainID]; ok {
		if v := strings.TrimSpace(os.Getenv("FORESIGHT_ADDRESS" + suffix)); v != "" {
			foresight = v
		}
		if v := strings.TrimSpace(os.Getenv("USDT_ADDRESS" + suffix)); v != "" {
			token = v
		}
	}

	if foresight == "" || token == "" {
		return Addresses{}, errors.New("no contract addresses configured for this network")
	}
	if !IsWalletAddress(foresight) || !IsWalletAddress(token) {
		return Addresses{}, errors.New("configured contract address is not a valid address")
	}
	return Addresses{Foresight: foresight, Token: token}, nil
}
