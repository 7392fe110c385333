package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// personalHash applies the EIP-191 personal-message prefix the way browser
// wallets do for personal_sign.
func personalHash(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

// VerifySignature recovers the signer of a personal_sign signature over
// message and checks it matches the claimed wallet address.
func VerifySignature(wallet, message, signatureHex string) error {
	if !IsWalletAddress(wallet) {
		return errors.New("invalid wallet address")
	}
	signature, err := hexutil.Decode(signatureHex)
	if err != nil {
		return errors.New("malformed signature")
	}
	if len(signature) != 65 {
		return errors.New("malformed signature")
	}
	// Browser wallets return v as 27/28; go-ethereum expects 0/1.
	if signature[64] >= 27 {
		signature[64] -= 27
	}

	pubKey, err := crypto.SigToPub(personalHash(message), signature)
	if err != nil {
		return errors.New("signature recovery failed")
	}
	recovered := crypto.PubkeyToAddress(*pubKey).Hex()
	if !strings.EqualFold(recovered, wallet) {
		return errors.New("signature does not match wallet")
	}
	return nil
}
