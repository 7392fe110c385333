package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const erc20ABI = `[
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const foresightABI = `[
	{"name":"getPredictionCount","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"stake","type":"function","stateMutability":"nonpayable","inputs":[{"name":"_predictionId","type":"uint256"},{"name":"_option","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]}
]`

// caller is the slice of ethclient the gateway needs, split out so tests can
// substitute a fake RPC backend.
type caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// Gateway performs the read-only wallet/contract interactions the API needs:
// unit conversion inputs (token decimals), allowance checks, and the on-chain
// prediction existence preflight. It never signs or sends transactions; the
// browser wallet owns the transaction lifecycle.
type Gateway struct {
	client    caller
	erc20     abi.ABI
	foresight abi.ABI
}

func Dial(rpcURL string) (*Gateway, error) {
	if strings.TrimSpace(rpcURL) == "" {
		return nil, errors.New("no RPC URL configured")
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, err
	}
	return newGateway(client)
}

func newGateway(client caller) (*Gateway, error) {
	erc20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}
	foresight, err := abi.JSON(strings.NewReader(foresightABI))
	if err != nil {
		return nil, err
	}
	return &Gateway{client: client, erc20: erc20, foresight: foresight}, nil
}

func (g *Gateway) ChainID(ctx context.Context) (int64, error) {
	id, err := g.client.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

func (g *Gateway) call(ctx context.Context, contract common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	return parsed.Unpack(method, out)
}

// TokenDecimals reads decimals() from the staking token, defaulting to 6 when
// the token does not implement it.
func (g *Gateway) TokenDecimals(ctx context.Context, token string) int {
	out, err := g.call(ctx, common.HexToAddress(token), g.erc20, "decimals")
	if err != nil || len(out) == 0 {
		return 6
	}
	if d, ok := out[0].(uint8); ok {
		return int(d)
	}
	return 6
}

// Allowance reads the token allowance granted by owner to spender.
func (g *Gateway) Allowance(ctx context.Context, token, owner, spender string) (*big.Int, error) {
	out, err := g.call(ctx, common.HexToAddress(token), g.erc20, "allowance",
		common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return nil, err
	}
	allowance, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected allowance result")
	}
	return allowance, nil
}

// PredictionCount reads the number of predictions registered on-chain. An
// off-chain prediction id must be strictly below this count to be stakeable.
func (g *Gateway) PredictionCount(ctx context.Context, contract string) (*big.Int, error) {
	out, err := g.call(ctx, common.HexToAddress(contract), g.foresight, "getPredictionCount")
	if err != nil {
		return nil, err
	}
	count, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected prediction count result")
	}
	return count, nil
}

// ApproveCalldata packs the approve(spender, amount) call for the client to
// sign and send.
func (g *Gateway) ApproveCalldata(spender string, amount *big.Int) (string, error) {
	data, err := g.erc20.Pack("approve", common.HexToAddress(spender), amount)
	if err != nil {
		return "", err
	}
	return "0x" + common.Bytes2Hex(data), nil
}

// StakeCalldata packs the stake(predictionId, option, amount) call.
func (g *Gateway) StakeCalldata(predictionID uint, option int, amount *big.Int) (string, error) {
	data, err := g.foresight.Pack("stake",
		new(big.Int).SetUint64(uint64(predictionID)),
		big.NewInt(int64(option)),
		amount)
	if err != nil {
		return "", err
	}
	return "0x" + common.Bytes2Hex(data), nil
}
