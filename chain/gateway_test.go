package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

// fakeCaller answers contract calls from a canned table keyed by the 4-byte
// method selector.
type fakeCaller struct {
	chainID *big.Int
	results map[string][]byte
	err     error
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	selector := common.Bytes2Hex(msg.Data[:4])
	out, ok := f.results[selector]
	if !ok {
		return nil, errors.New("unexpected call " + selector)
	}
	return out, nil
}

func (f *fakeCaller) ChainID(ctx context.Context) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chainID, nil
}

func uint256Word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func TestGatewayTokenDecimals(t *testing.T) {
	gw, err := newGateway(&fakeCaller{results: map[string][]byte{
		"313ce567": uint256Word(big.NewInt(18)), // decimals()
	}})
	assert.NoError(t, err)

	assert.Equal(t, 18, gw.TokenDecimals(context.Background(), "0x1111111111111111111111111111111111111111"))
}

func TestGatewayTokenDecimalsDefaultsOnFailure(t *testing.T) {
	gw, err := newGateway(&fakeCaller{err: errors.New("rpc down")})
	assert.NoError(t, err)

	assert.Equal(t, 6, gw.TokenDecimals(context.Background(), "0x1111111111111111111111111111111111111111"))
}

func TestGatewayAllowance(t *testing.T) {
	want := big.NewInt(2500000)
	gw, err := newGateway(&fakeCaller{results: map[string][]byte{
		"dd62ed3e": uint256Word(want), // allowance(owner,spender)
	}})
	assert.NoError(t, err)

	got, err := gw.Allowance(context.Background(),
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"0x3333333333333333333333333333333333333333")
	assert.NoError(t, err)
	assert.Equal(t, 0, got.Cmp(want))
}

func TestGatewayPredictionCount(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(foresightABI))
	assert.NoError(t, err)
	selector := common.Bytes2Hex(parsed.Methods["getPredictionCount"].ID)

	gw, err := newGateway(&fakeCaller{results: map[string][]byte{
		selector: uint256Word(big.NewInt(12)),
	}})
	assert.NoError(t, err)

	count, err := gw.PredictionCount(context.Background(), "0x1111111111111111111111111111111111111111")
	assert.NoError(t, err)
	assert.Equal(t, uint64(12), count.Uint64())
}

func TestGatewayChainID(t *testing.T) {
	gw, err := newGateway(&fakeCaller{chainID: big.NewInt(80002)})
	assert.NoError(t, err)

	id, err := gw.ChainID(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(80002), id)
}

func TestApproveCalldataUsesERC20Selector(t *testing.T) {
	gw, err := newGateway(&fakeCaller{})
	assert.NoError(t, err)

	data, err := gw.ApproveCalldata("0x2222222222222222222222222222222222222222", big.NewInt(1000000))
	assert.NoError(t, err)
	// approve(address,uint256)
	assert.True(t, strings.HasPrefix(data, "0x095ea7b3"))
	// selector + two 32-byte words
	assert.Len(t, data, 2+8+64*2)
}

func TestStakeCalldataPacksArguments(t *testing.T) {
	gw, err := newGateway(&fakeCaller{})
	assert.NoError(t, err)

	data, err := gw.StakeCalldata(4, 1, big.NewInt(5000000))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, "0x"))
	// selector + three 32-byte words
	assert.Len(t, data, 2+8+64*3)
	assert.Contains(t, data, uint256Hex(4))
	assert.Contains(t, data, uint256Hex(5000000))
}

func uint256Hex(v int64) string {
	return common.Bytes2Hex(uint256Word(big.NewInt(v)))
}

func TestDialRejectsEmptyURL(t *testing.T) {
	_, err := Dial("   ")
	assert.Error(t, err)
}

func TestResolveAddressesPrefersChainSuffix(t *testing.T) {
	t.Setenv("FORESIGHT_ADDRESS", "0x1111111111111111111111111111111111111111")
	t.Setenv("USDT_ADDRESS", "0x2222222222222222222222222222222222222222")
	t.Setenv("FORESIGHT_ADDRESS_AMOY", "0x3333333333333333333333333333333333333333")
	t.Setenv("USDT_ADDRESS_AMOY", "0x4444444444444444444444444444444444444444")

	got, err := ResolveAddresses(80002)
	assert.NoError(t, err)
	assert.Equal(t, "0x3333333333333333333333333333333333333333", got.Foresight)
	assert.Equal(t, "0x4444444444444444444444444444444444444444", got.Token)

	// Unmapped networks fall back to the unsuffixed pair.
	got, err = ResolveAddresses(1)
	assert.NoError(t, err)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", got.Foresight)
}

func TestResolveAddressesFailsWhenUnconfigured(t *testing.T) {
	t.Setenv("FORESIGHT_ADDRESS", "")
	t.Setenv("USDT_ADDRESS", "")

	_, err := ResolveAddresses(137)
	assert.Error(t, err)
}

func TestIsWalletAddress(t *testing.T) {
	assert.True(t, IsWalletAddress("0x52908400098527886E0F7030069857D2E4169EE7"))
	assert.True(t, IsWalletAddress(" 0x52908400098527886e0f7030069857d2e4169ee7 "))
	assert.False(t, IsWalletAddress("0x123"))
	assert.False(t, IsWalletAddress("52908400098527886E0F7030069857D2E4169EE7"))
	assert.False(t, IsWalletAddress("0xZZ908400098527886E0F7030069857D2E4169EE7"))
}
