package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erc1193/providerkit/pkg/provider"
)

func TestNewChainID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    provider.ChainID
		wantErr bool
	}{
		{name: "mainnet", input: "0x1", want: "0x1"},
		{name: "uppercase digits normalized", input: "0xA4B1", want: "0xa4b1"},
		{name: "uppercase prefix normalized", input: "0X89", want: "0x89"},
		{name: "no prefix", input: "137", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "not hex", input: "0xzz", wantErr: true},
		{name: "leading zeros", input: "0x01", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := provider.NewChainID(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestChainIDFromUint64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, provider.ChainID("0x1"), provider.ChainIDFromUint64(1))
	assert.Equal(t, provider.ChainID("0x89"), provider.ChainIDFromUint64(137))
	assert.Equal(t, provider.ChainID("0xa4b1"), provider.ChainIDFromUint64(42161))
}

func TestChainID_IsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, provider.ChainID("").IsZero())
	assert.False(t, provider.ChainID("0x1").IsZero())
}

func TestAccountSet_Equal(t *testing.T) {
	t.Parallel()

	a := provider.AccountSet{"0xaaa", "0xbbb"}

	assert.True(t, a.Equal(provider.AccountSet{"0xaaa", "0xbbb"}))
	assert.False(t, a.Equal(provider.AccountSet{"0xbbb", "0xaaa"}), "order matters")
	assert.False(t, a.Equal(provider.AccountSet{"0xaaa"}))
	assert.True(t, provider.AccountSet{}.Equal(nil))
}

func TestAccountSet_Contains(t *testing.T) {
	t.Parallel()

	a := provider.AccountSet{"0xAbCd", "0xeeee"}

	assert.True(t, a.Contains("0xabcd"), "checksummed and lowercase forms match")
	assert.True(t, a.Contains("0xEEEE"))
	assert.False(t, a.Contains("0x1234"))
}

func TestAccountSet_Clone(t *testing.T) {
	t.Parallel()

	a := provider.AccountSet{"0xaaa"}
	c := a.Clone()
	c[0] = "0xmutated"

	assert.Equal(t, provider.AccountSet{"0xaaa"}, a)
	assert.Nil(t, provider.AccountSet(nil).Clone())
}
