package registry_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/registry"
	"fenrir/internal/tick"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSymbols_AreReturnedInAscendingOrder(t *testing.T) {
	r := registry.New(zerolog.Nop())

	for _, sym := range []string{"TSLA", "AAPL", "MSFT", "GOOG"} {
		_, err := r.Create(sym, tick.Hundredth, dec("1.00"), dec("1000.00"), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT", "TSLA"}, r.Symbols())
}

func TestCreate_RejectsDuplicateSymbol(t *testing.T) {
	r := registry.New(zerolog.Nop())

	_, err := r.Create("AAPL", tick.Hundredth, dec("1.00"), dec("1000.00"), nil)
	require.NoError(t, err)

	_, err = r.Create("AAPL", tick.Hundredth, dec("1.00"), dec("1000.00"), nil)
	assert.Error(t, err)
}

func TestLookup_UnknownSymbolErrors(t *testing.T) {
	r := registry.New(zerolog.Nop())
	_, err := r.Lookup("AAPL")
	assert.Error(t, err)
}

func TestRemove_DropsSymbolFromSymbolsAndDumpSymbols(t *testing.T) {
	r := registry.New(zerolog.Nop())
	_, err := r.Create("AAPL", tick.Hundredth, dec("1.00"), dec("1000.00"), nil)
	require.NoError(t, err)

	r.Remove("AAPL")

	assert.Empty(t, r.Symbols())
	assert.Empty(t, r.DumpSymbols())
}
