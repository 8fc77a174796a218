package eval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const directoryCSV = `Symbol,Name,Market,Market Cap,Country
AAPL,Apple Inc.,NASDAQ,3000000000000,United States
APP,Applovin,NASDAQ,100000000000,United States
SHOP,Shopify,NYSE,90000000000,Canada
SAP,SAP SE,NYSE,200000000000,Germany
PINE,Alpine Income,NYSE,500000000,United States
GRMN,Garmin,NYSE,40000000000,Switzerland
`

func loadDir(t *testing.T) *Directory {
	t.Helper()
	d, err := ReadDirectory(strings.NewReader(directoryCSV))
	require.NoError(t, err)
	return d
}

func TestSuggestEmptyQueryReturnsNothing(t *testing.T) {
	d := loadDir(t)
	got, err := d.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSuggestPrefixBeforeContains(t *testing.T) {
	d := loadDir(t)
	got, err := d.Suggest(context.Background(), "ap")
	require.NoError(t, err)

	var syms []string
	for _, s := range got {
		syms = append(syms, s.Symbol)
	}
	// Prefix matches (Apple, Applovin) sorted by market cap lead;
	// substring matches (SAP) follow.
	assert.Equal(t, []string{"AAPL", "APP", "SAP"}, syms)
}

func TestSuggestOrdersByMarketCap(t *testing.T) {
	d := loadDir(t)
	got, err := d.Suggest(context.Background(), "s")
	require.NoError(t, err)
	// Both SAP and SHOP start with "s"; SAP has the larger cap.
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "SAP", got[0].Symbol)
	assert.Equal(t, "SHOP", got[1].Symbol)
}

func TestSuggestCountryShort(t *testing.T) {
	d := loadDir(t)
	got, err := d.Suggest(context.Background(), "shop")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CAD", got[0].CountryShort)

	got, err = d.Suggest(context.Background(), "apple")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "USA", got[0].CountryShort)

	got, err = d.Suggest(context.Background(), "garmin")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SWI", got[0].CountryShort)
}

func TestSuggestCapsAtTen(t *testing.T) {
	var b strings.Builder
	b.WriteString("Symbol,Name,Market,Market Cap,Country\n")
	for i := 0; i < 15; i++ {
		b.WriteString("ZZ" + string(rune('A'+i)) + ",Zed Corp,NYSE,1000,France\n")
	}
	d, err := ReadDirectory(strings.NewReader(b.String()))
	require.NoError(t, err)

	got, err := d.Suggest(context.Background(), "zz")
	require.NoError(t, err)
	assert.Len(t, got, maxSuggestions)
}

func TestReadDirectorySkipsBlankSymbols(t *testing.T) {
	d, err := ReadDirectory(strings.NewReader("Symbol,Name,Market,Market Cap,Country\n,No Symbol,NYSE,1,US\nOK,Has Symbol,NYSE,not-a-number,US\n"))
	require.NoError(t, err)
	got, err := d.Suggest(context.Background(), "ok")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "OK", got[0].Symbol)
}
