package scanner

import (
	"fmt"
	"testing"

	"tornbot/pkg/torn"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// go test -v --run TestScanBelowReference
func TestScanBelowReference(t *testing.T) {
	got := Scan([]Candidate{
		{Name: "a", Price: d(10), Reference: d(15)},
		{Name: "b", Price: d(20), Reference: d(18)},
		{Name: "c", Price: d(5), Reference: d(5)},
	}, BelowReference)

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
	assert.True(t, got[0].Profit.Equal(d(5)))
}

// go test -v --run TestScanDip
func TestScanDip(t *testing.T) {
	got := Scan([]Candidate{
		{Name: "dipped", Price: d(80), Reference: d(100)},
		{Name: "flat", Price: d(90), Reference: d(100)},
		{Name: "edge", Price: d(85), Reference: d(100)},
	}, Dip)

	require.Len(t, got, 1)
	assert.Equal(t, "dipped", got[0].Name)
	assert.True(t, got[0].Profit.Equal(d(20)))
}

// go test -v --run TestScanSkipsMissingValues
func TestScanSkipsMissingValues(t *testing.T) {
	got := Scan([]Candidate{
		{Name: "no price", Reference: d(100)},
		{Name: "no value", Price: d(1)},
	}, BelowReference)
	assert.Empty(t, got)
}

// go test -v --run TestScanTopN
func TestScanTopN(t *testing.T) {
	var cands []Candidate
	for i := int64(1); i <= 8; i++ {
		cands = append(cands, Candidate{Name: fmt.Sprintf("item%d", i), Price: d(100), Reference: d(100 + i)})
	}
	cands = append(cands, Candidate{Name: "aaa", Price: d(100), Reference: d(108)})

	got := Scan(cands, BelowReference)
	require.Len(t, got, TopN)

	names := make([]string, 0, len(got))
	for _, o := range got {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"aaa", "item8", "item7", "item6", "item5"}, names)
}

// go test -v --run TestFromTravel
func TestFromTravel(t *testing.T) {
	items := []torn.TravelItem{
		{Country: "mexico", ID: "1", Name: "Plushie", Cost: d(10), MarketPrice: d(20)},
		{Country: "canada", ID: "2", Name: "Flower", Cost: d(5), MarketPrice: d(50)},
	}

	all := FromTravel(items, "")
	assert.Len(t, all, 2)

	only := FromTravel(items, " Mexico ")
	require.Len(t, only, 1)
	assert.Equal(t, "mexico", only[0].Group)

	got := Scan(all, BelowReference)
	require.Len(t, got, 2)
	assert.Equal(t, "Flower", got[0].Name)
}
