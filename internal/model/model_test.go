package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTradeRecordValue(t *testing.T) {
	record := TradeRecord{
		Values: map[Indicator]Value{
			IndicatorExportVolume: Some(0),
			IndicatorImportVolume: None(),
		},
	}

	v, ok := record.Value(IndicatorExportVolume)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = record.Value(IndicatorImportVolume)
	assert.False(t, ok)

	_, ok = record.Value(IndicatorBalanceValue)
	assert.False(t, ok)
}

func TestIndicatorIsBalance(t *testing.T) {
	assert.True(t, IndicatorBalanceVolume.IsBalance())
	assert.True(t, IndicatorBalanceValue.IsBalance())
	assert.False(t, IndicatorExportValue.IsBalance())
	assert.True(t, Indicator("Trade balance").IsBalance())
}

func TestIndicatorKnown(t *testing.T) {
	assert.Len(t, Indicators(), 6)
	for _, indicator := range Indicators() {
		assert.True(t, indicator.Known())
	}
	assert.False(t, Indicator("Production").Known())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Royaume-uni", DisplayName("__Royaume-uni"))
	assert.Equal(t, "Coree Du Sud", DisplayName("__Coree_Du_Sud"))
	assert.Equal(t, "France", DisplayName("France"))
}

func TestTradeRecordSentinels(t *testing.T) {
	assert.True(t, TradeRecord{Country: "__Monde"}.IsWorld())
	assert.True(t, TradeRecord{Country: "Monde"}.IsWorld())
	assert.False(t, TradeRecord{Country: "__France"}.IsWorld())
	assert.True(t, TradeRecord{ProductType: " TOTAL "}.IsTotalProduct())
	assert.False(t, TradeRecord{ProductType: "Bovins"}.IsTotalProduct())
}
