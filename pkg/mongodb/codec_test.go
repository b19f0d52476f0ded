package mongodb

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type pricedDoc struct {
	Amount   decimal.Decimal     `bson:"amount"`
	Optional *decimal.Decimal    `bson:"optional"`
	Rates    [3]*decimal.Decimal `bson:"rates"`
}

func TestDecimalCodecRoundTrip(t *testing.T) {
	reg := NewRegistry()
	rate := decimal.RequireFromString("1250.75")

	in := pricedDoc{
		Amount: decimal.RequireFromString("10432.1234"),
		Rates:  [3]*decimal.Decimal{&rate, nil, nil},
	}

	data, err := bson.MarshalWithRegistry(reg, in)
	require.NoError(t, err)

	raw := bson.Raw(data)
	assert.Equal(t, bson.TypeDecimal128, raw.Lookup("amount").Type)
	assert.Equal(t, bson.TypeNull, raw.Lookup("optional").Type)

	var out pricedDoc
	require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out))

	assert.True(t, in.Amount.Equal(out.Amount))
	assert.Nil(t, out.Optional)
	require.NotNil(t, out.Rates[0])
	assert.True(t, rate.Equal(*out.Rates[0]))
	assert.Nil(t, out.Rates[1])
}

func TestDecimalDecodesLegacyNumbers(t *testing.T) {
	reg := NewRegistry()

	data, err := bson.Marshal(bson.M{"amount": 12.5, "optional": int32(7)})
	require.NoError(t, err)

	var out pricedDoc
	require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out))

	assert.Equal(t, "12.5", out.Amount.String())
	require.NotNil(t, out.Optional)
	assert.Equal(t, "7", out.Optional.String())
}
