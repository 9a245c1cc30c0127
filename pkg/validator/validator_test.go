package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleLine struct {
	ProductID uuid.UUID        `validate:"uuid_required"`
	Quantity  decimal.Decimal  `validate:"gt=0"`
	Discount  *decimal.Decimal `validate:"omitempty,gte=0"`
}

func TestValidateStruct_Decimals(t *testing.T) {
	ok := saleLine{ProductID: uuid.New(), Quantity: decimal.RequireFromString("0.25")}
	assert.Empty(t, ValidateStruct(&ok))

	bad := saleLine{Quantity: decimal.Zero}
	errs := ValidateStruct(&bad)
	require.Len(t, errs, 2)
	assert.Equal(t, "saleLine.ProductID", errs[0].FailedField)
	assert.Equal(t, "uuid_required", errs[0].Tag)
	assert.Equal(t, "saleLine.Quantity", errs[1].FailedField)
	assert.Equal(t, "gt", errs[1].Tag)
}

func TestValidateStruct_OptionalDecimal(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	line := saleLine{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1), Discount: &neg}
	errs := ValidateStruct(&line)
	require.Len(t, errs, 1)
	assert.Equal(t, "gte", errs[0].Tag)
}
