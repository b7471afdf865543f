package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	ProductID uuid.UUID `validate:"uuid_required"`
	Name      string    `validate:"required"`
	Quantity  int       `validate:"gt=0"`
	Kind      string    `validate:"required,oneof=in out"`
}

func TestValidateStruct_Passes(t *testing.T) {
	assert.Nil(t, ValidateStruct(&sampleInput{
		ProductID: uuid.New(),
		Name:      "Widget",
		Quantity:  3,
		Kind:      "in",
	}))
}

func TestValidateStruct_SnakeCasesFieldNames(t *testing.T) {
	err := ValidateStruct(&sampleInput{Quantity: -1, Kind: "transfer"})

	require.NotNil(t, err)
	assert.Equal(t, "is required", err.Fields["product_id"])
	assert.Equal(t, "is required", err.Fields["name"])
	assert.Equal(t, "must be greater than 0", err.Fields["quantity"])
	assert.Equal(t, "must be one of: in out", err.Fields["kind"])
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"Name":          "name",
		"ProductID":     "product_id",
		"UnitPrice":     "unit_price",
		"MinimumStock":  "minimum_stock",
		"StockQuantity": "stock_quantity",
	}
	for in, want := range tests {
		assert.Equal(t, want, toSnake(in), in)
	}
}
