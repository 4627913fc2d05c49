package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-intake/internal/domain/order"
	"github.com/xenking/order-intake/internal/domain/supplier"
)

const alphaFullPayload = `{
	"customerNumber": 7,
	"orderPlaced": "2026-03-14T10:00:00Z",
	"billTo": {
		"addressLine1": "1 Main St",
		"town": "Leeds",
		"county": "West Yorkshire",
		"postCode": "LS1 1AA",
		"countryCode": "GB"
	},
	"shipTo": {
		"addressLine1": "Unit 4, Dock Rd",
		"town": "Hull",
		"postCode": "HU1 2BB",
		"countryCode": "GB"
	},
	"lines": [
		{"productNumber": 100, "count": 2, "unitCost": "9.99"},
		{"productNumber": 101, "count": 3, "unitCost": "4.50"}
	]
}`

func violationFields(t *testing.T, err error) []string {
	t.Helper()

	var vs order.Violations
	require.ErrorAs(t, err, &vs)

	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Field
	}
	return out
}

func TestAlphaAdapt_FullPayload(t *testing.T) {
	o, err := NewAlpha().Adapt(context.Background(), []byte(alphaFullPayload))
	require.NoError(t, err)

	require.NotNil(t, o.CustomerID)
	assert.Equal(t, int64(7), *o.CustomerID)
	assert.Empty(t, o.CustomerEmail)
	assert.Equal(t, supplier.Alpha.ID, o.SupplierID)
	assert.Equal(t, order.StatusReceived, o.Status)
	assert.Equal(t, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), o.OrderDate)

	assert.Equal(t, order.Address{
		Street:     "1 Main St",
		City:       "Leeds",
		Region:     "West Yorkshire",
		PostalCode: "LS1 1AA",
		Country:    "GB",
	}, o.BillingAddress)

	require.NotNil(t, o.DeliveryAddress)
	assert.Equal(t, "Unit 4, Dock Rd", o.DeliveryAddress.Street)

	require.Len(t, o.Items, 2)
	assert.Equal(t, int64(100), o.Items[0].ProductID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.True(t, o.Items[0].Price.Equal(mustDecimal(t, "9.99")))
	assert.Equal(t, int64(101), o.Items[1].ProductID)
}

func TestAlphaAdapt_NoShipTo(t *testing.T) {
	payload := `{
		"customerNumber": 7,
		"billTo": {"addressLine1": "1 Main St"},
		"lines": [{"productNumber": 100, "count": 1, "unitCost": "1.00"}]
	}`

	o, err := NewAlpha().Adapt(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.Nil(t, o.DeliveryAddress)
}

func TestAlphaAdapt_ShipToWithoutStreet(t *testing.T) {
	payload := `{
		"customerNumber": 7,
		"billTo": {"addressLine1": "1 Main St"},
		"shipTo": {"town": "Hull", "postCode": "HU1 2BB"},
		"lines": [{"productNumber": 100, "count": 1, "unitCost": "1.00"}]
	}`

	o, err := NewAlpha().Adapt(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.Nil(t, o.DeliveryAddress, "a ship-to block without a street is no delivery address")
}

func TestAlphaAdapt_DefaultsOrderDate(t *testing.T) {
	fixed := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	a := NewAlpha()
	a.now = func() time.Time { return fixed }

	payload := `{
		"customerNumber": 7,
		"billTo": {"addressLine1": "1 Main St"},
		"lines": [{"productNumber": 100, "count": 1, "unitCost": "1.00"}]
	}`

	o, err := a.Adapt(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, fixed, o.OrderDate)
}

func TestAlphaAdapt_MalformedJSON(t *testing.T) {
	_, err := NewAlpha().Adapt(context.Background(), []byte(`{"customerNumber":`))
	assert.Contains(t, violationFields(t, err), "payload")
}

func TestAlphaAdapt_MissingCustomerNumber(t *testing.T) {
	payload := `{
		"billTo": {"addressLine1": "1 Main St"},
		"lines": [{"productNumber": 100, "count": 1, "unitCost": "1.00"}]
	}`

	_, err := NewAlpha().Adapt(context.Background(), []byte(payload))
	assert.Contains(t, violationFields(t, err), "customerNumber")
}

func TestAlphaAdapt_MissingBillTo(t *testing.T) {
	payload := `{
		"customerNumber": 7,
		"lines": [{"productNumber": 100, "count": 1, "unitCost": "1.00"}]
	}`

	_, err := NewAlpha().Adapt(context.Background(), []byte(payload))
	assert.Contains(t, violationFields(t, err), "billTo.addressLine1")
}

func TestAlphaAdapt_BadProductNumber(t *testing.T) {
	payload := `{
		"customerNumber": 7,
		"billTo": {"addressLine1": "1 Main St"},
		"lines": [
			{"productNumber": 100, "count": 1, "unitCost": "1.00"},
			{"productNumber": 0, "count": 1, "unitCost": "1.00"}
		]
	}`

	_, err := NewAlpha().Adapt(context.Background(), []byte(payload))
	assert.Contains(t, violationFields(t, err), "lines[1].productNumber")
}

func TestAlphaAdapt_CollectsAllViolations(t *testing.T) {
	payload := `{"lines": [{"productNumber": -1, "count": 1, "unitCost": "1.00"}]}`

	_, err := NewAlpha().Adapt(context.Background(), []byte(payload))
	assert.ElementsMatch(t, []string{
		"customerNumber",
		"billTo.addressLine1",
		"lines[0].productNumber",
	}, violationFields(t, err))
}

func TestAlphaIdentity(t *testing.T) {
	a := NewAlpha()
	assert.Equal(t, supplier.Alpha, a.Supplier())
	assert.Equal(t, "ALPHA", a.Tag())
}
