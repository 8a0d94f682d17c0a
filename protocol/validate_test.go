package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validFlightIntent() Intent {
	maxPrice := 500.0
	return Intent{
		TransactionID: "txn-123",
		RequesterID:   "urn:ac:demo:001",
		ServiceType:   ServiceFlightBooking,
		Params: map[string]string{
			"from": "CDG",
			"to":   "JFK",
			"date": "2025-11-15",
		},
		Constraints: Constraints{MaxPrice: &maxPrice, Currency: "EUR"},
	}
}

func TestIntentValidateOK(t *testing.T) {
	intent := validFlightIntent()
	require.NoError(t, intent.Validate())
}

func TestIntentValidateErrors(t *testing.T) {
	negative := -1.0

	tests := []struct {
		name   string
		mutate func(*Intent)
		field  string
	}{
		{"missing transaction id", func(in *Intent) { in.TransactionID = "" }, "transactionId"},
		{"missing requester id", func(in *Intent) { in.RequesterID = "" }, "requesterId"},
		{"missing service type", func(in *Intent) { in.ServiceType = "" }, "serviceType"},
		{"unknown service type", func(in *Intent) { in.ServiceType = "booking:yacht" }, "serviceType"},
		{"missing variant param", func(in *Intent) { delete(in.Params, "date") }, "params.date"},
		{"empty variant param", func(in *Intent) { in.Params["from"] = "" }, "params.from"},
		{"negative max price", func(in *Intent) { in.Constraints.MaxPrice = &negative }, "constraints.maxPrice"},
		{"bad currency code", func(in *Intent) { in.Constraints.Currency = "EURO" }, "constraints.currency"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			intent := validFlightIntent()
			tc.mutate(&intent)

			err := intent.Validate()
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestHotelVariantRequiredParams(t *testing.T) {
	intent := Intent{
		TransactionID: "txn-h1",
		RequesterID:   "urn:ac:demo:001",
		ServiceType:   ServiceHotelBooking,
		Params: map[string]string{
			"city":     "Paris",
			"checkIn":  "2025-11-15",
			"checkOut": "2025-11-18",
		},
	}
	require.NoError(t, intent.Validate())

	delete(intent.Params, "checkOut")
	require.Error(t, intent.Validate())
}

func TestCommitRequestValidate(t *testing.T) {
	req := CommitRequest{TransactionID: "txn-1", OfferID: "offer-1"}
	require.NoError(t, req.Validate())

	require.Error(t, (&CommitRequest{OfferID: "offer-1"}).Validate())
	require.Error(t, (&CommitRequest{TransactionID: "txn-1"}).Validate())
}

func TestSupplierInfoSupports(t *testing.T) {
	info := SupplierInfo{SupportedServices: []string{ServiceFlightBooking, ServiceHotelBooking}}
	require.True(t, info.Supports(ServiceFlightBooking))
	require.False(t, info.Supports(ServiceWeatherForecast))
}
