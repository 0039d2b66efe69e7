package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoutingNumber(t *testing.T) {
	tests := []struct {
		routing string
		valid   bool
	}{
		{"021000021", true},  // JPMorgan Chase
		{"011401533", true},  // Citizens Bank
		{"091000019", true},  // Wells Fargo MN
		{"021000022", false}, // checksum off by one
		{"123456789", false},
		{"02100002", false},   // too short
		{"0210000211", false}, // too long
		{"02100002a", false},  // non-digit
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.routing, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateRoutingNumber(tt.routing))
		})
	}
}

func TestMaskedDetails(t *testing.T) {
	ach := ACHDetails{
		RoutingNumber: "021000021",
		AccountNumber: "123456789012",
		AccountType:   "checking",
		BankName:      "Chase",
	}

	masked := ach.Masked().(ACHDetails)
	assert.Equal(t, "****9012", masked.AccountNumber)
	// the original must stay untouched
	assert.Equal(t, "123456789012", ach.AccountNumber)

	wallet := WalletDetails{
		WalletAddress: "0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063",
		Network:       "polygon",
	}
	assert.Equal(t, "****A063", wallet.Masked().(WalletDetails).WalletAddress)

	wire := WireDetails{
		SwiftCode:     "DEUTDEFF",
		IBAN:          "DE89370400440532013000",
		AccountNumber: "532013000",
	}
	maskedWire := wire.Masked().(WireDetails)
	assert.Equal(t, "****3000", maskedWire.AccountNumber)
	assert.Equal(t, "****3000", maskedWire.IBAN)
	assert.Equal(t, "DEUTDEFF", maskedWire.SwiftCode)
}

func TestDecodeDetails(t *testing.T) {
	details, err := DecodeDetails(MethodKindACH, []byte(`{"routing_number":"021000021","account_number":"12345678","account_type":"checking","bank_name":"Chase"}`))
	require.NoError(t, err)

	ach, ok := details.(ACHDetails)
	require.True(t, ok)
	assert.Equal(t, "021000021", ach.RoutingNumber)
	assert.Equal(t, MethodKindACH, ach.Kind())

	_, err = DecodeDetails(MethodKind("paypal"), []byte(`{}`))
	assert.Error(t, err)

	_, err = DecodeDetails(MethodKindWallet, []byte(`not json`))
	assert.Error(t, err)
}
