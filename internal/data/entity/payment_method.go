package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MethodKind string

const (
	MethodKindACH    MethodKind = "ach"
	MethodKindWallet MethodKind = "wallet"
	MethodKindWire   MethodKind = "wire"
)

type MethodStatus string

const (
	MethodStatusActive              MethodStatus = "active"
	MethodStatusInactive            MethodStatus = "inactive"
	MethodStatusPendingVerification MethodStatus = "pending_verification"
	MethodStatusRejected            MethodStatus = "rejected"
)

type VerificationStatus string

const (
	VerificationPending      VerificationStatus = "pending"
	VerificationVerified     VerificationStatus = "verified"
	VerificationFailed       VerificationStatus = "failed"
	VerificationManualReview VerificationStatus = "manual_review"
)

// MethodDetails is the tagged variant holding the kind-specific destination
// payload. Exactly one concrete type exists per MethodKind.
type MethodDetails interface {
	Kind() MethodKind
	// Masked returns a display copy exposing only the last 4 characters of
	// account-number-shaped fields.
	Masked() MethodDetails
}

type ACHDetails struct {
	RoutingNumber string `json:"routing_number" validate:"required,len=9,numeric"`
	AccountNumber string `json:"account_number" validate:"required,min=4,max=17,numeric"`
	AccountType   string `json:"account_type" validate:"required,oneof=checking savings"`
	BankName      string `json:"bank_name" validate:"required,max=100"`
}

func (ACHDetails) Kind() MethodKind { return MethodKindACH }

func (d ACHDetails) Masked() MethodDetails {
	d.AccountNumber = maskAccount(d.AccountNumber)
	return d
}

type WalletDetails struct {
	WalletAddress string `json:"wallet_address" validate:"required,min=20,max=128"`
	Network       string `json:"network" validate:"required,oneof=ethereum polygon base solana"`
}

func (WalletDetails) Kind() MethodKind { return MethodKindWallet }

func (d WalletDetails) Masked() MethodDetails {
	d.WalletAddress = maskAccount(d.WalletAddress)
	return d
}

type WireDetails struct {
	SwiftCode     string `json:"swift_code" validate:"required,min=8,max=11"`
	IBAN          string `json:"iban" validate:"omitempty,min=15,max=34"`
	AccountNumber string `json:"account_number" validate:"required,min=4,max=34"`
	RoutingNumber string `json:"routing_number" validate:"omitempty,len=9,numeric"`
}

func (WireDetails) Kind() MethodKind { return MethodKindWire }

func (d WireDetails) Masked() MethodDetails {
	d.AccountNumber = maskAccount(d.AccountNumber)
	if d.IBAN != "" {
		d.IBAN = maskAccount(d.IBAN)
	}
	return d
}

func maskAccount(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// DecodeDetails unmarshals a stored details payload into the concrete
// variant for the given kind.
func DecodeDetails(kind MethodKind, raw []byte) (MethodDetails, error) {
	switch kind {
	case MethodKindACH:
		var d ACHDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode ach details: %w", err)
		}
		return d, nil
	case MethodKindWallet:
		var d WalletDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode wallet details: %w", err)
		}
		return d, nil
	case MethodKindWire:
		var d WireDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode wire details: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown method kind %q", kind)
	}
}

// ValidateRoutingNumber checks a 9-digit ABA routing number against its
// checksum: 3(d1+d4+d7) + 7(d2+d5+d8) + (d3+d6+d9) must be divisible by 10.
func ValidateRoutingNumber(routing string) bool {
	if len(routing) != 9 {
		return false
	}
	sum := 0
	weights := [9]int{3, 7, 1, 3, 7, 1, 3, 7, 1}
	for i := 0; i < 9; i++ {
		d := routing[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * weights[i]
	}
	return sum%10 == 0
}

type PaymentMethod struct {
	Base
	OperatorID         uuid.UUID          `db:"operator_id"`
	Kind               MethodKind         `db:"kind"`
	IsPrimary          bool               `db:"is_primary"`
	Status             MethodStatus       `db:"status"`
	VerificationStatus VerificationStatus `db:"verification_status"`
	Details            MethodDetails      `db:"details"`
	LastUsedAt         *time.Time         `db:"last_used_at"`
}
