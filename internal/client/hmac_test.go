package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-service/internal/config"
	"storefront-service/internal/model"
)

func sampleTransaction() *model.PaymobTransaction {
	return &model.PaymobTransaction{
		ID:            9001,
		AmountCents:   20000,
		CreatedAt:     "2026-03-04T12:30:00.000000",
		Currency:      "EGP",
		IntegrationID: 42,
		Order: model.PaymobTransactionOrder{
			ID:              555,
			MerchantOrderID: "order-7",
		},
		Owner:   17,
		Pending: false,
		SourceData: model.PaymobSourceData{
			Pan:     "2346",
			SubType: "MasterCard",
			Type:    "card",
		},
		Success: true,
	}
}

func TestTransactionDigest_FieldOrder(t *testing.T) {
	digest := transactionDigest(sampleTransaction())

	// fixed lexicographic concatenation, booleans as true/false
	assert.Equal(t,
		"200002026-03-04T12:30:00.000000EGPfalsefalse900142falsefalsefalsefalsefalsefalse55517false2346MasterCardcardtrue",
		digest)
}

func TestVerifyHMAC(t *testing.T) {
	c := NewPaymobClient(&config.Paymob{HMACSecret: "shared-secret"})
	txn := sampleTransaction()

	valid := ComputeHMAC(txn, "shared-secret")
	assert.True(t, c.VerifyHMAC(txn, valid))
	assert.True(t, c.VerifyHMAC(txn, strings.ToUpper(valid)), "hex case must not matter")

	// any altered payload byte must flip the digest
	tampered := sampleTransaction()
	tampered.AmountCents = 20001
	assert.False(t, c.VerifyHMAC(tampered, valid))

	tampered = sampleTransaction()
	tampered.Success = false
	assert.False(t, c.VerifyHMAC(tampered, valid))

	assert.False(t, c.VerifyHMAC(txn, ""))
	assert.False(t, c.VerifyHMAC(txn, "deadbeef"))
}

func TestVerifyHMAC_NoSecret(t *testing.T) {
	c := NewPaymobClient(&config.Paymob{})
	txn := sampleTransaction()

	assert.False(t, c.HasHMACSecret())
	assert.False(t, c.VerifyHMAC(txn, ComputeHMAC(txn, "")))
}
