package client

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"strings"

	"storefront-service/internal/model"
)

// transactionDigest concatenates the transaction fields in the gateway's
// fixed lexicographic order. The order and the "true"/"false" boolean
// rendering are part of the external contract and must match byte-for-byte.
func transactionDigest(txn *model.PaymobTransaction) string {
	fields := []string{
		strconv.FormatInt(txn.AmountCents, 10),
		txn.CreatedAt,
		txn.Currency,
		strconv.FormatBool(txn.ErrorOccured),
		strconv.FormatBool(txn.HasParentTransaction),
		strconv.FormatInt(txn.ID, 10),
		strconv.FormatInt(txn.IntegrationID, 10),
		strconv.FormatBool(txn.Is3DSecure),
		strconv.FormatBool(txn.IsAuth),
		strconv.FormatBool(txn.IsCapture),
		strconv.FormatBool(txn.IsRefunded),
		strconv.FormatBool(txn.IsStandalonePayment),
		strconv.FormatBool(txn.IsVoided),
		strconv.FormatInt(txn.Order.ID, 10),
		strconv.FormatInt(txn.Owner, 10),
		strconv.FormatBool(txn.Pending),
		txn.SourceData.Pan,
		txn.SourceData.SubType,
		txn.SourceData.Type,
		strconv.FormatBool(txn.Success),
	}
	return strings.Join(fields, "")
}

// ComputeHMAC returns the hex HMAC-SHA512 of the transaction digest.
func ComputeHMAC(txn *model.PaymobTransaction, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(transactionDigest(txn)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *paymobClientImpl) VerifyHMAC(txn *model.PaymobTransaction, received string) bool {
	if c.hmacSecret == "" || received == "" {
		return false
	}
	expected := ComputeHMAC(txn, c.hmacSecret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(received)))
}

func (c *paymobClientImpl) HasHMACSecret() bool {
	return c.hmacSecret != ""
}
