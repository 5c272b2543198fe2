package payments

import (
	"strings"

	"github.com/miguelfer1410/cdp-sub001/store"
)

// Easypay reports a payment lifecycle through free-form status strings.
// Only the terminal ones move the ledger; everything else keeps the row
// Pending until the next check.
const (
	externalSuccess  = "success"
	externalCaptured = "captured"
	externalDeleted  = "deleted"
	externalFailed   = "failed"
	externalPending  = "pending"
)

// mapExternalStatus translates the gateway status into a ledger status.
// The second return value is false when the external status carries no
// transition, either because the payment is still open or because the
// gateway introduced a value we do not know.
func mapExternalStatus(external string) (string, bool) {
	switch strings.ToLower(external) {
	case externalSuccess, externalCaptured:
		return store.PAYMENT_COMPLETED, true
	case externalDeleted, externalFailed:
		return store.PAYMENT_FAILED, true
	default:
		return "", false
	}
}
