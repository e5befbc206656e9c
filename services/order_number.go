package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderNumberFunc produces a customer-facing order number. Uniqueness is
// ultimately enforced by the orders.order_number index; callers retry on collision.
type OrderNumberFunc func(now time.Time) string

// DefaultOrderNumber returns numbers like ORD-20261018-3FA85F64: the UTC date
// followed by 32 random bits.
func DefaultOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.UTC().Format("20060102") + "-" + suffix
}
