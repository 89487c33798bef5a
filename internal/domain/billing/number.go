package billing

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateInvoiceNumber produces an INV-<year>-<4 digits> number. The
// suffix combines millis and a random component so fast successive calls
// still differ.
func GenerateInvoiceNumber(now time.Time) string {
	ms2 := now.UnixMilli() % 100
	r2 := rand.Intn(90) + 10
	return fmt.Sprintf("INV-%d-%02d%d", now.Year(), ms2, r2)
}
