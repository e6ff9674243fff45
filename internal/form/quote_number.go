package form

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewQuoteNumber formats BS + YYYYMMDD + three random digits, e.g. BS20261019042.
// Numbers are not guaranteed unique; the sheet row also carries the timestamp.
func NewQuoteNumber(now time.Time, r *rand.Rand) string {
	var n int
	if r == nil {
		n = rand.IntN(1000)
	} else {
		n = r.IntN(1000)
	}
	return fmt.Sprintf("BS%s%03d", now.Format("20060102"), n)
}
