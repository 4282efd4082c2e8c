// Package ticket derives the display token printed on access passes.
//
// The token is a 32-bit rolling hash over public reservation fields plus a
// constant salt. Anyone holding the ticket can recompute it, so it is a
// cosmetic verification aid for door staff, not an access-control mechanism.
package ticket

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const salt = "PULSE_INTERNAL_V3"

const verifyBase = "https://reserve.pulse-nightclub.com/verify"

// VerificationKey derives the fixed-format display token for a reservation.
func VerificationKey(id, email, date string) string {
	raw := fmt.Sprintf("%s-%s-%s-%s", id, email, date, salt)
	var h int32
	for _, c := range []byte(raw) {
		h = (h << 5) - h + int32(c)
	}
	abs := uint64(h)
	if h < 0 {
		abs = uint64(-int64(h))
	}
	tail := id
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return fmt.Sprintf("SEC-%s-%s", strings.ToUpper(strconv.FormatUint(abs, 16)), tail)
}

// QRPayload builds the URL embedded in the ticket's scannable code.
func QRPayload(id, key string) string {
	v := url.Values{}
	v.Set("id", id)
	v.Set("auth", key)
	return verifyBase + "?" + v.Encode()
}
