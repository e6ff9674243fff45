// Package rules is the single rule set for customer fields. Both the step
// checks in the form and the pre-submit payload validation use it.
package rules

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxUploadBytes caps an uploaded stamp image after base64 decoding
const DefaultMaxUploadBytes = 2 * 1024 * 1024

var (
	ErrStampType     = errors.New("stamp image must be a PNG or JPEG data URL")
	ErrStampTooLarge = errors.New("stamp image is over the upload limit")
)

var stampMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Taiwan mobile (09xxxxxxxx) or landline with area code (02-08)
	phonePattern = regexp.MustCompile(`^(09\d{8}|0[2-8]\d{7,8})$`)
	taxIDPattern = regexp.MustCompile(`^\d{8}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// IsEmail applies the basic something@host.tld check
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizePhone strips spaces, dashes and parentheses
func NormalizePhone(s string) string {
	return phoneSeparators.Replace(s)
}

// IsTaiwanPhone checks a phone number in national format
func IsTaiwanPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}

// IsTaxID checks an 8 digit unified business number
func IsTaxID(s string) bool {
	return taxIDPattern.MatchString(s)
}

// CheckStampImage accepts a base64 PNG or JPEG data URL of at most maxBytes
// decoded bytes. A non-positive maxBytes means DefaultMaxUploadBytes.
func CheckStampImage(dataURL string, maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	header, data, ok := strings.Cut(dataURL, ",")
	if !ok {
		return ErrStampType
	}
	mime, ok := strings.CutPrefix(header, "data:")
	if !ok {
		return ErrStampType
	}
	mime, ok = strings.CutSuffix(mime, ";base64")
	if !ok || !stampMIMETypes[strings.ToLower(mime)] {
		return ErrStampType
	}
	if DecodedSize(data) > maxBytes {
		return ErrStampTooLarge
	}
	return nil
}

// DecodedSize is the byte length of padded standard base64 once decoded
func DecodedSize(b64 string) int {
	n := base64.StdEncoding.DecodedLen(len(b64))
	n -= len(b64) - len(strings.TrimRight(b64, "="))
	return max(n, 0)
}

// SizeLabel renders a byte limit the way the form shows it, e.g. "2MB"
func SizeLabel(n int) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%dKB", (n+1023)/1024)
}
