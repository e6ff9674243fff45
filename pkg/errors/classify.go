package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// Category is the user-facing bucket a submission failure falls into
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryNetwork       Category = "network"
	CategoryTimeout       Category = "timeout"
	CategoryConfiguration Category = "configuration"
	CategoryServer        Category = "server"
	CategoryUnknown       Category = "unknown"
)

const (
	MessageNetwork       = "網路連線失敗，請檢查您的網路狀態後重試"
	MessageTimeout       = "請求逾時，請檢查網路連線或稍後再試"
	MessagePermission    = "表單後端權限設定問題，請聯繫技術支援"
	MessageEndpoint      = "表單後端端點錯誤，請聯繫技術支援"
	MessageServer        = "表單後端執行錯誤，請稍後再試"
	messageValidationFmt = "資料驗證失敗: %s"
	messageGenericFmt    = "送出失敗: %s。請稍後再試或聯繫我們 (%s)"
)

// CategoryOf buckets an error returned by the submission pipeline
func CategoryOf(err error) Category {
	var (
		validation *ErrValidation
		network    *ErrNetwork
		config     *ErrConfiguration
		server     *ErrServer
	)
	switch {
	case err == nil:
		return ""
	case stderrors.As(err, &validation):
		return CategoryValidation
	case stderrors.As(err, &network):
		if network.Timeout {
			return CategoryTimeout
		}
		return CategoryNetwork
	case stderrors.As(err, &config):
		return CategoryConfiguration
	case stderrors.As(err, &server):
		return CategoryServer
	default:
		return CategoryUnknown
	}
}

// Classify turns the last pipeline error into the message shown to the customer.
// supportContact is appended to the generic fallback.
func Classify(err error, supportContact string) string {
	switch CategoryOf(err) {
	case CategoryValidation:
		var validation *ErrValidation
		stderrors.As(err, &validation)
		return fmt.Sprintf(messageValidationFmt, strings.Join(validation.Errors, ", "))
	case CategoryNetwork:
		return MessageNetwork
	case CategoryTimeout:
		return MessageTimeout
	case CategoryConfiguration:
		var config *ErrConfiguration
		stderrors.As(err, &config)
		if config.StatusCode == http.StatusNotFound {
			return MessageEndpoint
		}
		return MessagePermission
	case CategoryServer:
		return MessageServer
	case "":
		return ""
	default:
		return fmt.Sprintf(messageGenericFmt, err.Error(), supportContact)
	}
}
