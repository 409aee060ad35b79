package whatsapp

import (
	"net/url"
	"strings"
)

// OrderURL builds the wa.me deep link that opens a chat with the store,
// prefilled with the order message.
func OrderURL(phone, countryCode, text string) string {
	return "https://wa.me/" + NormalizePhone(phone, countryCode) + "?text=" + url.QueryEscape(text)
}

// DialURL is the telephony bypass: a direct dial action, no message.
func DialURL(phone string) string {
	return "tel:" + phone
}

// NormalizePhone strips everything but digits and prefixes the country
// calling code when absent, dropping a single leading zero from the local
// part (07701... becomes 9647701...).
func NormalizePhone(phone, countryCode string) string {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	cleaned := sb.String()
	if strings.HasPrefix(cleaned, countryCode) {
		return cleaned
	}
	return countryCode + strings.TrimPrefix(cleaned, "0")
}
