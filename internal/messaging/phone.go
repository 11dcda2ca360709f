package messaging

import "strings"

// NormalizeChatAddress turns a raw WhatsApp JID (e.g. "5512981234567@c.us")
// into the canonical phone-style key used for the store and for outbound
// addressing: "+" followed by digits only. Returns "" when nothing usable
// remains.
func NormalizeChatAddress(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if at := strings.IndexByte(value, '@'); at >= 0 {
		value = value[:at]
	}
	digits := sanitizePhone(value)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

func sanitizePhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
