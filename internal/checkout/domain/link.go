package domain

import (
	"strings"
)

// DeepLink points the buyer at the shop's chat with the message prefilled.
func DeepLink(chatBase, phoneDigits, message string) string {
	return strings.TrimRight(chatBase, "/") + "/" + phoneDigits + "?text=" + encodeURIComponent(message)
}

const upperhex = "0123456789ABCDEF"

// encodeURIComponent escapes every byte outside A-Z a-z 0-9 and -_.!~*'() so the text
// survives any chat client. Spaces become %20, not +.
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
