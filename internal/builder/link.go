package builder

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	KeyRecipient = "recipient"
	KeyMessage   = "message"
	KeyDatetime  = "datetime"
)

func BuildShareableLink(origin, path, recipient, message, datetimeLocal string) string {
	return origin + path + "?" + EncodeQuery(recipient, message, datetimeLocal)
}

// EncodeQuery keeps the key order fixed, so url.Values.Encode (which sorts)
// is not usable. Spaces become %20 rather than +.
func EncodeQuery(recipient, message, datetime string) string {
	var b strings.Builder
	writePair(&b, KeyRecipient, recipient)
	b.WriteByte('&')
	writePair(&b, KeyMessage, message)
	b.WriteByte('&')
	writePair(&b, KeyDatetime, datetime)
	return b.String()
}

func writePair(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(escapeValue(value))
}

// QueryEscape never leaves a literal '+' in its output, so every '+' left
// is an encoded space.
func escapeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// ParseQuery decodes the three known keys. Absent keys decode to "".
func ParseQuery(rawQuery string) (Input, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return Input{}, fmt.Errorf("invalid query: %w", err)
	}
	return InputFromValues(values), nil
}

func InputFromValues(values url.Values) Input {
	return Input{
		Recipient: values.Get(KeyRecipient),
		Message:   values.Get(KeyMessage),
		Datetime:  values.Get(KeyDatetime),
	}
}

func ParseShareableLink(rawURL string) (Input, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Input{}, fmt.Errorf("invalid link: %w", err)
	}
	return ParseQuery(u.RawQuery)
}
