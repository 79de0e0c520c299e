package paymentgateway

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Field is a single (key, value) pair of signable payload data. Field order
// is significant: PayFast signs fields in its documented schema order, not
// alphabetically.
type Field struct {
	Key   string
	Value string
}

// Canonicalize serializes fields into the string PayFast hashes. Empty
// values are omitted entirely, values are escaped with the gateway's
// encoding table, and a non-blank passphrase is appended as the terminal
// component.
func Canonicalize(fields []Field, passphrase string) string {
	var sb strings.Builder

	for _, field := range fields {
		if field.Value == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(field.Key)
		sb.WriteByte('=')
		sb.WriteString(urlEncode(field.Value))
	}

	if passphrase != "" {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString("passphrase=")
		sb.WriteString(urlEncode(passphrase))
	}

	return sb.String()
}

// urlEncode reproduces the escaping table PayFast uses when computing
// signatures. It is deliberately stricter than net/url: the gateway encodes
// space as '+' and uses uppercase hex, and any deviation breaks signature
// comparison on their side.
func urlEncode(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))

	for i := 0; i < len(value); i++ {
		switch value[i] {
		case ' ':
			sb.WriteString("+")
		case '%':
			sb.WriteString("%25")
		case '!':
			sb.WriteString("%21")
		case '#':
			sb.WriteString("%23")
		case '$':
			sb.WriteString("%24")
		case '&':
			sb.WriteString("%26")
		case '\'':
			sb.WriteString("%27")
		case '(':
			sb.WriteString("%28")
		case ')':
			sb.WriteString("%29")
		case '*':
			sb.WriteString("%2A")
		case '+':
			sb.WriteString("%2B")
		case ',':
			sb.WriteString("%2C")
		case '/':
			sb.WriteString("%2F")
		case ':':
			sb.WriteString("%3A")
		case ';':
			sb.WriteString("%3B")
		case '=':
			sb.WriteString("%3D")
		case '?':
			sb.WriteString("%3F")
		case '@':
			sb.WriteString("%40")
		case '[':
			sb.WriteString("%5B")
		case ']':
			sb.WriteString("%5D")
		default:
			sb.WriteByte(value[i])
		}
	}

	return sb.String()
}

func digest(input string, algorithm Algorithm) string {
	if algorithm == AlgorithmSHA256 {
		sum := sha256.Sum256([]byte(input))
		return hex.EncodeToString(sum[:])
	}

	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Sign computes the lowercase hex signature over the canonical form of
// fields using the client's passphrase and configured algorithm.
func (c *Client) Sign(fields []Field) string {
	return digest(Canonicalize(fields, c.passphrase), c.algorithm)
}

// Verify recomputes the signature from fields and compares it against the
// presented one. A "signature" field in the input is stripped before
// recomputation. Comparison is case-insensitive and constant-time; malformed
// input never panics, it simply fails verification.
func (c *Client) Verify(fields []Field, presented string) bool {
	if presented == "" {
		return false
	}

	signable := make([]Field, 0, len(fields))
	for _, field := range fields {
		if field.Key == "signature" {
			continue
		}
		signable = append(signable, field)
	}

	expected := c.Sign(signable)
	presented = strings.ToLower(presented)

	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
