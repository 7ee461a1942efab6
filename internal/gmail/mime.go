package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"
)

// Email is a plain text message to be sent through the Gmail API.
type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}

// compose renders e as an RFC 2822 message. Header values are Q-encoded when
// they contain non-ASCII text; the body is sent as UTF-8 with CRLF line ends.
func compose(e Email, now time.Time) (string, error) {
	to, err := mail.ParseAddress(e.To)
	if err != nil {
		return "", fmt.Errorf("recipient %q: %w", e.To, err)
	}

	var b strings.Builder
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	if e.From != "" {
		from, err := mail.ParseAddress(e.From)
		if err != nil {
			return "", fmt.Errorf("sender %q: %w", e.From, err)
		}
		header("From", from.String())
	}
	header("To", to.String())
	header("Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="UTF-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(e.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String(), nil
}

// encodeRaw produces the base64url form the API expects in Message.Raw.
func encodeRaw(msg string) string {
	return base64.URLEncoding.EncodeToString([]byte(msg))
}

func decodeBase64URL(data string) string {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail uses unpadded base64url
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(b)
}
