package invoicenumber

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const DefaultTemplate = "{CODE}/{FY}/{SEQ4}"

// Template returns the number template for the configured sequence padding.
func Template(padding int) string {
	if padding <= 0 {
		return DefaultTemplate
	}
	return fmt.Sprintf("{CODE}/{FY}/{SEQ%d}", padding)
}

// Format renders an invoice number from a template. It is pure: same inputs,
// same output.
func Format(template, hotelCode, financialYear string, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}
	if strings.TrimSpace(hotelCode) == "" {
		return "", fmt.Errorf("hotel code is empty")
	}

	out := template
	out = strings.ReplaceAll(out, "{CODE}", hotelCode)
	out = strings.ReplaceAll(out, "{FY}", financialYear)
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in invoice number: %s", out)
	}
	return out, nil
}
