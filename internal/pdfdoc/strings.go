package pdfdoc

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

type fieldPattern struct {
	literal *regexp.Regexp
	hex     *regexp.Regexp
}

var infoFields = map[string]fieldPattern{}

func init() {
	for _, f := range []string{"Title", "Author", "Subject", "Creator", "Producer", "CreationDate", "ModDate"} {
		infoFields[f] = compileField(f)
	}
}

func compileField(field string) fieldPattern {
	return fieldPattern{
		// /Field (literal), allowing escaped parens inside the literal
		literal: regexp.MustCompile(`/` + field + `\s*\(((?:\\.|[^\\)])*)\)`),
		// /Field <hex>
		hex: regexp.MustCompile(`/` + field + `\s*<([0-9A-Fa-f\s]+)>`),
	}
}

// extractField looks for /Field (value) or /Field <hex> in text.
func extractField(text, field string) string {
	p, ok := infoFields[field]
	if !ok {
		p = compileField(field)
	}
	if m := p.literal.FindStringSubmatch(text); len(m) > 1 {
		return decodePDFString(m[1])
	}
	if m := p.hex.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(decodeHexString(m[1]))
	}
	return ""
}

// decodePDFString handles the literal-string escapes that show up in Info
// dictionaries.
func decodePDFString(s string) string {
	if strings.HasPrefix(s, "\xfe\xff") {
		s = decodeUTF16BE([]byte(s[2:]))
	}
	r := strings.NewReplacer(
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
	)
	return strings.TrimSpace(r.Replace(s))
}

// decodeHexString decodes a hex string, treating even-length payloads as
// UTF-16BE (with or without BOM).
func decodeHexString(hex string) string {
	hex = strings.Join(strings.Fields(hex), "")
	hex = strings.TrimPrefix(hex, "FEFF")
	hex = strings.TrimPrefix(hex, "feff")

	if len(hex)%2 != 0 {
		return ""
	}

	raw := make([]byte, len(hex)/2)
	for i := range raw {
		raw[i] = hexValue(hex[i*2])<<4 | hexValue(hex[i*2+1])
	}
	if len(raw)%2 != 0 {
		return string(raw)
	}
	return decodeUTF16BE(raw)
}

func decodeUTF16BE(b []byte) string {
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		u16[i] = uint16(b[i*2])<<8 | uint16(b[i*2+1])
	}
	return string(utf16.Decode(u16))
}

func hexValue(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// parseDate parses a PDF date string: D:YYYYMMDDHHmmSSOHH'mm'.
// Every component after the year is optional.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "D:")
	if len(s) < 4 {
		return time.Time{}, false
	}

	digits := 0
	for digits < len(s) && digits < 14 && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits < 4 {
		return time.Time{}, false
	}
	num := s[:digits]
	rest := s[digits:]

	part := func(from, to, def int) int {
		if len(num) < to {
			return def
		}
		v, _ := strconv.Atoi(num[from:to])
		return v
	}
	year := part(0, 4, 0)
	month := part(4, 6, 1)
	day := part(6, 8, 1)
	hour := part(8, 10, 0)
	minute := part(10, 12, 0)
	sec := part(12, 14, 0)

	loc := time.UTC
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		tz := strings.ReplaceAll(rest[1:], "'", "")
		var oh, om int
		if len(tz) >= 2 {
			oh, _ = strconv.Atoi(tz[:2])
		}
		if len(tz) >= 4 {
			om, _ = strconv.Atoi(tz[2:4])
		}
		offset := oh*3600 + om*60
		if rest[0] == '-' {
			offset = -offset
		}
		loc = time.FixedZone("", offset)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc).UTC(), true
}
