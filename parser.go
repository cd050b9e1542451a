package reversa

import (
	"errors"
	"strings"
)

// ErrEmptyPayload is the only condition under which an import is rejected
// outright. Everything else degrades to per-row outcomes.
var ErrEmptyPayload = errors.New("empty payload: no header or data rows found")

// RawRow is one data line of an export file, keyed by the raw header tokens.
// Line carries the 1-based physical line number for error reporting.
type RawRow struct {
	Line    int
	Content string
	Values  map[string]string
}

// RawFile is the output of the line parser: the header token sequence plus
// the ordered data rows.
type RawFile struct {
	Headers   []string
	Delimiter rune
	Rows      []RawRow
}

// ParseDelimited splits a raw text blob into header tokens and row maps.
// The delimiter is auto-detected when zero is passed. BOM and CR noise are
// stripped, blank lines dropped, and short rows padded with empty strings;
// malformed input never fails a parse.
func ParseDelimited(raw string, delimiter rune) (*RawFile, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var headerLine string
	var headerAt int
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerLine = line
			headerAt = i
			break
		}
	}
	if headerLine == "" {
		return nil, ErrEmptyPayload
	}

	if delimiter == 0 {
		delimiter = detectDelimiter(headerLine)
	}

	headers := splitFields(headerLine, delimiter)
	file := &RawFile{Headers: headers, Delimiter: delimiter}

	for i := headerAt + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := splitFields(line, delimiter)
		row := RawRow{
			Line:    i + 1,
			Content: line,
			Values:  make(map[string]string, len(headers)),
		}
		for j, h := range headers {
			if j < len(values) {
				row.Values[h] = values[j]
			} else {
				// Short row: missing trailing columns default to empty.
				row.Values[h] = ""
			}
		}
		file.Rows = append(file.Rows, row)
	}

	return file, nil
}

// detectDelimiter counts candidate separators in the header line and picks
// the most frequent one. Semicolon wins ties, matching the dominant dialect
// of the marketplace exports.
func detectDelimiter(line string) rune {
	best := ';'
	bestCount := strings.Count(line, ";")
	for _, c := range []rune{',', '\t'} {
		if n := strings.Count(line, string(c)); n > bestCount {
			best = c
			bestCount = n
		}
	}
	return best
}

// splitFields splits one line on the delimiter, trimming whitespace and one
// layer of surrounding double quotes per token. Exports quote inconsistently,
// so quoted embedded delimiters are not honored; this matches the upstream
// producers, which never emit them.
func splitFields(line string, delimiter rune) []string {
	parts := strings.Split(line, string(delimiter))
	fields := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) >= 2 && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
			p = strings.TrimSpace(p[1 : len(p)-1])
		}
		fields[i] = p
	}
	return fields
}
