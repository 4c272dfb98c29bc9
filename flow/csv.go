package flow

import "strings"

// csvDelimiters are the candidate delimiters considered by the sniffer,
// in tie-break priority order: comma beats semicolon beats tab.
var csvDelimiters = []rune{',', ';', '\t'}

// SniffDelimiter inspects the first line of delimited text and picks the
// most plausible delimiter.
//
// The scan is quote-aware: a '"' toggles quoted mode, a doubled '""'
// inside quotes is an escaped quote, and delimiters inside quoted fields
// are not counted. The candidate with the highest unquoted count wins;
// on a tie the earlier candidate in priority order wins, so comma is
// chosen whenever the semicolon count does not exceed the comma count.
// Text with no candidate occurrences defaults to comma.
func SniffDelimiter(firstLine string) rune {
	counts := make(map[rune]int, len(csvDelimiters))

	inQuotes := false
	runes := []rune(firstLine)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch == '"' {
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				i++ // escaped quote
				continue
			}
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		for _, d := range csvDelimiters {
			if ch == d {
				counts[d]++
			}
		}
	}

	best := csvDelimiters[0]
	for _, d := range csvDelimiters[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

// SplitCSVLine splits one record into fields on the delimiter,
// respecting quoted fields and '""' escapes. Quotes wrapping a field are
// stripped; embedded delimiters and escaped quotes are preserved.
func SplitCSVLine(line string, delimiter rune) []string {
	fields := make([]string, 0, 4)
	var field strings.Builder

	inQuotes := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == delimiter && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(ch)
		}
	}
	fields = append(fields, field.String())
	return fields
}

// ParseCSV parses delimited text into rows, sniffing the delimiter from
// the first line.
//
// Record splitting is quote-aware too: a newline inside a quoted field
// stays inside its field instead of starting a new record. CRLF line
// endings are normalized. Trailing empty records are dropped.
func ParseCSV(text string) ([][]string, rune) {
	records := splitRecords(text)

	delimiter := ','
	if len(records) > 0 {
		delimiter = SniffDelimiter(records[0])
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, SplitCSVLine(record, delimiter))
	}
	return rows, delimiter
}

// splitRecords splits text into records on unquoted newlines.
func splitRecords(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	records := make([]string, 0, 8)
	var record strings.Builder

	inQuotes := false
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				record.WriteString(`""`)
				i++
				continue
			}
			inQuotes = !inQuotes
			record.WriteRune(ch)
		case ch == '\n' && !inQuotes:
			records = append(records, record.String())
			record.Reset()
		default:
			record.WriteRune(ch)
		}
	}
	if record.Len() > 0 {
		records = append(records, record.String())
	}

	// Drop trailing blank records from terminal newlines.
	for len(records) > 0 && strings.TrimSpace(records[len(records)-1]) == "" {
		records = records[:len(records)-1]
	}
	return records
}
