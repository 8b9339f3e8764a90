// Package export writes classification results as JSON lines, JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/ramonehamilton/mtg-metagame/internal/batch"
)

// Format represents the export format.
type Format string

const (
	// FormatJSONL writes one JSON object per result.
	FormatJSONL Format = "jsonl"
	// FormatJSON writes the whole run as one JSON document.
	FormatJSON Format = "json"
	// FormatCSV writes one row per result with a header.
	FormatCSV Format = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSONL, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Row is the flat CSV form of a result.
type Row struct {
	Index           int     `csv:"index"`
	DeckID          string  `csv:"deck_id"`
	Source          string  `csv:"source"`
	Label           string  `csv:"label"`
	MatchKind       string  `csv:"match_kind"`
	Colors          string  `csv:"colors"`
	Archetype       string  `csv:"archetype"`
	Variant         string  `csv:"variant"`
	FallbackOverlap float64 `csv:"fallback_overlap"`
}

// Rows flattens results for CSV output.
func Rows(results []batch.Result) []Row {
	rows := make([]Row, len(results))
	for i, res := range results {
		rows[i] = Row{
			Index:           res.Index,
			DeckID:          res.DeckID,
			Source:          res.Source,
			Label:           res.FinalLabel,
			MatchKind:       res.MatchKind.String(),
			Colors:          res.Colors.String(),
			Archetype:       res.Archetype,
			Variant:         res.Variant,
			FallbackOverlap: res.FallbackOverlap,
		}
	}
	return rows
}

// WriteRun writes a run's results to w in the given format.
func WriteRun(w io.Writer, format Format, run *batch.Run) error {
	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, res := range run.Results {
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("failed to write result %s: %w", res.DeckID, err)
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			return fmt.Errorf("failed to write run: %w", err)
		}
		return nil
	case FormatCSV:
		return writeCSV(w, Rows(run.Results))
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// writeCSV writes a slice of structs as CSV, taking headers from csv tags.
func writeCSV(w io.Writer, data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("CSV export requires a slice, got %s", v.Kind())
	}

	elemType := v.Type().Elem()
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("CSV export requires a slice of structs")
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeaders(elemType)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := 0; i < v.Len(); i++ {
		if err := writer.Write(csvRow(v.Index(i))); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvHeaders(t reflect.Type) []string {
	var headers []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("csv") == "-" {
			continue
		}
		if tag := field.Tag.Get("csv"); tag != "" {
			headers = append(headers, tag)
		} else {
			headers = append(headers, field.Name)
		}
	}
	return headers
}

func csvRow(v reflect.Value) []string {
	var row []string
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("csv") == "-" {
			continue
		}
		row = append(row, csvValue(v.Field(i)))
	}
	return row
}

func csvValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float32, reflect.Float64:
		if v.Float() == 0 {
			return ""
		}
		return strconv.FormatFloat(v.Float(), 'f', 4, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
