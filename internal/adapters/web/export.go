package web

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
)

// exportReport serializes an assembled report into the requested format.
// An empty format returns the data as JSON; unknown non-empty formats fall
// back to JSON as well. A single object is treated as a one-row table for
// csv and pdf.
func exportReport(w http.ResponseWriter, data any, format, filename string) {
	switch format {
	case "":
		writeJSON(w, data)

	case "csv":
		headers, rows, err := tabulate(data)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename+".csv")
		cw := csv.NewWriter(w)
		_ = cw.Write(headers)
		for _, row := range rows {
			safe := make([]string, len(row))
			for i, cell := range row {
				safe[i] = csvSafe(cell)
			}
			_ = cw.Write(safe)
		}
		cw.Flush()

	case "pdf":
		headers, rows, err := tabulate(data)
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		doc, err := renderPDF(humanizeTitle(filename), headers, rows)
		if err != nil {
			log.Printf("pdf rendering failed for %s: %v", filename, err)
			writeError(w, "Could not generate PDF", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename+".pdf")
		_, _ = w.Write(doc)

	default:
		writeJSON(w, data)
	}
}

// tabulate flattens a report result into a header row and body rows.
// Accepts a struct, a map, or a slice of either; anything else is a
// validation error. Header order follows the first element: declaration
// order for structs (their json tags), sorted order for maps. Values a
// later element lacks render as empty strings.
func tabulate(data any) ([]string, [][]string, error) {
	v := unwrap(reflect.ValueOf(data))
	if !v.IsValid() {
		return nil, nil, fmt.Errorf("data must be an object or a list of objects")
	}

	var elems []reflect.Value
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			elems = append(elems, unwrap(v.Index(i)))
		}
	case reflect.Struct, reflect.Map:
		elems = []reflect.Value{v}
	default:
		return nil, nil, fmt.Errorf("data must be an object or a list of objects")
	}

	for _, e := range elems {
		if !e.IsValid() || (e.Kind() != reflect.Struct && e.Kind() != reflect.Map) {
			return nil, nil, fmt.Errorf("all items in data must be objects")
		}
	}

	if len(elems) == 0 {
		return []string{}, nil, nil
	}

	headers := keysOf(elems[0])
	rows := make([][]string, 0, len(elems))
	for _, e := range elems {
		fields := fieldMap(e)
		row := make([]string, len(headers))
		for i, h := range headers {
			if val, ok := fields[h]; ok {
				row[i] = cellString(val)
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// keysOf returns the column names of a struct or map element.
func keysOf(v reflect.Value) []string {
	if v.Kind() == reflect.Map {
		var keys []string
		for _, k := range v.MapKeys() {
			keys = append(keys, fmt.Sprint(k.Interface()))
		}
		sort.Strings(keys)
		return keys
	}

	var keys []string
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name := jsonName(f); name != "" {
			keys = append(keys, name)
		}
	}
	return keys
}

func fieldMap(v reflect.Value) map[string]any {
	out := make(map[string]any)
	if v.Kind() == reflect.Map {
		for _, k := range v.MapKeys() {
			out[fmt.Sprint(k.Interface())] = v.MapIndex(k).Interface()
		}
		return out
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name := jsonName(f); name != "" {
			out[name] = v.Field(i).Interface()
		}
	}
	return out
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" {
		return f.Name
	}
	return tag
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// csvSafe prevents CSV formula injection by prefixing cells that begin
// with a formula-triggering character. A leading minus is left alone so
// negative amounts survive a round trip.
func csvSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// renderPDF builds a titled single-table document in memory.
func renderPDF(title string, headers []string, rows [][]string) ([]byte, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("no columns to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(headers))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(255, 255, 255)
	for _, h := range headers {
		pdf.CellFormat(colW, 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for _, cell := range row {
			pdf.CellFormat(colW, 7, cell, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// humanizeTitle turns a snake_case filename into a display title.
func humanizeTitle(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
