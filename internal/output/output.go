// internal/output/output.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fwtrace.io/internal/models"
)

// Renderer consumes enriched records in arrival order
type Renderer interface {
	Render(rec *models.ActionRecord) error
	Close() error
}

// TextRenderer writes one human-readable block per record
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer creates a text renderer
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

// Render writes one record
func (r *TextRenderer) Render(rec *models.ActionRecord) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s  %s", rec.TS, rec.Action)
	if rec.Proto != "" {
		fmt.Fprintf(&sb, "  %s", rec.Proto)
	}
	sb.WriteByte('\n')

	writeAddress(&sb, "SRC", rec.Src)
	writeAddress(&sb, "DST", rec.Dst)

	_, err := io.WriteString(r.w, sb.String())
	return err
}

// Close is a no-op for text output
func (r *TextRenderer) Close() error {
	return nil
}

func writeAddress(sb *strings.Builder, label string, a *models.AddressInfo) {
	fmt.Fprintf(sb, "  %s %s", label, a.IP)
	if a.Port != 0 {
		fmt.Fprintf(sb, ":%d", a.Port)
	}

	tags := make([]string, 0, len(a.Scope))
	for _, t := range a.Scope {
		tags = append(tags, t.String())
	}
	fmt.Fprintf(sb, "  [%s]", strings.Join(tags, ","))

	if a.Host != "" {
		fmt.Fprintf(sb, "  host=%s", a.Host)
	}
	if a.Domain != "" {
		fmt.Fprintf(sb, " domain=%s", a.Domain)
	}
	if a.Iface != "" {
		fmt.Fprintf(sb, " if=%s", a.Iface)
	}
	if a.Net != "" {
		fmt.Fprintf(sb, " net=%s", a.Net)
	}
	if a.Name != "" {
		fmt.Fprintf(sb, " name=%s", a.Name)
	}
	if a.Descr != "" {
		fmt.Fprintf(sb, " descr=%q", a.Descr)
	}
	if a.Country != "" {
		fmt.Fprintf(sb, " country=%s", a.Country)
	}
	if a.City != "" {
		fmt.Fprintf(sb, " city=%s", a.City)
	}
	if a.Err != "" {
		fmt.Fprintf(sb, "  ERROR: %s", a.Err)
	}
	sb.WriteByte('\n')
}

// JSONRenderer writes records as a streaming JSON array. If the process is
// interrupted mid-stream the array stays unterminated; that is an accepted
// consequence of streaming output.
type JSONRenderer struct {
	w       io.Writer
	started bool
}

// NewJSONRenderer creates a JSON renderer
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{w: w}
}

// Render writes one record as an array element
func (r *JSONRenderer) Render(rec *models.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	prefix := ",\n  "
	if !r.started {
		prefix = "[\n  "
		r.started = true
	}

	if _, err := io.WriteString(r.w, prefix); err != nil {
		return err
	}
	_, err = r.w.Write(data)
	return err
}

// Close terminates the JSON array
func (r *JSONRenderer) Close() error {
	if !r.started {
		_, err := io.WriteString(r.w, "[]\n")
		return err
	}
	_, err := io.WriteString(r.w, "\n]\n")
	return err
}
