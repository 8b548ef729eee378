package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// WriteEDN writes v as EDN. Values go through their JSON encoding first so
// json tags decide the field names; keys become kebab-case keywords and
// RFC 3339 timestamps become #inst literals.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := ednEncoder{pretty: pretty, indent: 2}
	enc.value(&buf, x, 0)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

type ednEncoder struct {
	pretty bool
	indent int
}

func (e ednEncoder) value(buf *bytes.Buffer, v any, level int) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("nil")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case json.Number:
		buf.WriteString(t.String())
	case string:
		if isInstant(t) {
			buf.WriteString("#inst ")
		}
		buf.WriteString(strconv.Quote(t))
	case []any:
		e.vector(buf, t, level)
	case map[string]any:
		e.mapping(buf, t, level)
	default:
		buf.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

func (e ednEncoder) sep(buf *bytes.Buffer, last bool) {
	if last {
		return
	}
	if e.pretty {
		buf.WriteByte('\n')
	} else {
		buf.WriteByte(' ')
	}
}

func (e ednEncoder) pad(buf *bytes.Buffer, level int) {
	if e.pretty {
		buf.WriteString(strings.Repeat(" ", level*e.indent))
	}
}

func (e ednEncoder) vector(buf *bytes.Buffer, xs []any, level int) {
	buf.WriteByte('[')
	if len(xs) == 0 {
		buf.WriteByte(']')
		return
	}
	if e.pretty {
		buf.WriteByte('\n')
	}
	for i, it := range xs {
		e.pad(buf, level+1)
		e.value(buf, it, level+1)
		e.sep(buf, i == len(xs)-1)
	}
	if e.pretty {
		buf.WriteByte('\n')
		e.pad(buf, level)
	}
	buf.WriteByte(']')
}

func (e ednEncoder) mapping(buf *bytes.Buffer, m map[string]any, level int) {
	buf.WriteByte('{')
	if len(m) == 0 {
		buf.WriteByte('}')
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if e.pretty {
		buf.WriteByte('\n')
	}
	for i, k := range keys {
		e.pad(buf, level+1)
		buf.WriteByte(':')
		buf.WriteString(keyword(k))
		buf.WriteByte(' ')
		e.value(buf, m[k], level+1)
		e.sep(buf, i == len(keys)-1)
	}
	if e.pretty {
		buf.WriteByte('\n')
		e.pad(buf, level)
	}
	buf.WriteByte('}')
}

// keyword turns a JSON field name into an EDN keyword name: categoryId → category-id.
func keyword(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == ' ' || r == '_':
			b.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isInstant(s string) bool {
	if len(s) < len("2006-01-02T15:04:05Z") || s[4] != '-' || s[10] != 'T' {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}
