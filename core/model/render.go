package model

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"datasync/core/utils"
)

// localDateLayout is used when rendering dates for diagnostics.
const localDateLayout = "2006-01-02 15:04:05"

// String renders the instance for debugging, e.g.
// <User name="Ada" admin=true tags=[ "a","b" ]>.
func (i *Instance) String() string {
	b := &strings.Builder{}
	b.WriteString("<")
	b.WriteString(i.ClassName())
	for _, spec := range i.schema.fields {
		b.WriteString(" ")
		b.WriteString(spec.Name)
		b.WriteString("=")
		renderValue(b, i.data[spec.Name])
	}
	b.WriteString(">")
	return b.String()
}

func renderValue(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("<nil>")
	case string:
		b.WriteString(strconv.Quote(val))
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case float64:
		b.WriteString(utils.FormatNumber(val))
	case time.Time:
		b.WriteString("<")
		b.WriteString(val.Local().Format(localDateLayout))
		b.WriteString(">")
	case []any:
		b.WriteString("[ ")
		for i, elem := range val {
			if i > 0 {
				b.WriteString(",")
			}
			renderValue(b, elem)
		}
		b.WriteString(" ]")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{ ")
		for _, k := range keys {
			b.WriteString(k)
			b.WriteString(":")
			renderValue(b, val[k])
			b.WriteString(" ")
		}
		b.WriteString("}")
	case *Instance:
		if val == nil {
			b.WriteString("<nil>")
			return
		}
		b.WriteString(val.String())
	default:
		b.WriteString("[?? unsupported type]")
	}
}
