package sink

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/featureform/sparkify/fferr"
	types "github.com/featureform/sparkify/fftypes"
)

// DefaultPartition names the directory for null and empty partition values.
const DefaultPartition = "__HIVE_DEFAULT_PARTITION__"

const partitionTimeFormat = "2006-01-02 15:04:05"

func needsEscape(c byte) bool {
	if c < 0x20 || c == 0x7F {
		return true
	}
	switch c {
	case '"', '#', '%', '\'', '*', '/', ':', '=', '?', '\\', '{', '[', ']', '^':
		return true
	}
	return false
}

// EscapePathName escapes a partition column name or value the way Hive does.
func EscapePathName(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if needsEscape(c) {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// UnescapePathName reverses EscapePathName. Malformed escapes are kept as is.
func UnescapePathName(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func formatPartitionValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return DefaultPartition
	case string:
		if v == "" {
			return DefaultPartition
		}
		return EscapePathName(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return EscapePathName(v.UTC().Format(partitionTimeFormat))
	default:
		return EscapePathName(fmt.Sprintf("%v", v))
	}
}

// partitionDir builds the nested col=value/ directory for one row.
func partitionDir(columns []string, values []interface{}) string {
	if len(columns) == 0 {
		return ""
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s=%s", EscapePathName(col), formatPartitionValue(values[i]))
	}
	return strings.Join(parts, "/") + "/"
}

func parsePartitionValue(raw string, t types.ScalarType) (interface{}, error) {
	if raw == DefaultPartition {
		return nil, nil
	}
	value := UnescapePathName(raw)
	switch t {
	case types.String:
		return value, nil
	case types.Int32:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, fferr.NewInternalErrorf("partition value '%s' is not an int32: %v", value, err)
		}
		return int32(v), nil
	case types.Int64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fferr.NewInternalErrorf("partition value '%s' is not an int64: %v", value, err)
		}
		return v, nil
	case types.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fferr.NewInternalErrorf("partition value '%s' is not a float64: %v", value, err)
		}
		return v, nil
	case types.Timestamp:
		v, err := time.Parse(partitionTimeFormat, value)
		if err != nil {
			return nil, fferr.NewInternalErrorf("partition value '%s' is not a timestamp: %v", value, err)
		}
		return v.UTC(), nil
	default:
		return nil, fferr.NewInternalErrorf("unsupported partition type %s", t)
	}
}

// parsePartitionDir splits "a=1/b=x/part-0.parquet" into its col=value pairs.
func parsePartitionDir(rel string) map[string]string {
	values := make(map[string]string)
	segments := strings.Split(rel, "/")
	for _, segment := range segments[:len(segments)-1] {
		col, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		values[UnescapePathName(col)] = value
	}
	return values
}
