package emulator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// filter is the evaluated form of a parsed query: either a full scan or one
// equality predicate on a scalar property.
type filter struct {
	all      bool
	property string
	value    any
}

var (
	selectAllRe = regexp.MustCompile(`(?i)^SELECT\s+\*\s+FROM\s+(\w+)$`)
	selectEqRe  = regexp.MustCompile(`(?i)^SELECT\s+\*\s+FROM\s+(\w+)\s+WHERE\s+(\w+)\.(\w+)\s*=\s*(.+)$`)
	parameterRe = regexp.MustCompile(`^@\w+$`)
)

// parseQuery understands the SQL subset the tour uses:
//
//	SELECT * FROM c
//	SELECT * FROM c WHERE c.prop = <literal | @param>
func parseQuery(q domain.Query) (filter, error) {
	text := strings.TrimSpace(q.Query)

	if m := selectAllRe.FindStringSubmatch(text); m != nil {
		return filter{all: true}, nil
	}

	m := selectEqRe.FindStringSubmatch(text)
	if m == nil {
		return filter{}, fmt.Errorf("unsupported query: %q", text)
	}
	alias, refAlias, prop, rawValue := m[1], m[2], m[3], strings.TrimSpace(m[4])
	if alias != refAlias {
		return filter{}, fmt.Errorf("unknown alias %q in filter (FROM %s)", refAlias, alias)
	}

	value, err := parseLiteral(rawValue, q.Parameters)
	if err != nil {
		return filter{}, err
	}
	return filter{property: prop, value: value}, nil
}

func parseLiteral(raw string, params []domain.QueryParameter) (any, error) {
	if parameterRe.MatchString(raw) {
		for _, p := range params {
			if p.Name == raw {
				return p.Value, nil
			}
		}
		return nil, fmt.Errorf("unbound parameter %s", raw)
	}
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return raw[1 : len(raw)-1], nil
		}
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n, nil
	}
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, fmt.Errorf("unsupported literal %q", raw)
}

// matches evaluates the filter against one document. Numbers compare
// numerically regardless of their concrete Go type.
func (f filter) matches(doc map[string]any) bool {
	if f.all {
		return true
	}
	got, ok := doc[f.property]
	if !ok {
		return false
	}
	return valuesEqual(got, f.value)
}

func valuesEqual(a, b any) bool {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
