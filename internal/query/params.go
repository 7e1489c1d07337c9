package query

import (
	"net/url"
	"regexp"
	"strconv"

	"github.com/vinoddotcom/ecom-learn-backend/pkg/errors"
)

// Op is a comparison operator in a filter clause.
type Op string

// Supported filter operators.
const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// FieldKind describes the value type a filterable field accepts.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
)

// Clause is a single typed filter condition. Numeric clauses carry a float64
// value, string clauses a string.
type Clause struct {
	Field string
	Op    Op
	Value any
}

// Params holds the parsed, validated listing parameters.
type Params struct {
	Keyword string
	Page    int
	Limit   int
	Filters []Clause
}

// Schema is the allow-list of filterable fields. Fields not present here are
// rejected at parse time, which keeps raw query keys out of the store filter.
type Schema map[string]FieldKind

// ProductSchema is the filter allow-list for product listings.
func ProductSchema() Schema {
	return Schema{
		"category": KindString,
		"price":    KindNumber,
		"rating":   KindNumber,
		"stock":    KindNumber,
	}
}

// reserved query keys handled outside the filter schema.
var reservedKeys = map[string]struct{}{
	"keyword": {},
	"page":    {},
	"limit":   {},
}

// bracketKey matches keys in field[op] form, e.g. "price[gte]".
var bracketKey = regexp.MustCompile(`^([a-z_]+)\[([a-z]+)\]$`)

var validOps = map[Op]struct{}{
	OpEq: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {},
}

// MaxLimit caps the page size a client may request.
const MaxLimit = 100

// Parse extracts listing parameters from a request query string. Filter keys
// use bracket notation for operators ("price[gte]=100"); a bare key means
// equality. Unknown fields and unsupported operators are invalid input, as
// are non-numeric values for numeric fields. An absent, non-numeric, or
// below-1 page falls back to page 1.
func Parse(values url.Values, schema Schema, defaultLimit int) (Params, error) {
	p := Params{
		Keyword: values.Get("keyword"),
		Page:    1,
		Limit:   defaultLimit,
	}

	if raw := values.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			p.Page = page
		}
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, errors.InvalidInput("limit must be an integer")
		}
		if limit < 1 {
			return Params{}, errors.InvalidInput("limit must be at least 1")
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		p.Limit = limit
	}

	for key, vals := range values {
		if _, ok := reservedKeys[key]; ok {
			continue
		}

		field, op := key, OpEq
		if m := bracketKey.FindStringSubmatch(key); m != nil {
			field, op = m[1], Op(m[2])
		}

		kind, ok := schema[field]
		if !ok {
			return Params{}, errors.InvalidInput("unknown filter field: " + field)
		}
		if _, ok := validOps[op]; !ok {
			return Params{}, errors.InvalidInput("unsupported filter operator: " + string(op))
		}
		if kind == KindString && op != OpEq {
			return Params{}, errors.InvalidInput("field " + field + " supports equality only")
		}

		for _, raw := range vals {
			clause := Clause{Field: field, Op: op}
			switch kind {
			case KindNumber:
				n, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return Params{}, errors.InvalidInput("field " + field + " requires a numeric value")
				}
				clause.Value = n
			default:
				clause.Value = raw
			}
			p.Filters = append(p.Filters, clause)
		}
	}

	return p, nil
}
