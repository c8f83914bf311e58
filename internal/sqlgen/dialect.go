// Package sqlgen composes dialect-portable SQL for every check type: an
// abstract expression builder (composer.go) emits text through a Dialect
// implementation picked by a tag, so quoting, date_trunc equivalents, and
// ratio casts stay consistent across backends.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/weiser-ai/weiser-go/internal/check"
)

// Dialect encapsulates everything that varies across SQL backends for the
// purposes of check composition: identifier quoting, qualified table
// names, the date_trunc equivalent, and the cast used for ratio
// expressions. There is no boolean-literal method: the composer emits no
// boolean literals (an absent filter omits the WHERE clause).
type Dialect interface {
	// Name is the config-facing tag for this dialect ("postgresql", "mysql", ...).
	Name() string
	// QuoteIdent quotes a single identifier segment.
	QuoteIdent(ident string) string
	// QuoteQualified quotes a possibly schema/catalog-qualified identifier,
	// e.g. "public.orders" or "catalog.schema.orders".
	QuoteQualified(ident string) string
	// DateTrunc returns the expression that truncates col to the given
	// granularity, or an error if the dialect has no equivalent.
	DateTrunc(gran check.Granularity, col string) (string, error)
	// CastDouble wraps expr in this dialect's floating-point cast, used for
	// not_empty_pct ratios.
	CastDouble(expr string) string
}

var registry = map[string]Dialect{}

func register(d Dialect) {
	registry[d.Name()] = d
}

// Lookup returns the Dialect registered for tag, or an error if tag is not
// a supported dialect.
func Lookup(tag string) (Dialect, error) {
	d, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("sqlgen: unsupported dialect %q", tag)
	}
	return d, nil
}

// quoteQualifiedWith quotes each dot-separated segment of ident with quote
// and rejoins with ".". Shared by the ANSI-ish dialects.
func quoteQualifiedWith(ident string, quote func(string) string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = quote(p)
	}
	return strings.Join(parts, ".")
}
