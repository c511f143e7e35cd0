package callsite

import (
	"fmt"

	"github.com/blendin/extractor/pkg/domain"
	"github.com/blendin/extractor/pkg/parser/tspool"
)

// DefaultMarker is the name of the translation function.
const DefaultMarker = "t"

const callQuery = `(call_expression
	function: (_) @callee
	arguments: (arguments) @args) @call`

// CallSite is one call of the translation marker.
type CallSite struct {
	Location domain.Location
	// Arg is the lowered first argument, nil when the call has no arguments.
	Arg Expr
}

// Visitor finds marker calls in parsed files.
type Visitor struct {
	marker string
}

// NewVisitor creates a Visitor for marker. An empty marker selects DefaultMarker.
func NewVisitor(marker string) *Visitor {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Visitor{marker: marker}
}

// Visit returns the call sites of parsed in source order. Calls nested in
// other expressions (JSX, template substitutions, arguments) are included.
func (v *Visitor) Visit(parsed *tspool.Parsed, filename string) ([]CallSite, error) {
	results, err := tspool.QueryWithCache(parsed.Root(), parsed.Language, callQuery)
	if err != nil {
		return nil, fmt.Errorf("query call expressions in %s: %w", filename, err)
	}

	var sites []CallSite
	for _, r := range results {
		call := r.Captures["call"]
		if call == nil || !v.isMarkerCall(r, parsed.Source) {
			continue
		}

		site := CallSite{Location: tspool.GetLocation(call, filename)}
		if arg := tspool.FirstNamedChild(r.Captures["args"]); arg != nil {
			site.Arg = Lower(arg, parsed.Source)
		}
		sites = append(sites, site)
	}

	return sites, nil
}

func (v *Visitor) isMarkerCall(r tspool.QueryResult, source []byte) bool {
	callee := tspool.UnwrapParens(r.Captures["callee"])
	if callee == nil || callee.Type() != "identifier" {
		return false
	}
	if tspool.GetNodeText(callee, source) != v.marker {
		return false
	}
	return !isOptionalCall(r.Captures["call"])
}
