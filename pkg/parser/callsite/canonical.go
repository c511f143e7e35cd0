package callsite

import "github.com/blendin/extractor/pkg/domain"

// Canonicalize turns a call site into its TextRecord. A string argument
// becomes a single field named textField; an object argument keeps its
// static keys with string values in encounter order. Any other argument
// yields no record and SiteStatusDynamic.
func Canonicalize(site CallSite, textField string) (domain.TextRecord, domain.SiteStatus) {
	if textField == "" {
		textField = domain.DefaultTextField
	}

	switch arg := site.Arg.(type) {
	case nil:
		return domain.TextRecord{}, domain.SiteStatusNoArgument
	case StringLit:
		return domain.NewTextRecord(domain.Field{Name: textField, Value: arg.Value}), domain.SiteStatusExtracted
	case ObjectLit:
		var rec domain.TextRecord
		for _, p := range arg.Properties {
			if !p.Static {
				continue
			}
			if s, ok := p.Value.(StringLit); ok {
				rec.Set(p.Key, s.Value)
			}
		}
		return rec, domain.SiteStatusExtracted
	default:
		return domain.TextRecord{}, domain.SiteStatusDynamic
	}
}
