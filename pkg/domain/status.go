package domain

// SiteStatus describes what extraction produced for a call site.
type SiteStatus string

const (
	// SiteStatusExtracted indicates the call site produced a TextRecord.
	SiteStatusExtracted SiteStatus = "extracted"
	// SiteStatusDynamic indicates the first argument is not a literal
	// (identifier, template literal, call, ...). Runtime text is invisible to extraction.
	SiteStatusDynamic SiteStatus = "dynamic"
	// SiteStatusNoArgument indicates the marker was called without arguments.
	SiteStatusNoArgument SiteStatus = "no-argument"
)
