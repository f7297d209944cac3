package domain

import "time"

// Presentation strings used when no quote is configured.
const (
	NoQuotesTitle  = "No quotes"
	NoQuotesDetail = "No quotes configured"

	// MaxTitleRunes bounds the compact title shown in status bars.
	MaxTitleRunes = 48
)

// View is the render-ready projection of a state handed to presentation
// collaborators.
type View struct {
	// Quote is the full text of the current quote; empty when HasQuote is false.
	Quote    string
	HasQuote bool

	// Title is Quote truncated to MaxTitleRunes, or NoQuotesTitle.
	Title string

	// Detail is Quote, or NoQuotesDetail.
	Detail string

	// CanAdvance reports whether a manual advance is possible.
	CanAdvance bool

	Index      *int
	QuoteCount int

	RotationHours   int
	RotationMinutes int
	Style           DisplayStyle

	LastRotationAt *time.Time
	// NextRotationAt is when the next scheduled advance becomes due.
	NextRotationAt *time.Time
}

// Render projects a normalized copy of state into a View.
func Render(state RotationState) View {
	s := state.Normalize()

	v := View{
		Title:           NoQuotesTitle,
		Detail:          NoQuotesDetail,
		CanAdvance:      len(s.Quotes) > 0,
		Index:           s.CurrentIndex,
		QuoteCount:      len(s.Quotes),
		RotationHours:   s.RotationHours,
		RotationMinutes: s.RotationMinutes,
		Style:           s.Style,
		LastRotationAt:  s.LastRotationAt,
	}

	if quote, ok := s.CurrentQuote(); ok {
		v.Quote = quote
		v.HasQuote = true
		v.Title = TruncateTitle(quote)
		v.Detail = quote
	}

	if s.LastRotationAt != nil {
		v.NextRotationAt = timePtr(s.LastRotationAt.Add(s.Interval()))
	}

	return v
}

// TruncateTitle shortens quote to MaxTitleRunes runes followed by an ellipsis.
func TruncateTitle(quote string) string {
	runes := []rune(quote)
	if len(runes) <= MaxTitleRunes {
		return quote
	}

	return string(runes[:MaxTitleRunes]) + "…"
}
