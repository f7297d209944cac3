package dto

import (
	"time"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

// ViewResponse is the render-ready current quote.
type ViewResponse struct {
	Quote          string           `json:"quote,omitempty"`
	HasQuote       bool             `json:"hasQuote"`
	Title          string           `json:"title"`
	Detail         string           `json:"detail"`
	CanAdvance     bool             `json:"canAdvance"`
	Index          *int             `json:"index"`
	QuoteCount     int              `json:"quoteCount"`
	Interval       IntervalResponse `json:"interval"`
	Style          StyleResponse    `json:"style"`
	LastRotationAt *time.Time       `json:"lastRotationAt"`
	NextRotationAt *time.Time       `json:"nextRotationAt"`
}

// IntervalResponse is the rotation interval.
type IntervalResponse struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// StyleResponse is the display style.
type StyleResponse struct {
	Font     string `json:"font"`
	TextSize int    `json:"textSize"`
	Color    string `json:"color"`
	Bold     bool   `json:"bold"`
}

// NewViewResponse converts a domain.View.
func NewViewResponse(v domain.View) ViewResponse {
	return ViewResponse{
		Quote:          v.Quote,
		HasQuote:       v.HasQuote,
		Title:          v.Title,
		Detail:         v.Detail,
		CanAdvance:     v.CanAdvance,
		Index:          v.Index,
		QuoteCount:     v.QuoteCount,
		Interval:       IntervalResponse{Hours: v.RotationHours, Minutes: v.RotationMinutes},
		Style:          NewStyleResponse(v.Style),
		LastRotationAt: utc(v.LastRotationAt),
		NextRotationAt: utc(v.NextRotationAt),
	}
}

// NewStyleResponse converts a domain.DisplayStyle.
func NewStyleResponse(s domain.DisplayStyle) StyleResponse {
	return StyleResponse{
		Font:     string(s.Font),
		TextSize: int(s.TextSize),
		Color:    string(s.Color),
		Bold:     s.Bold,
	}
}

// TickResponse reports the result of an on-demand rotation check.
type TickResponse struct {
	Changed bool         `json:"changed"`
	View    ViewResponse `json:"view"`
}

// QuoteItem is one entry of the quote list.
type QuoteItem struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Current bool   `json:"current"`
}

// NewQuoteItems numbers quotes and marks the current one.
func NewQuoteItems(quotes []string, current *int) []QuoteItem {
	items := make([]QuoteItem, len(quotes))
	for i, text := range quotes {
		items[i] = QuoteItem{Index: i, Text: text, Current: current != nil && *current == i}
	}

	return items
}

// QuoteRequest adds or replaces a quote.
type QuoteRequest struct {
	Text string `json:"text" validate:"required,notblank,maxrunes=2000"`
}

// ImportRequest appends several quotes at once. Blank entries are skipped.
type ImportRequest struct {
	Quotes []string `json:"quotes" validate:"required,min=1,max=1000,dive,maxrunes=2000"`
}

// ImportResponse reports how many quotes an import added.
type ImportResponse struct {
	Added int          `json:"added"`
	View  ViewResponse `json:"view"`
}

// IntervalRequest changes the rotation interval. Both fields are required
// so that a typo does not silently reset the other half.
type IntervalRequest struct {
	Hours   *int `json:"hours" validate:"required,gte=0,lte=168"`
	Minutes *int `json:"minutes" validate:"required,gte=0,lte=59"`
}

// StyleRequest changes the display style.
type StyleRequest struct {
	Font     string `json:"font" validate:"required"`
	TextSize int    `json:"textSize" validate:"required"`
	Color    string `json:"color" validate:"required"`
	Bold     bool   `json:"bold"`
}

// DisplayStyle converts the request to a domain.DisplayStyle.
func (r StyleRequest) DisplayStyle() domain.DisplayStyle {
	return domain.DisplayStyle{
		Font:     domain.FontPreset(r.Font),
		TextSize: domain.TextSizePreset(r.TextSize),
		Color:    domain.ColorPreset(r.Color),
		Bold:     r.Bold,
	}
}

// Validate implements Validatable by checking the presets are known.
func (r StyleRequest) Validate() error {
	return r.DisplayStyle().Validate()
}

// SettingsResponse is the interval, the style and the presets a client
// may choose from.
type SettingsResponse struct {
	Interval IntervalResponse `json:"interval"`
	Style    StyleResponse    `json:"style"`
	Presets  PresetsResponse  `json:"presets"`
}

// PresetsResponse lists the valid style values in display order.
type PresetsResponse struct {
	Fonts     []string `json:"fonts"`
	TextSizes []int    `json:"textSizes"`
	Colors    []string `json:"colors"`
}

// NewSettingsResponse builds a SettingsResponse from a view.
func NewSettingsResponse(v domain.View) SettingsResponse {
	presets := PresetsResponse{
		Fonts:     make([]string, 0, len(domain.FontPresets)),
		TextSizes: make([]int, 0, len(domain.TextSizePresets)),
		Colors:    make([]string, 0, len(domain.ColorPresets)),
	}

	for _, f := range domain.FontPresets {
		presets.Fonts = append(presets.Fonts, string(f))
	}

	for _, s := range domain.TextSizePresets {
		presets.TextSizes = append(presets.TextSizes, int(s))
	}

	for _, c := range domain.ColorPresets {
		presets.Colors = append(presets.Colors, string(c))
	}

	return SettingsResponse{
		Interval: IntervalResponse{Hours: v.RotationHours, Minutes: v.RotationMinutes},
		Style:    NewStyleResponse(v.Style),
		Presets:  presets,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	u := t.UTC()

	return &u
}

// Stream message types.
const (
	StreamSnapshot = "snapshot"
)

// StreamMessage is one frame on the quote stream.
type StreamMessage struct {
	Type    string        `json:"type"`
	Trigger string        `json:"trigger,omitempty"`
	View    *ViewResponse `json:"view,omitempty"`
	Payload any           `json:"payload,omitempty"`
	At      time.Time     `json:"at"`
}
