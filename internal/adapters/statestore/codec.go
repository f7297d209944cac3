package statestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

// Codec converts between a state and its stored bytes.
type Codec interface {
	Encode(state domain.RotationState) ([]byte, error)
	Decode(data []byte) (domain.RotationState, error)
}

// JSONCodec is the stored format:
//
//	{
//	  "quotes": ["..."],
//	  "rotationHours": 6,
//	  "rotationMinutes": 0,
//	  "menuBarStyle": {"fontPreset": "system", "textSizePreset": 13, "colorPreset": "label", "isBold": false},
//	  "currentIndex": 0,
//	  "lastRotationAt": 1700000000.25
//	}
//
// lastRotationAt is seconds since the Unix epoch. Every field may be
// missing on decode and takes its default.
type JSONCodec struct{}

type wireState struct {
	Quotes          []string   `json:"quotes"`
	RotationHours   *int       `json:"rotationHours"`
	RotationMinutes *int       `json:"rotationMinutes"`
	MenuBarStyle    *wireStyle `json:"menuBarStyle"`
	CurrentIndex    *int       `json:"currentIndex"`
	LastRotationAt  *epochTime `json:"lastRotationAt"`
}

type wireStyle struct {
	FontPreset     *string `json:"fontPreset"`
	TextSizePreset *int    `json:"textSizePreset"`
	ColorPreset    *string `json:"colorPreset"`
	IsBold         *bool   `json:"isBold"`
}

// Encode writes every field, using null for an absent index or anchor.
func (JSONCodec) Encode(state domain.RotationState) ([]byte, error) {
	font := string(state.Style.Font)
	size := int(state.Style.TextSize)
	color := string(state.Style.Color)
	bold := state.Style.Bold

	w := wireState{
		Quotes:          state.Quotes,
		RotationHours:   &state.RotationHours,
		RotationMinutes: &state.RotationMinutes,
		MenuBarStyle: &wireStyle{
			FontPreset:     &font,
			TextSizePreset: &size,
			ColorPreset:    &color,
			IsBold:         &bold,
		},
		CurrentIndex: state.CurrentIndex,
	}

	if w.Quotes == nil {
		w.Quotes = []string{}
	}

	if state.LastRotationAt != nil {
		w.LastRotationAt = &epochTime{Time: *state.LastRotationAt}
	}

	return json.Marshal(w)
}

// Decode reads a stored state. The result is not normalized.
func (JSONCodec) Decode(data []byte) (domain.RotationState, error) {
	var w wireState

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&w); err != nil {
		return domain.RotationState{}, fmt.Errorf("decode state: %w", err)
	}

	if dec.More() {
		return domain.RotationState{}, errors.New("decode state: trailing data")
	}

	state := domain.EmptyState()
	if w.Quotes != nil {
		state.Quotes = w.Quotes
	}

	if w.RotationHours != nil {
		state.RotationHours = *w.RotationHours
	}

	if w.RotationMinutes != nil {
		state.RotationMinutes = *w.RotationMinutes
	}

	if w.MenuBarStyle != nil {
		state.Style = w.MenuBarStyle.toDomain()
	}

	state.CurrentIndex = w.CurrentIndex

	if w.LastRotationAt != nil {
		t := w.LastRotationAt.Time
		state.LastRotationAt = &t
	}

	return state, nil
}

func (w *wireStyle) toDomain() domain.DisplayStyle {
	s := domain.DefaultDisplayStyle()

	if w.FontPreset != nil {
		s.Font = domain.FontPreset(*w.FontPreset)
	}

	if w.TextSizePreset != nil {
		s.TextSize = domain.TextSizePreset(*w.TextSizePreset)
	}

	if w.ColorPreset != nil {
		s.Color = domain.ColorPreset(*w.ColorPreset)
	}

	if w.IsBold != nil {
		s.Bold = *w.IsBold
	}

	return s
}

// epochTime is a time encoded as fractional Unix seconds. The decimal is
// written and parsed digit by digit, so nanosecond instants survive the
// round trip that a float64 would round.
type epochTime struct {
	time.Time
}

func (e epochTime) MarshalJSON() ([]byte, error) {
	sec := e.Unix()
	nsec := int64(e.Nanosecond())

	if nsec == 0 {
		return strconv.AppendInt(nil, sec, 10), nil
	}

	frac := strings.TrimRight(fmt.Sprintf("%09d", nsec), "0")

	// Unix() floors, so a negative instant with a fraction is written as
	// sec+1 minus the complement.
	if sec < 0 {
		frac = strings.TrimRight(fmt.Sprintf("%09d", int64(time.Second)-nsec), "0")

		sec++
		if sec == 0 {
			return []byte("-0." + frac), nil
		}
	}

	return []byte(strconv.FormatInt(sec, 10) + "." + frac), nil
}

func (e *epochTime) UnmarshalJSON(data []byte) error {
	// json.Number would also accept "100".
	if len(data) > 0 && data[0] == '"' {
		return fmt.Errorf("lastRotationAt: want a number, got string %s", data)
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("lastRotationAt: %w", err)
	}

	t, err := parseEpoch(n.String())
	if err != nil {
		return fmt.Errorf("lastRotationAt: %w", err)
	}

	e.Time = t

	return nil
}

func parseEpoch(s string) (time.Time, error) {
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, err
		}

		return floatEpoch(f)
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")

	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	var nsec int64

	if frac != "" {
		digits := (frac + "000000000")[:9]

		nsec, err = strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
	}

	if negative {
		sec, nsec = -sec, -nsec
	}

	return time.Unix(sec, nsec).UTC(), nil
}

func floatEpoch(f float64) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > float64(math.MaxInt64)/float64(time.Second) {
		return time.Time{}, fmt.Errorf("timestamp %v out of range", f)
	}

	sec, frac := math.Modf(f)

	return time.Unix(int64(sec), int64(math.Round(frac*float64(time.Second)))).UTC(), nil
}
