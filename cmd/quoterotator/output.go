package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

// printer writes command results as text or as the same JSON documents the
// HTTP API returns.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(g *Globals) printer {
	return printer{w: g.out, json: g.JSON}
}

func (p printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func (p printer) view(v domain.View) error {
	if p.json {
		return p.encode(dto.NewViewResponse(v))
	}

	if !v.HasQuote {
		_, err := fmt.Fprintf(p.w, "%s\nAdd one with: quoterotator add TEXT\n", v.Detail)
		return err
	}

	line := fmt.Sprintf("quote %d of %d, every %s", *v.Index+1, v.QuoteCount, formatInterval(v.RotationHours, v.RotationMinutes))
	if v.NextRotationAt != nil {
		line += ", next at " + v.NextRotationAt.Local().Format(time.DateTime)
	}

	_, err := fmt.Fprintf(p.w, "%s\n%s\n", v.Detail, line)

	return err
}

func (p printer) tick(v domain.View, changed bool) error {
	if p.json {
		return p.encode(dto.TickResponse{Changed: changed, View: dto.NewViewResponse(v)})
	}

	if !changed {
		if _, err := fmt.Fprintln(p.w, "no rotation due"); err != nil {
			return err
		}
	}

	return p.view(v)
}

func (p printer) quotes(quotes []string, current *int) error {
	items := dto.NewQuoteItems(quotes, current)

	if p.json {
		return p.encode(items)
	}

	if len(items) == 0 {
		_, err := fmt.Fprintln(p.w, domain.NoQuotesDetail)
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, item := range items {
		marker := " "
		if item.Current {
			marker = "*"
		}

		fmt.Fprintf(tw, "%s\t%d\t%s\n", marker, item.Index, oneLine(item.Text))
	}

	return tw.Flush()
}

func (p printer) imported(v domain.View, added int) error {
	if p.json {
		return p.encode(dto.ImportResponse{Added: added, View: dto.NewViewResponse(v)})
	}

	_, err := fmt.Fprintf(p.w, "imported %d quote(s), %d total\n", added, v.QuoteCount)

	return err
}

func (p printer) settings(v domain.View) error {
	if p.json {
		return p.encode(dto.NewSettingsResponse(v))
	}

	_, err := fmt.Fprintf(p.w, "interval: %s\nfont: %s\ntext size: %d\ncolor: %s\nbold: %t\n",
		formatInterval(v.RotationHours, v.RotationMinutes),
		v.Style.Font, v.Style.TextSize, v.Style.Color, v.Style.Bold)

	return err
}

// formatInterval renders 6h, 1h30m or 45m.
func formatInterval(hours, minutes int) string {
	switch {
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
}

// oneLine keeps multi-line quotes on a single table row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
