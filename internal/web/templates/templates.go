// Package templates holds the templ components rendered by the web server.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/datagen/internal/core"
	"github.com/a-h/templ"
)

// DashboardData is everything the dashboard page needs.
type DashboardData struct {
	Categories    []core.CategoryInfo
	Formats       []core.FormatInfo
	History       []core.HistoryEntry
	DefaultCount  int
	DefaultFormat string
	MaxRecords    int
}

// htmlWriter stops writing after the first error and reports it once.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err == nil {
		_, h.err = fmt.Fprintf(h.w, format, args...)
	}
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

// Dashboard renders the full generator page.
func Dashboard(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>Data Generator</title>`)
		h.raw(`<script src="https://unpkg.com/htmx.org@1.9.12"></script>`)
		h.raw(`</head><body><main class="container"><h1>Synthetic Data Generator</h1>`)

		// Built-in categories
		h.raw(`<section id="generator"><h2>Generate</h2>`)
		h.raw(`<form hx-post="/api/generate" hx-target="#result" hx-swap="innerHTML">`)
		h.raw(`<label for="category">Category</label><select id="category" name="category">`)
		for _, c := range data.Categories {
			h.printf(`<option value="%s">%s</option>`, templ.EscapeString(c.Key), templ.EscapeString(c.Label))
		}
		h.raw(`</select>`)
		countInput(h, "count", data.DefaultCount, data.MaxRecords)
		formatSelect(h, "format", data.Formats, data.DefaultFormat)
		h.raw(`<button type="submit">Generate</button></form></section>`)

		// Custom schema
		h.raw(`<section id="custom"><h2>Custom schema</h2>`)
		h.raw(`<form hx-post="/api/generate/custom" hx-target="#result" hx-swap="innerHTML">`)
		h.raw(`<label for="schema">Schema</label>`)
		h.raw(`<textarea id="schema" name="schema" rows="8" placeholder='{"age": "number|18,65", "name": "firstName"}'></textarea>`)
		h.raw(`<label for="schema_format">Schema syntax</label><select id="schema_format" name="schema_format">`)
		h.raw(`<option value="json" selected>JSON</option><option value="yaml">YAML</option></select>`)
		countInput(h, "custom-count", data.DefaultCount, data.MaxRecords)
		formatSelect(h, "custom-format", data.Formats, data.DefaultFormat)
		h.raw(`<button type="submit">Generate</button></form></section>`)

		h.raw(`<section id="result"></section>`)

		h.raw(`<section><h2>History</h2>`)
		h.raw(`<button hx-delete="/api/history" hx-target="#history" hx-swap="innerHTML" hx-confirm="Clear history?">Clear</button>`)
		h.raw(`<div id="history" hx-get="/api/history" hx-trigger="historyChanged from:body">`)
		h.component(ctx, HistoryList(data.History))
		h.raw(`</div></section>`)

		h.raw(`</main></body></html>`)
		return h.err
	})
}

func countInput(h *htmlWriter, id string, value, max int) {
	h.printf(`<label for="%s">Records</label>`, id)
	h.printf(`<input id="%s" name="count" type="number" min="1" max="%d" value="%d">`, id, max, value)
}

func formatSelect(h *htmlWriter, id string, formats []core.FormatInfo, selected string) {
	h.printf(`<label for="%s">Format</label><select id="%s" name="format">`, id, id)
	for _, f := range formats {
		sel := ""
		if f.Key == selected {
			sel = " selected"
		}
		h.printf(`<option value="%s"%s>%s</option>`, templ.EscapeString(f.Key), sel, templ.EscapeString(f.Label))
	}
	h.raw(`</select>`)
}

// ResultPanel renders a generated dataset with its statistics.
func ResultPanel(result *core.Result) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="result">`)
		h.raw(`<p class="stats">`)
		h.text(result.RecordLabel())
		h.raw(` &middot; `)
		h.text(result.SizeKB())
		h.raw(` KB &middot; seed `)
		h.text(strconv.FormatUint(result.Seed, 10))
		h.raw(`</p>`)
		h.raw(`<pre><code>`)
		h.text(result.Output)
		h.raw(`</code></pre></div>`)
		return h.err
	})
}

// HistoryList renders recent runs, newest first. Built-in runs can be replayed.
func HistoryList(entries []core.HistoryEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if len(entries) == 0 {
			h.raw(`<p class="empty">No history yet</p>`)
			return h.err
		}
		h.raw(`<ul class="history">`)
		for _, e := range entries {
			h.raw(`<li>`)
			if e.Category == core.CustomCategory {
				h.raw(`<span>`)
			} else {
				h.printf(`<a href="#" hx-post="/api/history/%s/replay" hx-target="#result" hx-swap="innerHTML">`,
					templ.EscapeString(e.ID))
			}
			h.printf(`%s &middot; %d records &middot; %s`,
				templ.EscapeString(e.Category), e.Count, templ.EscapeString(e.Format))
			if e.Category == core.CustomCategory {
				h.raw(`</span>`)
			} else {
				h.raw(`</a>`)
			}
			h.printf(` <time datetime="%s">%s</time>`,
				e.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
				templ.EscapeString(e.Timestamp.Local().Format("Jan 2 15:04:05")))
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
		return h.err
	})
}

// ErrorAlert renders an inline error for HTMX swaps.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<small>Code: `)
		h.text(code)
		h.raw(`</small></div>`)
		return h.err
	})
}
