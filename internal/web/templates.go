package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/justestif/kdle/internal/dates"
	"github.com/justestif/kdle/internal/leaderboard"
)

// Templates holds one parsed template set per page. Every set includes the
// layouts and partials, and pages execute the "base" layout.
type Templates struct {
	pages map[string]*template.Template
	funcs template.FuncMap
}

// NewTemplates parses layouts/*.html, partials/*.html and pages/*.html from
// templatesFS.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		pages: make(map[string]*template.Template),
		funcs: defaultFuncs(),
	}
	if err := t.load(templatesFS); err != nil {
		return nil, err
	}
	return t, nil
}

// Render executes the base layout for page.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// Has reports whether page was loaded.
func (t *Templates) Has(page string) bool {
	_, ok := t.pages[page]
	return ok
}

func (t *Templates) load(templatesFS fs.FS) error {
	var shared []string
	for _, pattern := range []string{"layouts/*.html", "partials/*.html"} {
		files, err := fs.Glob(templatesFS, pattern)
		if err != nil {
			return fmt.Errorf("finding %s: %w", pattern, err)
		}
		shared = append(shared, files...)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		files := append([]string{page}, shared...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return nil
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// formatDay formats a YYYY-MM-DD day as "Mon, Jan 2, 2006".
		"formatDay": func(day string) string {
			t, err := dates.Parse(day)
			if err != nil {
				return day
			}
			return t.Format("Mon, Jan 2, 2006")
		},

		// percent renders a whole-number percentage.
		"percent": func(v int) string {
			return fmt.Sprintf("%d%%", v)
		},

		// seq returns 1..n for rendering guess slots.
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},

		"add": func(a, b int) int {
			return a + b
		},
	}
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	Flash       *FlashMessage
	CurrentPath string
}

// FlashMessage represents a temporary notification message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// HomePageData contains data for the game page template.
type HomePageData struct {
	PageData
	Date       string
	MaxGuesses int
}

// LeaderboardTab is one ranking the leaderboard page can show.
type LeaderboardTab struct {
	Type  string
	Label string
}

var leaderboardTabs = []LeaderboardTab{
	{Type: "current_streak", Label: "Current streak"},
	{Type: "longest_streak", Label: "Longest streak"},
	{Type: "total_wins", Label: "Total wins"},
	{Type: "win_rate", Label: "Win rate"},
}

// LeaderboardPageData contains data for the leaderboard page template.
type LeaderboardPageData struct {
	PageData
	Type    string
	Types   []LeaderboardTab
	Entries []leaderboard.Entry
}
