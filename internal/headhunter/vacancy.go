package headhunter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spigell/hh-swiper/internal/swipe"
)

type Vacancies struct {
	Items []*Vacancy
}

type Named struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Area struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

type Salary struct {
	From     int    `json:"from,omitempty"`
	To       int    `json:"to,omitempty"`
	Currency string `json:"currency,omitempty"`
	Gross    bool   `json:"gross,omitempty"`
}

type Employer struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	URL          string `json:"url,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Trusted      bool   `json:"trusted,omitempty"`
}

type Snippet struct {
	Requirement    string `json:"requirement,omitempty"`
	Responsibility string `json:"responsibility,omitempty"`
}

type Vacancy struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Area         Area     `json:"area,omitempty"`
	HasTest      bool     `json:"has_test,omitempty"`
	Salary       *Salary  `json:"salary,omitempty"`
	Experience   Named    `json:"experience,omitempty"`
	Schedule     Named    `json:"schedule,omitempty"`
	Employment   Named    `json:"employment,omitempty"`
	Employer     Employer `json:"employer,omitempty"`
	AlternateURL string   `json:"alternate_url,omitempty"`
	KeySkills    []Named  `json:"key_skills,omitempty"`
	Archived     bool     `json:"archived,omitempty"`
	Snippet      Snippet  `json:"snippet,omitempty"`
	PublishedAt  string   `json:"published_at,omitempty"`
}

// HH marks query matches in snippets with <highlighttext>.
var markup = regexp.MustCompile(`<[^>]+>`)

func (v *Vacancies) Len() int {
	return len(v.Items)
}

func (v *Vacancies) FindByID(id string) *Vacancy {
	for _, vacancy := range v.Items {
		if vacancy.ID == id {
			return vacancy
		}
	}
	return nil
}

// ToItems converts vacancies into swipe cards. Archived vacancies are skipped.
func (v *Vacancies) ToItems() []swipe.Item {
	items := make([]swipe.Item, 0, len(v.Items))
	for _, vacancy := range v.Items {
		if vacancy == nil || vacancy.Archived {
			continue
		}
		items = append(items, vacancy.ToItem())
	}
	return items
}

func (va *Vacancy) ToItem() swipe.Item {
	item := swipe.Item{
		ID:       va.ID,
		Kind:     swipe.KindJob,
		Title:    va.Name,
		Company:  va.Employer.Name,
		Location: va.Area.Name,
		Salary:   va.Salary.String(),
		Summary:  stripMarkup(va.Snippet.Requirement),
		URL:      va.AlternateURL,
		Extra: map[string]any{
			"has_test":    va.HasTest,
			"employer_id": va.Employer.ID,
		},
	}

	for _, skill := range va.KeySkills {
		if skill.Name != "" {
			item.Tags = append(item.Tags, skill.Name)
		}
	}

	for _, detail := range []string{
		stripMarkup(va.Snippet.Responsibility),
		va.Experience.Name,
		va.Schedule.Name,
		va.Employment.Name,
	} {
		if detail != "" {
			item.Details = append(item.Details, detail)
		}
	}

	if va.PublishedAt != "" {
		item.Extra["published_at"] = va.PublishedAt
	}

	return item
}

func (s *Salary) String() string {
	if s == nil || (s.From == 0 && s.To == 0) {
		return ""
	}

	var amount string
	switch {
	case s.From != 0 && s.To != 0:
		amount = fmt.Sprintf("%d-%d", s.From, s.To)
	case s.From != 0:
		amount = fmt.Sprintf("from %d", s.From)
	default:
		amount = fmt.Sprintf("up to %d", s.To)
	}

	return strings.TrimSpace(amount + " " + s.Currency)
}

func stripMarkup(s string) string {
	return strings.TrimSpace(markup.ReplaceAllString(s, ""))
}
