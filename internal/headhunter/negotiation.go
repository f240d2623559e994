package headhunter

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/mitchellh/mapstructure"
)

const (
	apiNegotiataionPath       = "/negotiations"
	allStatusesExceptArchived = "non_archived"
)

var ErrNoToken = errors.New("hh token is required for negotiations")

type Negotations []*Negotiation

type Negotiation struct {
	ID        string
	CreatedAt string `json:"created_at" mapstructure:"created_at"`
	URL       string
	Vacancy   *Vacancy
}

// GetNegotiations lists the user's active responses. The swipe host uses it
// to hide vacancies that were already answered outside the session.
func (c *Client) GetNegotiations() (*Negotations, error) {
	if c.Anonymous() {
		return nil, ErrNoToken
	}

	apiURLMineNegotations := fmt.Sprintf("%s%s", c.APIURL, apiNegotiataionPath)

	q := url.Values{}
	// We never need our archived negotiations
	q.Add("status", allStatusesExceptArchived)
	// Set per_page max as possible. It should be faster.
	q.Add("per_page", perPage)

	items, err := c.GetItems(apiURLMineNegotations, q)
	if err != nil {
		return nil, err
	}

	var negotations Negotations
	if err = decode(items, &negotations); err != nil {
		return nil, err
	}

	return &negotations, nil
}

func (n *Negotations) VacanciesIDs() []string {
	ids := make([]string, 0, len(*n))

	for _, v := range *n {
		if v.Vacancy == nil {
			continue
		}
		ids = append(ids, v.Vacancy.ID)
	}

	return ids
}

func decode(items []Item, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(items); err != nil {
		return fmt.Errorf("decode hh items: %w", err)
	}

	return nil
}
