package headhunter

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "spigell/hh-swiper (spigelly@gmail.com)"
	// Max value for search per page.
	perPage = "100"
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:    ctx,
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

func (c *Client) Search(params *SearchParams) (*Vacancies, error) {
	return c.search(params)
}

// Anonymous reports whether requests go out without a token. Search works
// anonymously, negotiations do not.
func (c *Client) Anonymous() bool {
	return c.token == ""
}
