package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dansheikh28/fridgevision/internal/svcerr"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	apiBaseURL  = "https://api.spoonacular.com"
	serviceName = "recipes"

	// rankMaximizeUsed asks the service to rank by ingredient coverage.
	rankMaximizeUsed = "1"
)

// ClientOpts configures a recipe service client.
type ClientOpts struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each request; expiry is a transient failure fed to
	// the retry policy. Zero means no client-level timeout.
	Timeout time.Duration
}

// Client is the live recipe service adapter. It translates wire-level
// responses into Candidates and HTTP failures into the ServiceError
// taxonomy; it does not retry or rate-limit, that is the engine's job.
type Client struct {
	httpClient *resty.Client
	apiKey     string
}

// NewClient creates a recipe service client.
func NewClient(opts ClientOpts) *Client {
	c := &Client{apiKey: opts.APIKey}
	baseURL := apiBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	c.httpClient = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	return c
}

// searchRecipe is the wire shape of one recipe in a search response.
type searchRecipe struct {
	ID                    int64            `json:"id"`
	Title                 string           `json:"title"`
	Image                 string           `json:"image"`
	UsedIngredientCount   int              `json:"usedIngredientCount"`
	MissedIngredientCount int              `json:"missedIngredientCount"`
	ReadyInMinutes        int              `json:"readyInMinutes"`
	Servings              int              `json:"servings"`
	SourceURL             string           `json:"sourceUrl"`
	HealthScore           float64          `json:"healthScore"`
	UsedIngredients       []wireIngredient `json:"usedIngredients"`
	MissedIngredients     []wireIngredient `json:"missedIngredients"`
}

type wireIngredient struct {
	Name string `json:"name"`
}

// Search queries the recipe service for recipes using the given
// ingredients, ranked by ingredient coverage. The ingredient list is
// expected to be canonicalized.
//
// Wire-level parameter names follow the service's documented snake_case
// contract (max_ready_time, api_key); do not "fix" them to camelCase.
func (c *Client) Search(ctx context.Context, ingredients []string, con Constraint) ([]Candidate, error) {
	params := map[string]string{
		"ingredients": strings.Join(ingredients, ","),
		"number":      strconv.Itoa(con.Count),
		"ranking":     rankMaximizeUsed,
		"api_key":     c.apiKey,
	}
	if con.Cuisine != "" {
		params["cuisine"] = strings.ToLower(con.Cuisine)
	}
	if con.Diet != "" {
		params["diet"] = strings.ToLower(con.Diet)
	}
	if con.MaxReadyMinutes > 0 {
		params["max_ready_time"] = strconv.Itoa(con.MaxReadyMinutes)
	}

	var recipes []searchRecipe
	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&recipes).
		Get("/recipes/findByIngredients")
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if res.IsError() {
		return nil, classifyHTTPError(res)
	}

	log.Debug().
		Int("count", len(recipes)).
		Int("status", res.StatusCode()).
		Msg("recipe search response")

	out := make([]Candidate, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, Candidate{
			ID:                     r.ID,
			Title:                  r.Title,
			ImageURL:               r.Image,
			UsedIngredientCount:    r.UsedIngredientCount,
			MissingIngredientCount: r.MissedIngredientCount,
			ReadyMinutes:           r.ReadyInMinutes,
			Servings:               r.Servings,
			SourceURL:              r.SourceURL,
			HealthScore:            r.HealthScore,
			UsedIngredients:        ingredientNames(r.UsedIngredients),
			MissingIngredients:     ingredientNames(r.MissedIngredients),
		})
	}
	return out, nil
}

func ingredientNames(ings []wireIngredient) []string {
	if len(ings) == 0 {
		return nil
	}
	names := make([]string, len(ings))
	for i, ing := range ings {
		names[i] = strings.ToLower(ing.Name)
	}
	return names
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return svcerr.New(serviceName, svcerr.Timeout, err)
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return svcerr.New(serviceName, svcerr.Timeout, err)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return svcerr.New(serviceName, svcerr.InvalidResponse, err)
	}
	return svcerr.New(serviceName, svcerr.Unknown, err)
}

func classifyHTTPError(res *resty.Response) error {
	status := res.StatusCode()
	err := fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, status)
	switch {
	// 402 is how the service reports daily quota exhaustion, 429 rate
	// limiting; both force the cooldown path.
	case status == http.StatusPaymentRequired || status == http.StatusTooManyRequests:
		se := svcerr.New(serviceName, svcerr.QuotaExceeded, err)
		se.RetryAfter = parseRetryAfter(res.Header().Get("Retry-After"))
		return se
	case status >= 500:
		return svcerr.New(serviceName, svcerr.Unknown, err)
	default:
		return svcerr.New(serviceName, svcerr.InvalidResponse, err)
	}
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
