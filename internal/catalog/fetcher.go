package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher pulls listings for one title/location pair.
type Fetcher interface {
	Fetch(ctx context.Context, title, location string) ([]Listing, error)
}

// Adzuna search paging. One pair never costs more than adzunaMaxPages
// requests.
const (
	adzunaEndpoint = "https://api.adzuna.com/v1/api/jobs"
	adzunaPerPage  = 50
	adzunaMaxPages = 3
	adzunaTimeout  = 15 * time.Second
)

// AdzunaFetcher reads the Adzuna search API for one country. Without an app
// id and key it is disabled and Fetch is a no-op.
type AdzunaFetcher struct {
	AppID   string
	AppKey  string
	Country string
	BaseURL string // overridable for tests

	client *http.Client
}

// NewAdzunaFetcher returns a fetcher for country ("in", "gb", ...).
func NewAdzunaFetcher(appID, appKey, country string) *AdzunaFetcher {
	return &AdzunaFetcher{
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		BaseURL: adzunaEndpoint,
		client:  &http.Client{Timeout: adzunaTimeout},
	}
}

// Enabled reports whether credentials are configured.
func (f *AdzunaFetcher) Enabled() bool {
	return f.AppID != "" && f.AppKey != ""
}

// Fetch walks result pages newest first and stops at the first short page.
// On a failing page it returns what it already has together with the error.
func (f *AdzunaFetcher) Fetch(ctx context.Context, title, location string) ([]Listing, error) {
	if !f.Enabled() {
		log.Println("[catalog] adzuna disabled, no credentials")
		return nil, nil
	}

	var out []Listing
	for page := 1; page <= adzunaMaxPages; page++ {
		got, err := f.page(ctx, title, location, page)
		if err != nil {
			return out, fmt.Errorf("adzuna page %d: %w", page, err)
		}
		out = append(out, got...)
		if len(got) < adzunaPerPage {
			break
		}
	}
	return out, nil
}

func (f *AdzunaFetcher) searchURL(title, location string, page int) string {
	q := url.Values{
		"app_id":           {f.AppID},
		"app_key":          {f.AppKey},
		"results_per_page": {strconv.Itoa(adzunaPerPage)},
		"what":             {title},
		"where":            {location},
		"content-type":     {"application/json"},
		"sort_by":          {"date"},
	}
	base := strings.TrimRight(f.BaseURL, "/")
	return fmt.Sprintf("%s/%s/search/%d?%s", base, f.Country, page, q.Encode())
}

func (f *AdzunaFetcher) page(ctx context.Context, title, location string, page int) ([]Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.searchURL(title, location, page), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var body struct {
		Results []adzunaJob `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	listings := make([]Listing, 0, len(body.Results))
	for _, j := range body.Results {
		listings = append(listings, j.listing())
	}
	return listings, nil
}

// adzunaJob is the subset of an Adzuna result the catalog keeps.
type adzunaJob struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Company      adzunaDisplayName `json:"company"`
	Location     adzunaDisplayName `json:"location"`
	Category     struct {
		Label string `json:"label"`
	} `json:"category"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	RedirectURL  string  `json:"redirect_url"`
	Created      string  `json:"created"`
	ContractType string  `json:"contract_type"`
}

type adzunaDisplayName struct {
	DisplayName string `json:"display_name"`
}

func (j adzunaJob) listing() Listing {
	return Listing{
		ExternalID:   j.ID,
		Source:       "adzuna",
		Title:        j.Title,
		Company:      Company{Name: j.Company.DisplayName},
		Location:     j.Location.DisplayName,
		Category:     j.Category.Label,
		Description:  j.Description,
		Stipend:      FormatStipend(j.SalaryMin, j.SalaryMax),
		SalaryMin:    j.SalaryMin,
		SalaryMax:    j.SalaryMax,
		ContractType: j.ContractType,
		SourceURL:    j.RedirectURL,
		PublishedAt:  j.Created,
	}
}
