package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// periodLinkExpr matches payload and digest hrefs of the form
// .../{kind}/{year}/{month}/... where kind is json or sha.
var periodLinkExpr = regexp.MustCompile(`(?i)(json|sha)/(\d{4})/(\d{1,2})`)

// PeriodLink holds the remote references discovered for one reporting period.
type PeriodLink struct {
	Year       int
	Month      int
	PayloadURL string
	DigestURL  string
}

type ListingService struct {
	client *http.Client
}

func NewListingService(client *http.Client) (*ListingService, error) {
	if client == nil {
		client = http.DefaultClient
	}

	return &ListingService{client: client}, nil
}

// Discover scans the listing page for payload/digest links, groups them by
// month, and keeps only months that expose a payload link for one of the
// requested years. Results are sorted by year then month.
func (s *ListingService) Discover(ctx context.Context, listingURL string, years []int) ([]PeriodLink, error) {
	if s == nil {
		return nil, errors.New("listing service is nil")
	}
	if s.client == nil {
		return nil, errors.New("http client is nil")
	}
	if listingURL == "" {
		return nil, errors.New("listing url is empty")
	}

	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}

	wanted := make(map[int]bool, len(years))
	for _, year := range years {
		wanted[year] = true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	byPeriod := map[[2]int]*PeriodLink{}
	doc.Find("a[href]").Each(func(i int, anchor *goquery.Selection) {
		href, ok := anchor.Attr("href")
		if !ok {
			return
		}

		match := periodLinkExpr.FindStringSubmatch(href)
		if match == nil {
			return
		}

		year, err := strconv.Atoi(match[2])
		if err != nil || (len(wanted) > 0 && !wanted[year]) {
			return
		}
		month, err := strconv.Atoi(match[3])
		if err != nil || month < 1 || month > 12 {
			return
		}

		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		absolute := base.ResolveReference(parsed).String()

		key := [2]int{year, month}
		link, ok := byPeriod[key]
		if !ok {
			link = &PeriodLink{Year: year, Month: month}
			byPeriod[key] = link
		}
		switch match[1][0] {
		case 'j', 'J':
			link.PayloadURL = absolute
		default:
			link.DigestURL = absolute
		}
	})

	links := make([]PeriodLink, 0, len(byPeriod))
	for _, link := range byPeriod {
		if link.PayloadURL == "" {
			continue
		}
		links = append(links, *link)
	}

	sort.Slice(links, func(i, j int) bool {
		if links[i].Year != links[j].Year {
			return links[i].Year < links[j].Year
		}
		return links[i].Month < links[j].Month
	})

	return links, nil
}
