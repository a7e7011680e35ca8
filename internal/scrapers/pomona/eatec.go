package pomona

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"menufetcher/internal/menu"

	"github.com/PuerkitoBio/goquery"
)

// Some halls publish their menu as an Eatec export wrapped in a menuData(...)
// JSONP callback instead of a spreadsheet. Entries carry one meal each, with a
// bulletin but no stations.

const eatecCallback = "menuData("

type eatecMeal struct {
	ServeDate string `json:"@servedate"`
	Name      string `json:"@mealperiodname"`
	Bulletin  string `json:"@menubulletin"`
}

type eatecFeed struct {
	Feed struct {
		Entry struct {
			EatecExchange struct {
				Menu []eatecMeal `json:"menu"`
			} `json:"EatecExchange"`
		} `json:"entry"`
	} `json:"feed"`
}

// unwrapJSONP returns the argument of the menuData callback. The page default
// "/**/ menuData({});" unwraps to an empty object.
func unwrapJSONP(body []byte) ([]byte, error) {
	start := bytes.Index(body, []byte(eatecCallback))
	end := bytes.LastIndexByte(body, ')')
	if start < 0 || end < start+len(eatecCallback) {
		return nil, menu.Malformedf("no %s) callback in eatec feed", eatecCallback)
	}
	return bytes.TrimSpace(body[start+len(eatecCallback) : end]), nil
}

func parseEatecFeed(body []byte) ([]eatecMeal, error) {
	payload, err := unwrapJSONP(body)
	if err != nil {
		return nil, err
	}
	var feed eatecFeed
	err = json.Unmarshal(payload, &feed)
	if err != nil {
		return nil, menu.Malformed("eatec feed", err)
	}
	return feed.Feed.Entry.EatecExchange.Menu, nil
}

func (c *client) EatecMeals(ctx context.Context, feedUrl string) ([]eatecMeal, error) {
	return c.eatecFeeds.Get(feedUrl, func() ([]eatecMeal, error) {
		body, err := c.http.Get(ctx, feedUrl)
		if err != nil {
			return nil, err
		}
		return parseEatecFeed(body)
	})
}

// eatecFeedUrl resolves the feed reference of the info page against its url.
func eatecFeedUrl(ref *goquery.Selection, pageUrl string) (string, error) {
	raw, _ := ref.Attr("data-dining-menu-json-url")
	if raw == "" {
		return "", menu.NotAvailablef("empty eatec feed url on %s", pageUrl)
	}
	base, err := url.Parse(pageUrl)
	if err != nil {
		return "", menu.Malformed("info page url", err)
	}
	target, err := url.Parse(raw)
	if err != nil {
		return "", menu.Malformed(fmt.Sprintf("eatec feed url %q", raw), err)
	}
	return base.ResolveReference(target).String(), nil
}

func (s *Scraper) eatecMenu(ctx context.Context, page *goquery.Document, ref *goquery.Selection, day time.Time) (menu.Menu, error) {
	publicUrl := s.client.infoUrl()
	result := menu.Empty(s.opts.Name, s.opts.ID, publicUrl)

	feedUrl, err := eatecFeedUrl(ref, publicUrl)
	if err != nil {
		return menu.Menu{}, err
	}
	meals, err := s.client.EatecMeals(ctx, feedUrl)
	if err != nil {
		return menu.Menu{}, err
	}

	hours, err := s.hours(page, day.Weekday())
	if err != nil {
		return menu.Menu{}, err
	}
	if len(hours) == 0 {
		return result, nil
	}

	serveDate := day.Format("20060102")
	for _, entry := range meals {
		if entry.ServeDate != serveDate {
			continue
		}
		name := menu.CorrectMealName(entry.Name)
		meal := menu.Meal{
			Name:        name,
			Description: entry.Bulletin,
			Stations:    []menu.Station{},
		}
		if timeRange, ok := hours[name]; ok {
			meal.Hours = &timeRange
		} else if timeRange, ok := hours[entry.Name]; ok {
			meal.Hours = &timeRange
		} else {
			s.tel.ReportWarning(report_scraper_eatec_hours, name)
		}
		result.Meals = append(result.Meals, meal)
	}
	return result, nil
}
