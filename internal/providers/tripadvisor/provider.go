package tripadvisor

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
)

const (
	DefaultLimit = 3
	// MediaLimit caps photos and reviews per place
	MediaLimit = 5

	CategoryHotels      = "hotels"
	CategoryRestaurants = "restaurants"
)

// Config describes the Tripadvisor Content API account
type Config struct {
	BaseURL   string
	Key       string
	Email     string
	Limit     int
	RateLimit float64
	Timeout   time.Duration
}

type address struct {
	City          string `json:"city"`
	AddressString string `json:"address_string"`
}

type location struct {
	LocationID string  `json:"location_id"`
	Name       string  `json:"name"`
	Address    address `json:"address_obj"`
}

type searchResponse struct {
	Data []location `json:"data"`
}

type subrating struct {
	LocalizedName  string `json:"localized_name"`
	RatingImageURL string `json:"rating_image_url"`
	Value          string `json:"value"`
}

type details struct {
	Description       string               `json:"description"`
	WebURL            string               `json:"web_url"`
	Rating            string               `json:"rating"`
	RatingImageURL    string               `json:"rating_image_url"`
	NumReviews        string               `json:"num_reviews"`
	ReviewRatingCount map[string]string    `json:"review_rating_count"`
	Subratings        map[string]subrating `json:"subratings"`
	PriceLevel        string               `json:"price_level"`
	Phone             string               `json:"phone"`
	Website           string               `json:"website"`
	Email             string               `json:"email"`
	PhotoCount        string               `json:"photo_count"`
	SeeAllPhotos      string               `json:"see_all_photos"`
	RankingData       *struct {
		RankingString string `json:"ranking_string"`
	} `json:"ranking_data"`
	Hours *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"hours"`
	Awards []struct {
		DisplayName string `json:"display_name"`
		Year        string `json:"year"`
		Images      struct {
			Small string `json:"small"`
		} `json:"images"`
	} `json:"awards"`
	Features  []string `json:"features"`
	Amenities []string `json:"amenities"`
	Cuisine   []struct {
		LocalizedName string `json:"localized_name"`
	} `json:"cuisine"`
}

type photoSize struct {
	URL string `json:"url"`
}

type photosResponse struct {
	Data []struct {
		PublishedDate string `json:"published_date"`
		Images        struct {
			Original *photoSize `json:"original"`
			Large    *photoSize `json:"large"`
		} `json:"images"`
	} `json:"data"`
}

type review struct {
	Rating         int                  `json:"rating"`
	RatingImageURL string               `json:"rating_image_url"`
	URL            string               `json:"url"`
	Title          string               `json:"title"`
	Text           string               `json:"text"`
	PublishedDate  string               `json:"published_date"`
	TravelDate     string               `json:"travel_date"`
	TripType       string               `json:"trip_type"`
	Subratings     map[string]subrating `json:"subratings"`
	User           struct {
		Username     string `json:"username"`
		UserLocation struct {
			Name string `json:"name"`
		} `json:"user_location"`
		Avatar struct {
			Original string `json:"original"`
		} `json:"avatar"`
	} `json:"user"`
	OwnerResponse *struct {
		Title         string `json:"title"`
		Text          string `json:"text"`
		Author        string `json:"author"`
		PublishedDate string `json:"published_date"`
	} `json:"owner_response"`
}

type reviewsResponse struct {
	Data []review `json:"data"`
}

// Provider turns Tripadvisor location matches into travel cards
type Provider struct {
	client *httpclient.Client
	key    string
	limit  int
}

// NewProvider creates a Tripadvisor provider
func NewProvider(cfg Config) *Provider {
	ua := "HuggyPanda/0.1.0 (https://huggypanda.com)"
	if cfg.Email != "" {
		ua = fmt.Sprintf("HuggyPanda/0.1.0 (https://huggypanda.com; %s)", cfg.Email)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	return &Provider{
		client: httpclient.New(httpclient.Config{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			UserAgent: ua,
			Headers: map[string]string{
				"Referer":         "https://huggypanda.com",
				"Accept-Language": "en-US",
			},
		}),
		key:   cfg.Key,
		limit: cfg.Limit,
	}
}

// Source identifies the provider
func (p *Provider) Source() types.Source {
	return types.Universal(types.SubkindTravel)
}

// Fetch returns one widget per matching place, in search order
func (p *Provider) Fetch(ctx context.Context, q types.Query) ([]types.Item, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, nil
	}

	category := Category(text)
	search := text
	if category == CategoryHotels {
		if derived := HotelQuery(text); derived != "" {
			search = derived
		}
	}

	var found searchResponse
	err := p.client.GetJSON(ctx, "/location/search", p.params(map[string]string{
		"searchQuery": search,
		"category":    category,
	}), &found)
	if err != nil {
		return nil, err
	}

	places := found.Data
	if len(places) > p.limit {
		places = places[:p.limit]
	}
	if len(places) == 0 {
		return nil, nil
	}

	payloads := make([]map[string]interface{}, len(places))
	g, gctx := errgroup.WithContext(ctx)
	for i, place := range places {
		i, place := i, place
		g.Go(func() error {
			payloads[i] = p.card(gctx, place, category)
			return nil
		})
	}
	_ = g.Wait()

	items := make([]types.Item, 0, len(places))
	for i, place := range places {
		items = append(items, types.NewWidget(types.Widget{
			Subkind: types.SubkindTravel,
			Title:   place.Name,
			Payload: payloads[i],
		}))
	}
	return items, nil
}

// card merges the search hit with whatever details, photos and reviews
// could be fetched.
func (p *Provider) card(ctx context.Context, place location, category string) map[string]interface{} {
	payload := map[string]interface{}{
		"category":    category,
		"name":        place.Name,
		"city":        place.Address.City,
		"address":     place.Address.AddressString,
		"location_id": place.LocationID,
	}
	base := "/location/" + url.PathEscape(place.LocationID)

	var d details
	if err := p.client.GetJSON(ctx, base+"/details", p.params(nil), &d); err == nil {
		mergeDetails(payload, d)
	}

	var photos photosResponse
	if err := p.client.GetJSON(ctx, base+"/photos", p.params(map[string]string{
		"limit": strconv.Itoa(MediaLimit),
	}), &photos); err == nil {
		images := make([]map[string]string, 0, len(photos.Data))
		for _, ph := range photos.Data {
			src := ph.Images.Original
			if src == nil {
				src = ph.Images.Large
			}
			if src == nil || src.URL == "" {
				continue
			}
			images = append(images, map[string]string{"image": src.URL, "date": day(ph.PublishedDate)})
		}
		payload["images"] = images
	}

	var reviews reviewsResponse
	if err := p.client.GetJSON(ctx, base+"/reviews", p.params(map[string]string{
		"limit": strconv.Itoa(MediaLimit),
	}), &reviews); err == nil {
		out := make([]map[string]interface{}, 0, len(reviews.Data))
		for _, r := range reviews.Data {
			out = append(out, reviewPayload(r))
		}
		payload["reviews"] = out
	}

	return payload
}

func (p *Provider) params(extra map[string]string) map[string]string {
	params := map[string]string{"key": p.key, "language": "en"}
	for k, v := range extra {
		params[k] = v
	}
	return params
}

func mergeDetails(payload map[string]interface{}, d details) {
	payload["rating"] = d.Rating
	payload["rating_image"] = d.RatingImageURL
	payload["num_reviews"] = d.NumReviews
	payload["review_rating_count"] = d.ReviewRatingCount
	payload["summary_rating"] = summary(d.Subratings)
	payload["description"] = d.Description
	payload["price_level"] = d.PriceLevel
	payload["url"] = d.WebURL
	payload["phone"] = d.Phone
	payload["website"] = d.Website
	payload["email"] = d.Email
	payload["photo_count"] = d.PhotoCount
	payload["photos_url"] = d.SeeAllPhotos
	payload["features"] = nonNil(d.Features)
	payload["amenities"] = nonNil(d.Amenities)
	if d.RankingData != nil {
		payload["rank"] = d.RankingData.RankingString
	}

	hours := []string{}
	if d.Hours != nil {
		hours = nonNil(d.Hours.WeekdayText)
	}
	payload["opening_hours"] = hours

	awards := make([]map[string]string, 0, len(d.Awards))
	for _, a := range d.Awards {
		awards = append(awards, map[string]string{
			"name":  a.DisplayName,
			"year":  a.Year,
			"image": a.Images.Small,
		})
	}
	payload["awards"] = awards

	cuisine := make([]string, 0, len(d.Cuisine))
	for _, c := range d.Cuisine {
		cuisine = append(cuisine, c.LocalizedName)
	}
	payload["cuisine"] = cuisine
}

func reviewPayload(r review) map[string]interface{} {
	out := map[string]interface{}{
		"rating":            r.Rating,
		"rating_image":      r.RatingImageURL,
		"url":               r.URL,
		"title":             r.Title,
		"snippet":           r.Text,
		"review_date":       r.PublishedDate,
		"travel_date":       r.TravelDate,
		"trip_type":         r.TripType,
		"reviewer_username": r.User.Username,
		"reviewer_location": r.User.UserLocation.Name,
		"reviewer_avatar":   r.User.Avatar.Original,
		"summary_rating":    summary(r.Subratings),
	}
	if o := r.OwnerResponse; o != nil {
		out["owner_response"] = map[string]string{
			"title":  o.Title,
			"text":   o.Text,
			"author": o.Author,
			"date":   o.PublishedDate,
		}
	}
	return out
}

// summary flattens subratings in key order so cards render stably
func summary(subs map[string]subrating) []map[string]string {
	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]map[string]string, 0, len(keys))
	for _, k := range keys {
		s := subs[k]
		out = append(out, map[string]string{
			"category":     s.LocalizedName,
			"rating_image": s.RatingImageURL,
			"rating":       s.Value,
		})
	}
	return out
}

// Category picks restaurants for food queries and hotels otherwise
func Category(text string) string {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		switch strings.Trim(word, ".,!?:;") {
		case "restaurant", "restaurants", "food", "eat", "eats", "dining", "dinner", "lunch", "brunch", "cafe", "cafes":
			return CategoryRestaurants
		}
	}
	return CategoryHotels
}

// HotelQuery derives "<place> hotels" from a title such as
// "Lisbon: travel guide" or "Kyoto (city)". It returns "" when the title
// has no place delimiter.
func HotelQuery(title string) string {
	words := strings.Fields(title)
	var place []string
	for i, w := range words {
		if strings.Contains(w, ":") {
			place = words[:i+1]
			break
		}
		if strings.ContainsAny(w, "(-") {
			place = words[:i]
			break
		}
	}

	location := strings.NewReplacer(",", "", ":", "").Replace(strings.Join(place, " "))
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}
	return location + " hotels"
}

// day trims an RFC 3339 timestamp to its date
func day(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC().Format("2006-01-02")
	}
	return ts
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
