package tripadvisor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huggypanda/backend/internal/shared/httpclient"
	"github.com/huggypanda/backend/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, mux *http.ServeMux) *Provider {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewProvider(Config{BaseURL: srv.URL, Key: "k", Limit: 2})
}

func TestHotelQuery(t *testing.T) {
	assert.Equal(t, "Lisbon hotels", HotelQuery("Lisbon: travel guide"))
	assert.Equal(t, "Kyoto hotels", HotelQuery("Kyoto (city)"))
	assert.Equal(t, "San Sebastian hotels", HotelQuery("San Sebastian, Spain - things to do"))
	assert.Equal(t, "", HotelQuery("paris"))
	assert.Equal(t, "", HotelQuery("Saint-Tropez"))
}

func TestCategory(t *testing.T) {
	assert.Equal(t, CategoryHotels, Category("Rome (city)"))
	assert.Equal(t, CategoryRestaurants, Category("best food in Rome"))
	assert.Equal(t, CategoryRestaurants, Category("Restaurants, Lyon"))
}

func TestFetchHotels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/location/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "k", q.Get("key"))
		assert.Equal(t, "Lisbon hotels", q.Get("searchQuery"))
		assert.Equal(t, CategoryHotels, q.Get("category"))
		assert.Equal(t, "en", q.Get("language"))
		_, _ = w.Write([]byte(`{"data":[
			{"location_id":"101","name":"Hotel Avenida","address_obj":{"city":"Lisbon","address_string":"Av. da Liberdade 1"}},
			{"location_id":"102","name":"Casa Alfama","address_obj":{"city":"Lisbon","address_string":"Rua 2"}},
			{"location_id":"103","name":"Over Limit","address_obj":{"city":"Lisbon"}}]}`))
	})
	mux.HandleFunc("/location/101/details", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rating":"4.5","num_reviews":"812","web_url":"https://ta.example/101",
			"ranking_data":{"ranking_string":"#3 of 250 hotels in Lisbon"},
			"subratings":{"1":{"localized_name":"Rooms","rating_image_url":"r1.svg","value":"4.5"},
				"0":{"localized_name":"Location","rating_image_url":"r0.svg","value":"5.0"}},
			"hours":{"weekday_text":["Monday: open"]},
			"awards":[{"display_name":"Travelers Choice","year":"2024","images":{"small":"a.png"}}],
			"amenities":["Pool"]}`))
	})
	mux.HandleFunc("/location/101/photos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[
			{"published_date":"2024-05-01T10:00:00Z","images":{"original":{"url":"o.jpg"}}},
			{"published_date":"2024-06-01T10:00:00Z","images":{"large":{"url":"l.jpg"}}},
			{"images":{}}]}`))
	})
	mux.HandleFunc("/location/101/reviews", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"rating":5,"title":"Lovely","text":"Great stay",
			"user":{"username":"ana","user_location":{"name":"Porto"},"avatar":{"original":"av.jpg"}},
			"owner_response":{"title":"Thanks","text":"Come back","author":"GM","published_date":"2024-07-01"}}]}`))
	})
	// 102 has no enrichment endpoints
	for _, suffix := range []string{"details", "photos", "reviews"} {
		mux.HandleFunc("/location/102/"+suffix, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
	}

	p := serve(t, mux)
	assert.Equal(t, types.Universal(types.SubkindTravel), p.Source())

	items, err := p.Fetch(context.Background(), types.Query{Text: "Lisbon: travel guide"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0].Widget
	require.NotNil(t, first)
	assert.Equal(t, types.SubkindTravel, first.Subkind)
	assert.Equal(t, "Hotel Avenida", first.Title)
	assert.Equal(t, "Lisbon", first.Payload["city"])
	assert.Equal(t, "4.5", first.Payload["rating"])
	assert.Equal(t, "#3 of 250 hotels in Lisbon", first.Payload["rank"])
	assert.Equal(t, []string{"Monday: open"}, first.Payload["opening_hours"])
	assert.Equal(t, []string{"Pool"}, first.Payload["amenities"])
	assert.Equal(t, []string{}, first.Payload["features"])
	assert.Equal(t, []map[string]string{
		{"category": "Location", "rating_image": "r0.svg", "rating": "5.0"},
		{"category": "Rooms", "rating_image": "r1.svg", "rating": "4.5"},
	}, first.Payload["summary_rating"])
	assert.Equal(t, []map[string]string{
		{"image": "o.jpg", "date": "2024-05-01"},
		{"image": "l.jpg", "date": "2024-06-01"},
	}, first.Payload["images"])

	reviews, ok := first.Payload["reviews"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, reviews, 1)
	assert.Equal(t, "ana", reviews[0]["reviewer_username"])
	assert.Equal(t, "Porto", reviews[0]["reviewer_location"])
	assert.Equal(t, map[string]string{
		"title": "Thanks", "text": "Come back", "author": "GM", "date": "2024-07-01",
	}, reviews[0]["owner_response"])

	second := items[1].Widget
	assert.Equal(t, "Casa Alfama", second.Title)
	assert.Equal(t, "Rua 2", second.Payload["address"])
	assert.NotContains(t, second.Payload, "rating")
	assert.NotContains(t, second.Payload, "images")
	assert.NotContains(t, second.Payload, "reviews")
}

func TestFetchRestaurants(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/location/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, CategoryRestaurants, r.URL.Query().Get("category"))
		assert.Equal(t, "food in Lyon: bouchons", r.URL.Query().Get("searchQuery"))
		_, _ = w.Write([]byte(`{"data":[{"location_id":"7","name":"Chez Paul"}]}`))
	})
	mux.HandleFunc("/location/7/details", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"price_level":"$$","cuisine":[{"localized_name":"French"}]}`))
	})

	items, err := serve(t, mux).Fetch(context.Background(), types.Query{Text: "food in Lyon: bouchons"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	w := items[0].Widget
	assert.Equal(t, CategoryRestaurants, w.Payload["category"])
	assert.Equal(t, "$$", w.Payload["price_level"])
	assert.Equal(t, []string{"French"}, w.Payload["cuisine"])
}

func TestFetchNoResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/location/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	items, err := serve(t, mux).Fetch(context.Background(), types.Query{Text: "qwxz"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchSearchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/location/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})

	_, err := serve(t, mux).Fetch(context.Background(), types.Query{Text: "rome"})
	var upstream *httpclient.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusForbidden, upstream.Status)
}
