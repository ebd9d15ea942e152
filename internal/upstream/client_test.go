package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestArrClientItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get(HeaderArrAPIKey) != "key" {
			t.Errorf("missing API key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":1,"title":"The Matrix","year":1999,"tmdbId":603,"sizeOnDisk":4000,"hasFile":true,
			 "qualityProfileId":4,"monitored":true,
			 "movieFile":{"id":10,"quality":{"quality":{"id":7,"name":"Bluray-1080p"}}}},
			{"id":2,"title":"Heat","year":1995,"tmdbId":949,"hasFile":false,"qualityProfileId":4,"monitored":false}
		]`))
	}))
	defer server.Close()

	client := NewRadarrClient(server.URL, "key", time.Second)
	items, err := client.Items(context.Background())
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	matrix := items[0]
	if matrix.Size() != 4000 {
		t.Errorf("expected size 4000, got %d", matrix.Size())
	}
	if !matrix.OnDisk() {
		t.Error("expected movie with file to be on disk")
	}
	if matrix.QualityLabel() != "Bluray-1080p" {
		t.Errorf("expected quality Bluray-1080p, got %q", matrix.QualityLabel())
	}

	heat := items[1]
	if heat.OnDisk() {
		t.Error("expected movie without file to be off disk")
	}
	if heat.QualityLabel() != "" {
		t.Errorf("expected empty quality label, got %q", heat.QualityLabel())
	}
}

func TestMediaItemSeriesStatistics(t *testing.T) {
	item := MediaItem{
		Statistics: &MediaStatistics{SizeOnDisk: 12345, EpisodeFileCount: 3},
	}
	if item.Size() != 12345 {
		t.Errorf("expected size from statistics, got %d", item.Size())
	}
	if !item.OnDisk() {
		t.Error("expected series with episode files to be on disk")
	}
}

func TestPlexClientSections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Error("expected JSON Accept header for Plex")
		}
		switch r.URL.Path {
		case "/library/sections":
			w.Write([]byte(`{"MediaContainer":{"Directory":[
				{"key":"1","title":"Movies","type":"movie"},
				{"key":"2","title":"Home Videos","type":"movie"}
			]}}`))
		case "/library/sections/1/all":
			w.Write([]byte(`{"MediaContainer":{"Metadata":[
				{"ratingKey":"100","title":"The Matrix","year":1999,
				 "Media":[{"Part":[{"size":1000,"file":"/movies/matrix.mkv"},{"size":500,"file":"/movies/matrix2.mkv"}]}]}
			]}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewPlexClient(server.URL, "token", time.Second)

	sections, err := client.Sections(context.Background())
	if err != nil {
		t.Fatalf("Sections returned error: %v", err)
	}
	if len(sections) != 2 || sections[0].Title != "Movies" {
		t.Fatalf("unexpected sections: %+v", sections)
	}

	items, err := client.SectionItems(context.Background(), "1")
	if err != nil {
		t.Fatalf("SectionItems returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Size() != 1500 {
		t.Errorf("expected summed part size 1500, got %d", items[0].Size())
	}
}
