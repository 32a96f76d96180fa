package models

import (
	"encoding/json"
	"testing"
)

func TestMovieDetailsDecode(t *testing.T) {
	body := `{"id":27205,"title":"Inception","poster_path":"/p.jpg","runtime":148,
		"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science-Fiction"}],"vote_average":8.4}`

	var d MovieDetails
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	if d.ID != 27205 || d.Title != "Inception" {
		t.Errorf("embedded movie fields not decoded: %+v", d.Movie)
	}
	if d.Runtime != 148 {
		t.Errorf("expected runtime 148, got %d", d.Runtime)
	}
	names := d.GenreNames()
	if len(names) != 2 || names[1] != "Science-Fiction" {
		t.Errorf("unexpected genres %v", names)
	}
}

func TestVideoURL(t *testing.T) {
	tc := []struct {
		name  string
		video Video
		want  string
	}{
		{name: "youtube", video: Video{Site: "YouTube", Key: "YoHD9XEInc0"}, want: "https://www.youtube.com/watch?v=YoHD9XEInc0"},
		{name: "vimeo", video: Video{Site: "Vimeo", Key: "12345"}, want: "https://vimeo.com/12345"},
		{name: "unknown", video: Video{Site: "Dailymotion", Key: "x"}, want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.video.URL(); got != tt.want {
				t.Errorf("URL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	m := Movie{ID: 10, Title: "Heat", PosterPath: "/heat.jpg", VoteAverage: 7.9, ReleaseDate: "1995-12-15", Overview: "LA crime saga", Popularity: 55}
	item := Snapshot(m)

	want := WatchlistItem{ID: 10, Title: "Heat", PosterPath: "/heat.jpg", VoteAverage: 7.9, ReleaseDate: "1995-12-15", Overview: "LA crime saga"}
	if item != want {
		t.Errorf("Snapshot() = %+v, want %+v", item, want)
	}

	if err := item.Validate(); err != nil {
		t.Errorf("expected valid item: %v", err)
	}
	if err := (WatchlistItem{ID: 0, Title: "x"}).Validate(); err == nil {
		t.Error("expected error for zero id")
	}
	if err := (WatchlistItem{ID: 1}).Validate(); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestSessionJSONLayout(t *testing.T) {
	data, err := json.Marshal(Session{ID: 1, Email: "a@b.c", Name: "A", Token: "tok"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"id", "email", "name", "tmdbToken", "loginTime"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q in persisted session", key)
		}
	}
}
