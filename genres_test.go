package main

import (
	"context"
	"testing"
)

func TestExtractGenreNames(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []GenreName
	}{
		{"empty", "", []GenreName{}},
		{"only separators", " , ,, ", []GenreName{}},
		{"case duplicates", "Pop, pop, Rock", []GenreName{{"Pop", "pop"}, {"Rock", "rock"}}},
		{"spacing duplicates", "Hip Hop, hip  hop,Hip-Hop", []GenreName{{"Hip Hop", "hip-hop"}}},
		{"drops names without slug", "Поп, Lo-Fi", []GenreName{{"Lo-Fi", "lo-fi"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractGenreNames(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("name %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}

	t.Run("truncates long names", func(t *testing.T) {
		long := ""
		for i := 0; i < 80; i++ {
			long += "a"
		}
		got := ExtractGenreNames(long)
		if len(got) != 1 || len(got[0].Display) != genreNameLength {
			t.Errorf("expected a %d character name, got %v", genreNameLength, got)
		}
	})
}

func TestSyncGenres(t *testing.T) {
	ctx := context.Background()

	t.Run("collapses duplicates", func(t *testing.T) {
		db := newTestDatabase(t)
		track := createTrack(t, db, "Song", "Pop, pop, Rock", false, 0)

		stored, err := db.GetTrack(ctx, track.ID)
		if err != nil {
			t.Fatalf("failed to load track: %v", err)
		}
		if got := genreSlugs(stored.Genres); !equalStrings(got, []string{"pop", "rock"}) {
			t.Errorf("unexpected genres %v", got)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		db := newTestDatabase(t)
		track := createTrack(t, db, "Song", "Pop, Rock", false, 0)

		if err := db.SaveTrack(ctx, track); err != nil {
			t.Fatalf("failed to save again: %v", err)
		}

		stored, err := db.GetTrack(ctx, track.ID)
		if err != nil {
			t.Fatalf("failed to load track: %v", err)
		}
		if got := genreSlugs(stored.Genres); !equalStrings(got, []string{"pop", "rock"}) {
			t.Errorf("unexpected genres %v", got)
		}

		genres, err := db.GetGenres(ctx)
		if err != nil {
			t.Fatalf("failed to list genres: %v", err)
		}
		if len(genres) != 2 {
			t.Errorf("expected 2 genres, got %d", len(genres))
		}
	})

	t.Run("empty description clears genres", func(t *testing.T) {
		db := newTestDatabase(t)
		track := createTrack(t, db, "Song", "Pop, Rock", false, 0)

		track.Description = ""
		if err := db.SaveTrack(ctx, track); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		stored, err := db.GetTrack(ctx, track.ID)
		if err != nil {
			t.Fatalf("failed to load track: %v", err)
		}
		if len(stored.Genres) != 0 {
			t.Errorf("expected no genres, got %v", genreSlugs(stored.Genres))
		}
	})

	t.Run("replaces genres missing from the text", func(t *testing.T) {
		db := newTestDatabase(t)
		track := createTrack(t, db, "Song", "Pop, Rock", false, 0)

		track.Description = "Rock, Jazz"
		if err := db.SaveTrack(ctx, track); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		stored, err := db.GetTrack(ctx, track.ID)
		if err != nil {
			t.Fatalf("failed to load track: %v", err)
		}
		if got := genreSlugs(stored.Genres); !equalStrings(got, []string{"jazz", "rock"}) {
			t.Errorf("unexpected genres %v", got)
		}
	})

	t.Run("last spelling wins", func(t *testing.T) {
		db := newTestDatabase(t)
		createTrack(t, db, "One", "hip hop", false, 0)
		createTrack(t, db, "Two", "Hip Hop", false, 0)

		genre, err := db.GetGenreBySlug(ctx, "hip-hop")
		if err != nil {
			t.Fatalf("failed to load genre: %v", err)
		}
		if genre.Name != "Hip Hop" {
			t.Errorf("expected name Hip Hop, got %q", genre.Name)
		}

		genres, err := db.GetGenres(ctx)
		if err != nil {
			t.Fatalf("failed to list genres: %v", err)
		}
		if len(genres) != 1 {
			t.Errorf("expected a single merged genre, got %d", len(genres))
		}
	})
}

func TestSplitGenres(t *testing.T) {
	genres := []*Genre{
		{Name: "Female", Slug: "female"},
		{Name: "Pop", Slug: "pop"},
		{Name: "MALE", Slug: "male-vocals"},
	}

	primary, other := splitGenres(genres, (*Genre).IsPrimary)
	if got := genreSlugs(primary); !equalStrings(got, []string{"female", "male-vocals"}) {
		t.Errorf("unexpected primary genres %v", got)
	}
	if got := genreSlugs(other); !equalStrings(got, []string{"pop"}) {
		t.Errorf("unexpected other genres %v", got)
	}

	gender, _ := splitGenres(genres, func(g *Genre) bool { return genderTokens[g.Slug] })
	if got := genreSlugs(gender); !equalStrings(got, []string{"female"}) {
		t.Errorf("unexpected gender tags %v", got)
	}
}
