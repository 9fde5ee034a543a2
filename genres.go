package main

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const genreNameLength = 60

// GenreName is a genre parsed out of a track description.
type GenreName struct {
	Display string
	Slug    string
}

// ExtractGenreNames splits a comma separated description into genre names.
// Empty entries and entries whose slug repeats an earlier one are dropped,
// the first spelling wins.
func ExtractGenreNames(text string) []GenreName {
	names := []GenreName{}
	seen := map[string]bool{}
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		display := strings.TrimSpace(truncate(part, genreNameLength))
		slug := slugify(display)
		if slug == "" || seen[slug] {
			continue
		}

		seen[slug] = true
		names = append(names, GenreName{Display: display, Slug: slug})
	}
	return names
}

// syncGenres replaces the genres of track with the ones named in its
// description. A genre stored under another spelling takes the spelling
// of the track saved last.
func syncGenres(tx *gorm.DB, track *Track) error {
	names := ExtractGenreNames(track.Description)

	genres := make([]*Genre, 0, len(names))
	for _, name := range names {
		genre := &Genre{}
		err := tx.Where(&Genre{Slug: name.Slug}).
			Attrs(Genre{Name: name.Display}).
			FirstOrCreate(genre).Error
		if err != nil {
			return fmt.Errorf("could not resolve genre %q: %w", name.Slug, err)
		}

		if genre.Name != name.Display {
			err = tx.Model(genre).Update("name", name.Display).Error
			if err != nil {
				return fmt.Errorf("could not rename genre %q: %w", name.Slug, err)
			}
			genre.Name = name.Display
		}
		genres = append(genres, genre)
	}

	association := tx.Model(track).Association("Genres")
	if len(genres) == 0 {
		err := association.Clear()
		if err != nil {
			return fmt.Errorf("could not clear genres of track %d: %w", track.ID, err)
		}
		return nil
	}

	err := association.Replace(genres)
	if err != nil {
		return fmt.Errorf("could not set genres of track %d: %w", track.ID, err)
	}
	return nil
}

var genderTokens = map[string]bool{"female": true, "male": true}

func isGenderToken(s string) bool {
	return genderTokens[strings.ToLower(strings.TrimSpace(s))]
}

// splitGenres separates voice tags from every other genre, keeping order.
func splitGenres(genres []*Genre, primary func(*Genre) bool) (voice, other []*Genre) {
	voice, other = []*Genre{}, []*Genre{}
	for _, g := range genres {
		if primary(g) {
			voice = append(voice, g)
		} else {
			other = append(other, g)
		}
	}
	return voice, other
}
