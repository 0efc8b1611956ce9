package catalog

import (
	"context"
	"slices"

	"aircheck/internal/content"
)

// Schedule carries the slot configuration needed to expand time and
// weather work.
type Schedule struct {
	TimeMinutes       []int
	WeatherHours      []int
	WeatherConditions []string
}

// Selection narrows a run to particular content types, DJs, or a song
// limit. Zero values select everything.
type Selection struct {
	Types []content.Type
	DJs   []string
	Limit int
}

func (sel Selection) wantsType(t content.Type) bool {
	return len(sel.Types) == 0 || slices.Contains(sel.Types, t)
}

func (sel Selection) wantsDJ(id string) bool {
	return len(sel.DJs) == 0 || slices.Contains(sel.DJs, id)
}

// SongSource supplies the library; satisfied by *Store.
type SongSource interface {
	Songs(ctx context.Context, limit int) ([]Song, error)
}

// WorkItems expands the catalog and schedule into the full ordered
// list of items for a run. Ordering is fixed so resumed runs walk the
// same sequence: content types in their canonical order, DJs in roster
// order, items in catalog or slot order within each pair.
func WorkItems(ctx context.Context, source SongSource, schedule Schedule, djs []string, sel Selection) ([]content.WorkItem, error) {
	var songs []Song
	if sel.wantsType(content.TypeIntro) || sel.wantsType(content.TypeOutro) {
		var err error
		songs, err = source.Songs(ctx, sel.Limit)
		if err != nil {
			return nil, err
		}
	}
	timeSlots := TimeSlots(schedule.TimeMinutes)
	weatherSlots := WeatherSlots(schedule.WeatherHours, schedule.WeatherConditions)

	var items []content.WorkItem
	for _, contentType := range content.AllTypes() {
		if !sel.wantsType(contentType) {
			continue
		}
		for _, dj := range djs {
			if !sel.wantsDJ(dj) {
				continue
			}
			switch contentType {
			case content.TypeIntro, content.TypeOutro:
				for _, song := range songs {
					key := content.SongKey{ID: song.ID, Artist: song.Artist, Title: song.Title}
					items = append(items, content.WorkItem{Type: contentType, DJ: dj, Song: key})
				}
			case content.TypeTime:
				for _, slot := range timeSlots {
					key := slot
					items = append(items, content.WorkItem{Type: contentType, DJ: dj, Slot: key})
				}
			case content.TypeWeather:
				for _, slot := range weatherSlots {
					key := slot
					items = append(items, content.WorkItem{Type: contentType, DJ: dj, Weather: key})
				}
			}
		}
	}
	return items, nil
}
