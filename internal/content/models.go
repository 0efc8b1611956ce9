package content

import (
	"errors"
	"fmt"
	"strings"

	"aircheck/internal/textutil"
)

// Type identifies one kind of scripted content the station produces.
type Type string

const (
	TypeIntro   Type = "intro"
	TypeOutro   Type = "outro"
	TypeTime    Type = "time"
	TypeWeather Type = "weather"
)

var allTypes = []Type{TypeIntro, TypeOutro, TypeTime, TypeWeather}

var typeSet = func() map[Type]struct{} {
	set := make(map[Type]struct{}, len(allTypes))
	for _, t := range allTypes {
		set[t] = struct{}{}
	}
	return set
}()

// AllTypes returns the ordered list of known content types.
func AllTypes() []Type {
	cp := make([]Type, len(allTypes))
	copy(cp, allTypes)
	return cp
}

// ParseType converts a string into a known Type.
func ParseType(value string) (Type, bool) {
	normalized := Type(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := typeSet[normalized]
	return normalized, ok
}

// IsSongType reports whether the type is keyed by a catalog song.
func (t Type) IsSongType() bool {
	return t == TypeIntro || t == TypeOutro
}

// SongKey identifies a catalog song for intro/outro items.
type SongKey struct {
	ID     string
	Artist string
	Title  string
}

// TimeKey identifies a time-announcement slot.
type TimeKey struct {
	Hour   int
	Minute int
}

// WeatherKey identifies a weather-report slot.
type WeatherKey struct {
	Hour      int
	Condition string
}

// WorkItem is one unit of content to produce. Items are derived entirely from
// the catalog and schedule and are never mutated after construction.
type WorkItem struct {
	Type    Type
	DJ      string
	Song    SongKey
	Slot    TimeKey
	Weather WeatherKey
}

// Folder returns the human-legible filesystem token for the item, stable
// across runs. Songs embed the catalog ID so distinct songs with identical
// titles never collide.
func (w WorkItem) Folder() string {
	switch w.Type {
	case TypeIntro, TypeOutro:
		return fmt.Sprintf("%s_%s_%s",
			textutil.SanitizeToken(w.Song.ID),
			textutil.SanitizeToken(w.Song.Artist),
			textutil.SanitizeToken(w.Song.Title),
		)
	case TypeTime:
		return fmt.Sprintf("%02d%02d", w.Slot.Hour, w.Slot.Minute)
	case TypeWeather:
		return fmt.Sprintf("%02d_%s", w.Weather.Hour, textutil.SanitizeToken(w.Weather.Condition))
	default:
		return "unknown"
	}
}

// Key returns the canonical checkpoint key for the item. The key is pure and
// stable: the path resolver can reconstruct every artifact location from it.
func (w WorkItem) Key() string {
	return string(w.Type) + "/" + w.DJ + "/" + w.Folder()
}

// Label returns a human-readable identity for logs and run summaries.
func (w WorkItem) Label() string {
	switch w.Type {
	case TypeIntro, TypeOutro:
		return fmt.Sprintf("%s for %q by %s (dj %s)", w.Type, w.Song.Title, w.Song.Artist, w.DJ)
	case TypeTime:
		return fmt.Sprintf("time check %02d:%02d (dj %s)", w.Slot.Hour, w.Slot.Minute, w.DJ)
	case TypeWeather:
		return fmt.Sprintf("weather %02d:00 %s (dj %s)", w.Weather.Hour, w.Weather.Condition, w.DJ)
	default:
		return string(w.Type)
	}
}

// Validate reports whether the item carries a well-formed key for its type.
func (w WorkItem) Validate() error {
	if _, ok := typeSet[w.Type]; !ok {
		return fmt.Errorf("unknown content type %q", string(w.Type))
	}
	if strings.TrimSpace(w.DJ) == "" {
		return errors.New("work item missing dj")
	}
	switch w.Type {
	case TypeIntro, TypeOutro:
		if strings.TrimSpace(w.Song.ID) == "" {
			return errors.New("song item missing catalog id")
		}
	case TypeTime:
		if w.Slot.Hour < 0 || w.Slot.Hour > 23 || w.Slot.Minute < 0 || w.Slot.Minute > 59 {
			return fmt.Errorf("time slot %02d:%02d out of range", w.Slot.Hour, w.Slot.Minute)
		}
	case TypeWeather:
		if w.Weather.Hour < 0 || w.Weather.Hour > 23 {
			return fmt.Errorf("weather hour %d out of range", w.Weather.Hour)
		}
		if strings.TrimSpace(w.Weather.Condition) == "" {
			return errors.New("weather item missing condition")
		}
	}
	return nil
}
