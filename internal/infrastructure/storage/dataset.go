package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

// timestampLayouts lists the accepted created_at formats, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type rawRestaurant struct {
	RestaurantID *int64  `json:"restaurant_id"`
	ID           *int64  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Location     string  `json:"location"`
	PriceRange   string  `json:"price_range"`
	Rating       float64 `json:"rating"`
}

type rawReview struct {
	RestaurantID *int64  `json:"restaurant_id"`
	CommentText  string  `json:"comment_text"`
	UserRating   float64 `json:"user_rating"`
	CreatedAt    string  `json:"created_at"`
}

type rawDataset struct {
	Restaurants []rawRestaurant   `json:"restaurants"`
	Reviews     []json.RawMessage `json:"reviews"`
}

// JSONDataset loads the review document from disk.
type JSONDataset struct {
	path     string
	location *time.Location
	logger   *slog.Logger
}

var _ ports.DatasetSource = (*JSONDataset)(nil)

// NewJSONDataset reads path; naive timestamps are interpreted in loc.
func NewJSONDataset(path string, loc *time.Location, logger *slog.Logger) *JSONDataset {
	if loc == nil {
		loc = time.UTC
	}
	return &JSONDataset{path: path, location: loc, logger: logger}
}

// Load parses and validates the dataset file.
func (d *JSONDataset) Load(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	f, err := os.Open(d.path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return DecodeDataset(f, d.location, d.logger)
}

// DecodeDataset validates a dataset document. Malformed reviews are dropped
// with a warning; out-of-range restaurant ratings are clamped into [0,5].
func DecodeDataset(r io.Reader, loc *time.Location, logger *slog.Logger) (domain.Dataset, error) {
	var raw rawDataset
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	var ds domain.Dataset
	seen := make(map[int64]struct{}, len(raw.Restaurants))
	for i, rr := range raw.Restaurants {
		id := rr.RestaurantID
		if id == nil {
			id = rr.ID
		}
		if id == nil {
			return domain.Dataset{}, fmt.Errorf("restaurant #%d has no restaurant_id", i)
		}
		if _, dup := seen[*id]; dup {
			warn(logger, "duplicate restaurant skipped", "restaurant_id", *id)
			continue
		}
		seen[*id] = struct{}{}

		rating := rr.Rating
		if rating < 0 || rating > 5 {
			clamped := min(max(rating, 0), 5)
			warn(logger, "restaurant rating clamped", "restaurant_id", *id, "rating", rating, "clamped", clamped)
			rating = clamped
		}

		ds.Restaurants = append(ds.Restaurants, domain.Restaurant{
			ID:         *id,
			Name:       rr.Name,
			Category:   rr.Category,
			Location:   rr.Location,
			PriceRange: rr.PriceRange,
			Rating:     rating,
		})
	}

	for i, entry := range raw.Reviews {
		var rv rawReview
		if err := json.Unmarshal(entry, &rv); err != nil {
			warn(logger, "review rejected: malformed entry", "index", i, "error", err)
			continue
		}
		if rv.RestaurantID == nil {
			warn(logger, "review rejected: missing restaurant_id", "index", i)
			continue
		}
		owner := *rv.RestaurantID

		text := strings.TrimSpace(rv.CommentText)
		if text == "" {
			warn(logger, "review rejected: empty comment", "index", i, "restaurant_id", owner)
			continue
		}
		ts, err := ParseTimestamp(rv.CreatedAt, loc)
		if err != nil {
			warn(logger, "review rejected: bad created_at", "index", i, "restaurant_id", owner, "error", err)
			continue
		}
		if _, known := seen[owner]; !known {
			warn(logger, "review references unknown restaurant", "index", i, "restaurant_id", owner)
		}
		ds.Reviews = append(ds.Reviews, domain.Review{
			RestaurantID: owner,
			CommentText:  text,
			UserRating:   rv.UserRating,
			CreatedAt:    ts,
		})
	}

	return ds, nil
}

// ParseTimestamp accepts RFC3339 and the common naive layouts.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
