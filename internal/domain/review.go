package domain

import "time"

// Restaurant is read-only metadata sourced from the input dataset.
type Restaurant struct {
	ID         int64
	Name       string
	Category   string
	Location   string
	PriceRange string
	Rating     float64
}

// Review is an immutable input record owned by a restaurant via RestaurantID.
type Review struct {
	RestaurantID int64
	CommentText  string
	UserRating   float64
	CreatedAt    time.Time
}

// AnnotatedReview attaches computed annotations to a review without mutating it.
type AnnotatedReview struct {
	Review     Review
	Normalized string
	Label      SentimentLabel
}

// Dataset is the whole input document after validation.
type Dataset struct {
	Restaurants []Restaurant
	Reviews     []Review
}

// ReviewsByRestaurant groups reviews by owner, preserving input order.
func (d Dataset) ReviewsByRestaurant() map[int64][]Review {
	grouped := make(map[int64][]Review, len(d.Restaurants))
	for _, r := range d.Reviews {
		grouped[r.RestaurantID] = append(grouped[r.RestaurantID], r)
	}
	return grouped
}
