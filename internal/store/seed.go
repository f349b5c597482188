package store

import (
	"encoding/json"
	"time"

	"wanderlist/internal/model"
)

const day = 24 * time.Hour

// SampleDestinations returns the first-run collection. The location,
// priceRange and tags fields are legacy extras kept as opaque data.
func SampleDestinations(now time.Time) []model.Destination {
	return []model.Destination{
		{
			ID:        "initial-1",
			Name:      "Paris",
			Category:  "City",
			Rating:    5,
			Notes:     "The City of Light! Experience the Eiffel Tower, world-class museums, charming cafes, and incredible French cuisine.",
			ImageURL:  "https://images.unsplash.com/photo-1502602898657-3e91760cbb34?w=800&q=80",
			CreatedAt: now.Add(-2 * day).UnixMilli(),
			Extra: extras(map[string]any{
				"location":   "France",
				"priceRange": "$$$",
				"tags":       []string{"Culture", "Romance", "Art", "Food"},
			}),
		},
		{
			ID:        "initial-2",
			Name:      "Bali",
			Category:  "Beach",
			Rating:    5,
			Notes:     "Tropical paradise with stunning beaches, ancient temples, lush rice terraces, and vibrant culture.",
			ImageURL:  "https://images.unsplash.com/photo-1537996194471-e657df975ab4?w=800&q=80",
			CreatedAt: now.Add(-day).UnixMilli(),
			Extra: extras(map[string]any{
				"location":   "Indonesia",
				"priceRange": "$$",
				"tags":       []string{"Beach", "Culture", "Adventure", "Wellness"},
			}),
		},
		{
			ID:        "initial-3",
			Name:      "Swiss Alps",
			Category:  "Mountain",
			Rating:    5,
			Notes:     "Breathtaking mountain scenery, world-class skiing, charming villages, and pristine alpine lakes.",
			ImageURL:  "https://images.unsplash.com/photo-1531366936337-7c912a4589a7?w=800&q=80",
			CreatedAt: now.UnixMilli(),
			Extra: extras(map[string]any{
				"location":   "Switzerland",
				"priceRange": "$$$$",
				"tags":       []string{"Nature", "Adventure", "Skiing", "Hiking"},
			}),
		},
	}
}

func extras(fields map[string]any) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		out[k] = b
	}
	return out
}
