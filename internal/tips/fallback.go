package tips

import (
	"context"
	"fmt"
)

// FallbackSource returns fixed tips for each type. It never fails.
type FallbackSource struct{}

func (FallbackSource) Tips(_ context.Context, place string, t Type) (string, error) {
	switch t {
	case Etiquette:
		return "🤝 Learn a few basic phrases in the local language\n" +
			"👕 Dress appropriately for cultural sites\n" +
			"💰 Understand local tipping customs", nil
	case Packing:
		return "📷 Camera - Capture the beautiful sights\n" +
			"🗺️ Travel guide - Navigate like a local\n" +
			"🧴 Sunscreen - Protect yourself from the sun", nil
	case ThingsToDo:
		return "🚶 Take a walking tour of the old town\n" +
			"🛍️ Visit local markets for authentic souvenirs\n" +
			"🎭 Attend a cultural performance or festival", nil
	default:
		return fmt.Sprintf("🏛️ Explore the historic landmarks and museums in %s\n", place) +
			"🍽️ Try the local cuisine at traditional restaurants\n" +
			"🌆 Visit during sunset for amazing photo opportunities", nil
	}
}
