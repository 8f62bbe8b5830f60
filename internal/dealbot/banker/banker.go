package banker

import (
	"math"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/rng"
)

// Offer computes the banker's proposal from the values still in play and the
// 1-based round index. The result is rounded to the nearest 10. An empty
// remaining set yields 0.
func Offer(remaining []float64, round int, src rng.Source) float64 {
	if len(remaining) == 0 {
		return 0
	}

	var sum float64
	for _, v := range remaining {
		sum += v
	}
	avg := sum / float64(len(remaining))

	idx := round - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(resource.BankerBaseModifiers)-1 {
		idx = len(resource.BankerBaseModifiers) - 1
	}

	raw := avg * resource.BankerBaseModifiers[idx] * rng.UniformRange(src, 0.90, 1.10)

	return math.Round(raw/10) * 10
}
