package quote

import (
	"github.com/evergrove/storefront/internal/domain"
)

// FallbackPool is the fixed local pool served when the upstream provider
// fails. The entries never change at runtime.
var FallbackPool = []domain.Quote{
	{
		Content: "The best time to plant a tree was 20 years ago. The second best time is now.",
		Author:  "Chinese Proverb",
		Tags:    []string{"wisdom", "inspiration"},
	},
	{
		Content: "In the world of bonsai, patience is not just a virtue—it's an art form.",
		Author:  "Japanese Proverb",
		Tags:    []string{"bonsai", "patience"},
	},
	{
		Content: "Like a bonsai tree, personal growth requires careful pruning and constant attention.",
		Author:  "Zen Teaching",
		Tags:    []string{"growth", "mindfulness"},
	},
	{
		Content: "Nature does not hurry, yet everything is accomplished.",
		Author:  "Lao Tzu",
		Tags:    []string{"nature", "patience"},
	},
	{
		Content: "The journey of a thousand miles begins with a single step.",
		Author:  "Lao Tzu",
		Tags:    []string{"inspiration", "journey"},
	},
}
