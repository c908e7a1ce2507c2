package classifier

import "strings"

// fallbackRule maps keywords to a triage outcome. First match wins, so more
// specific rules sit above general ones.
type fallbackRule struct {
	keywords    []string
	category    string
	priority    int
	department  string
	isEmergency bool
}

var fallbackRules = []fallbackRule{
	{
		keywords:    []string{"gas leak", "fire", "explosion", "collapsed", "electrocution"},
		category:    "Infrastructure",
		priority:    5,
		department:  "Emergency Services",
		isEmergency: true,
	},
	{
		keywords:   []string{"pothole", "road", "street", "bridge", "sidewalk", "streetlight", "water main", "sewer"},
		category:   "Infrastructure",
		priority:   3,
		department: "Public Works",
	},
	{
		keywords:   []string{"garbage", "trash", "pollution", "dumping", "sewage", "smoke", "tree", "park"},
		category:   "Environment",
		priority:   3,
		department: "Sanitation",
	},
	{
		keywords:   []string{"noise", "harassment", "homeless", "vandalism", "graffiti", "loitering"},
		category:   "Social",
		priority:   2,
		department: "Community Affairs",
	},
	{
		keywords:   []string{"corruption", "bribe", "official", "permit", "license"},
		category:   "Governance",
		priority:   4,
		department: "City Clerk",
	},
	{
		keywords:   []string{"tax", "budget", "fee", "fine", "funding"},
		category:   "Budget",
		priority:   2,
		department: "Finance",
	},
}

// Fallback classifies deterministically by keyword when the model is
// unavailable. It always succeeds; unmatched text lands in a generic
// medium-priority bucket.
func Fallback(req Request) Classification {
	text := strings.ToLower(req.Title + " " + req.Description)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return Classification{
					Category:    rule.category,
					Priority:    rule.priority,
					Confidence:  40,
					Department:  rule.department,
					IsEmergency: rule.isEmergency,
					Source:      "fallback",
				}
			}
		}
	}
	return Classification{
		Category:   "Social",
		Priority:   3,
		Confidence: 10,
		Department: "Community Affairs",
		Source:     "fallback",
	}
}
