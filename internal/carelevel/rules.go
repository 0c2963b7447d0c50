package carelevel

import "strings"

type rule struct {
	match func(text string) bool
	level int
}

func anyOf(words ...string) func(string) bool {
	return func(text string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
}

func allOf(words ...string) func(string) bool {
	return func(text string) bool {
		for _, w := range words {
			if !strings.Contains(text, w) {
				return false
			}
		}
		return true
	}
}

// Rule order is significant: the first match wins.
var rulesFor = map[Dimension][]rule{
	Light: {
		{anyOf("low light", "low-light", "tolerates shade", "shade"), 1},
		{anyOf("grow light", "very bright", "high light"), 5},
		{anyOf("full sun", "direct sun"), 4},
		{allOf("bright", "indirect"), 3},
		{anyOf("medium light", "moderate light", "medium", "moderate"), 2},
	},
	Water: {
		{allOf("consistently", "moist"), 4},
		{anyOf("drought-tolerant", "drought tolerant", "sparingly"), 1},
		{anyOf("dry out between", "top inch"), 2},
		{anyOf("sensitive to drought"), 5},
	},
	Soil: {
		{anyOf("specialized", "acidic"), 5},
		{anyOf("orchid", "bark", "chunky", "aroid"), 4},
		{anyOf("peat", "perlite"), 3},
		{anyOf("cactus", "succulent", "well-draining", "well draining"), 2},
		{anyOf("any potting", "standard potting", "regular potting", "general potting"), 1},
	},
	Humidity: {
		{anyOf("humidifier", "very high humidity"), 5},
		{anyOf("high humidity", "humid environment", "mist"), 4},
		{anyOf("average", "normal household", "household humidity"), 2},
		{anyOf("dry air", "low humidity", "tolerates dry"), 1},
	},
	Fertilizer: {
		{anyOf("not necessary", "rarely", "once or twice a year", "once a year"), 1},
		{anyOf("every two weeks", "every 2 weeks", "biweekly", "bi-weekly"), 4},
		{anyOf("weekly", "every week"), 5},
		{anyOf("monthly", "every month", "once a month"), 3},
		{anyOf("growing season", "spring and summer"), 2},
	},
	Maintenance: {
		{anyOf("difficult", "demanding", "finicky"), 5},
		{anyOf("minimal", "low maintenance", "low-maintenance", "little pruning", "rarely needs"), 1},
		{anyOf("regular pruning", "prune regularly", "pinch", "frequent"), 4},
		{anyOf("staking", "support", "repot annually", "repot every year"), 4},
		{anyOf("wipe", "dust", "remove dead", "remove damaged", "remove yellow"), 2},
	},
}
