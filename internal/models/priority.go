package models

// Rank values used when ordering tasks by priority.
const (
	RankHigh        = 1
	RankMedium      = 2
	RankLow         = 3
	RankUnspecified = 4
)

// priorityRanks maps every stored priority literal to its rank. Historical
// rows use Turkish and English spellings, so both are kept verbatim and the
// match is case-sensitive.
var priorityRanks = map[string]int{
	"high":   RankHigh,
	"HIGH":   RankHigh,
	"yüksek": RankHigh,
	"medium": RankMedium,
	"MEDIUM": RankMedium,
	"orta":   RankMedium,
	"low":    RankLow,
	"LOW":    RankLow,
	"düşük":  RankLow,
}

// Rank returns the ordering weight of a priority literal.
func Rank(priority string) int {
	if r, ok := priorityRanks[priority]; ok {
		return r
	}
	return RankUnspecified
}
