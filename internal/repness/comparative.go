package repness

import "opinionmap/adapters/stats/proportion"

// ComparativeStats extends GroupStats with the group's standing against everyone else
type ComparativeStats struct {
	GroupStats
	RA  float64 `json:"ra"`
	RD  float64 `json:"rd"`
	RAT float64 `json:"rat"`
	RDT float64 `json:"rdt"`
}

// Compare scores one group against the pooled counts of all other groups.
// The ratio uses the others' +1/+2 smoothed rate; the two-sample tests smooth raw counts themselves.
func Compare(in GroupStats, otherNA, otherND, otherNS int) ComparativeStats {
	return ComparativeStats{
		GroupStats: in,
		RA:         in.PA / (float64(1+otherNA) / float64(2+otherNS)),
		RD:         in.PD / (float64(1+otherND) / float64(2+otherNS)),
		RAT:        proportion.TwoSample(in.NA, otherNA, in.NS, otherNS),
		RDT:        proportion.TwoSample(in.ND, otherND, in.NS, otherNS),
	}
}

// CompareRow scores every group of one statement, pooling the others by subtracting
// the group's own counts from the statement totals.
func CompareRow(row []GroupStats) []ComparativeStats {
	var totalNA, totalND, totalNS int
	for _, s := range row {
		totalNA += s.NA
		totalND += s.ND
		totalNS += s.NS
	}

	out := make([]ComparativeStats, len(row))
	for g, s := range row {
		out[g] = Compare(s, totalNA-s.NA, totalND-s.ND, totalNS-s.NS)
	}
	return out
}
