// AngelaMos | 2026
// swot.go

package benchmark

import (
	"fmt"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendFlat      Trend = "flat"
	TrendUnknown   Trend = "unknown"
)

type Bucket string

const (
	BucketStrength    Bucket = "strength"
	BucketWeakness    Bucket = "weakness"
	BucketOpportunity Bucket = "opportunity"
	BucketThreat      Bucket = "threat"
)

type Fact struct {
	KPIID  string `json:"kpi_id"`
	Bucket Bucket `json:"bucket"`
	Detail string `json:"detail"`
}

type SWOT struct {
	Strengths     []Fact `json:"strengths"`
	Weaknesses    []Fact `json:"weaknesses"`
	Opportunities []Fact `json:"opportunities"`
	Threats       []Fact `json:"threats"`
}

// DeriveSWOT assigns each compared KPI a SWOT bucket from its verdict
// and the review's revenue trend. Internal KPIs land in Strengths or
// Weaknesses; registry-flagged external KPIs land in Opportunities or
// Threats. The derivation is a fixed rule table: the narrative layer
// may elaborate on these facts but never overrides them.
func DeriveSWOT(rows []Comparison, trend Trend) SWOT {
	var swot SWOT

	for _, row := range rows {
		positive := row.Verdict == VerdictAbove ||
			(row.Verdict == VerdictAt && trend == TrendImproving)
		negative := row.Verdict == VerdictBelow ||
			(row.Verdict == VerdictAt && trend == TrendDeclining)

		switch {
		case row.External && positive:
			swot.Opportunities = append(swot.Opportunities, Fact{
				KPIID:  row.KPIID,
				Bucket: BucketOpportunity,
				Detail: fmt.Sprintf(
					"Opportunity to build on %s versus the industry",
					row.KPIID,
				),
			})
		case row.External && negative:
			swot.Threats = append(swot.Threats, Fact{
				KPIID:  row.KPIID,
				Bucket: BucketThreat,
				Detail: fmt.Sprintf(
					"Exposure risk in %s versus the industry",
					row.KPIID,
				),
			})
		case positive:
			swot.Strengths = append(swot.Strengths, Fact{
				KPIID:  row.KPIID,
				Bucket: BucketStrength,
				Detail: fmt.Sprintf("Strong performance in %s", row.KPIID),
			})
		case negative:
			swot.Weaknesses = append(swot.Weaknesses, Fact{
				KPIID:  row.KPIID,
				Bucket: BucketWeakness,
				Detail: fmt.Sprintf("Weak performance in %s", row.KPIID),
			})
		}
	}

	return swot
}

// Facts flattens the four buckets for prompt construction.
func (s SWOT) Facts() []Fact {
	out := make([]Fact, 0,
		len(s.Strengths)+len(s.Weaknesses)+
			len(s.Opportunities)+len(s.Threats))
	out = append(out, s.Strengths...)
	out = append(out, s.Weaknesses...)
	out = append(out, s.Opportunities...)
	out = append(out, s.Threats...)
	return out
}
