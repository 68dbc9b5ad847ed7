package domain

import "math"

// MetricTotal keys the blended total score in room score tables and
// normalized score maps, alongside the three rubric categories.
const MetricTotal JudgingCategory = "total"

// normalizedMetrics lists every metric a room average carries.
var normalizedMetrics = []JudgingCategory{
	CategoryCoreValues,
	CategoryInnovationProject,
	CategoryRobotDesign,
	MetricTotal,
}

// RoomAverages holds the mean score per metric across the teams judged
// in one room.
type RoomAverages map[JudgingCategory]float64

// RoomScoreTable maps each judging room to its average scores.
// A nil or empty table disables normalization: normalized scores then
// equal raw scores.
type RoomScoreTable map[RoomID]RoomAverages

// ComputeRoomAverages builds a RoomScoreTable from aggregated team
// scores and session assignments. Teams without a session are skipped;
// they cannot be attributed to a room.
func ComputeRoomAverages(scores map[TeamID]TeamScores, sessions []JudgingSession) RoomScoreTable {
	sums := make(map[RoomID]RoomAverages)
	counts := make(map[RoomID]int)

	for _, session := range sessions {
		ts, ok := scores[session.TeamID]
		if !ok {
			continue
		}
		acc := sums[session.RoomID]
		if acc == nil {
			acc = make(RoomAverages, len(normalizedMetrics))
			sums[session.RoomID] = acc
		}
		for _, c := range RubricCategories {
			acc[c] += ts.Scores[c]
		}
		acc[MetricTotal] += ts.TotalScore
		counts[session.RoomID]++
	}

	table := make(RoomScoreTable, len(sums))
	for room, acc := range sums {
		n := float64(counts[room])
		avg := make(RoomAverages, len(acc))
		for metric, sum := range acc {
			avg[metric] = sum / n
		}
		table[room] = avg
	}
	return table
}

// NormalizationFactors computes the per-room, per-metric multipliers
// that correct for systematic scoring differences between rooms.
//
// The overall average of a metric is the mean of the per-room averages;
// a room's factor is overallAverage / roomAverage. Rooms that average
// zero in a metric get factor 1 so normalization never divides by zero.
func NormalizationFactors(table RoomScoreTable) map[RoomID]RoomAverages {
	if len(table) == 0 {
		return nil
	}

	overall := make(RoomAverages, len(normalizedMetrics))
	for _, metric := range normalizedMetrics {
		var sum float64
		for _, avgs := range table {
			sum += avgs[metric]
		}
		overall[metric] = sum / float64(len(table))
	}

	factors := make(map[RoomID]RoomAverages, len(table))
	for room, avgs := range table {
		f := make(RoomAverages, len(normalizedMetrics))
		for _, metric := range normalizedMetrics {
			if avgs[metric] == 0 {
				f[metric] = 1
				continue
			}
			f[metric] = overall[metric] / avgs[metric]
		}
		factors[room] = f
	}
	return factors
}

// NormalizeScores applies the room's normalization factors to a team's
// raw scores, rounding each result to two decimal places.
//
// When the table is empty or does not cover the team's room the raw
// scores pass through unchanged; callers that never compare across
// rooms simply omit the table. Normalized scores are for display and
// cross-room fairness review only; ranking always uses raw scores.
func NormalizeScores(ts TeamScores, table RoomScoreTable, room RoomID) map[JudgingCategory]float64 {
	out := make(map[JudgingCategory]float64, len(normalizedMetrics))
	for _, c := range RubricCategories {
		out[c] = ts.Scores[c]
	}
	out[MetricTotal] = ts.TotalScore

	factors := NormalizationFactors(table)
	roomFactors, ok := factors[room]
	if !ok {
		return out
	}

	for metric, raw := range out {
		out[metric] = round2(raw * roomFactors[metric])
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
