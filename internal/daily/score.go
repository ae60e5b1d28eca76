package daily

import "math"

const (
	daysPerWeek              = 7
	defaultTrainingFrequency = 3
)

// ConsistencyScore is the rounded mean of four adherence percentages, each clamped to [0, 100]:
// nutrition days, water days, task completions over tasks*7 (0 without tasks) and
// completed sessions over the weekly training frequency.
func ConsistencyScore(stats WeeklyStats) int {
	frequency := stats.TrainingFrequency
	if frequency <= 0 {
		frequency = defaultTrainingFrequency
	}

	nutrition := percent(stats.NutritionDays, daysPerWeek)
	water := percent(stats.WaterDays, daysPerWeek)
	tasks := 0.0
	if stats.TotalTasks > 0 {
		tasks = percent(stats.TaskCompletions, stats.TotalTasks*daysPerWeek)
	}
	training := percent(stats.TrainingSessions, frequency)

	return int(math.Round((nutrition + water + tasks + training) / 4))
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return clamp(float64(part)/float64(whole)*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
