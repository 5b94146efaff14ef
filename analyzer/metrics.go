package analyzer

// ProfitabilityMetricKeys are the metric names tracked in the profitability history
var ProfitabilityMetricKeys = []string{"min_pp", "avg_pp", "max_pp"}

// CompanyMetricKeys are the metric names tracked in the companies history
var CompanyMetricKeys = []string{
	"comp_best_count",
	"comp_best_workers",
	"comp_best_ae",
	"comp_others_count",
	"comp_others_workers",
	"comp_others_ae",
	"comp_total_count",
	"comp_total_workers",
	"comp_total_ae",
}

// ProfitabilityMetrics flattens a snapshot to the per-item metric values tracked in
// the profitability history
func ProfitabilityMetrics(snapshot map[string]*ItemSnapshot) map[string]map[string]float64 {
	metrics := make(map[string]map[string]float64, len(snapshot))
	for item, snap := range snapshot {
		metrics[item] = map[string]float64{
			"min_pp": snap.MinPP,
			"avg_pp": snap.AvgPP,
			"max_pp": snap.MaxPP,
		}
	}

	return metrics
}

// CompanyMetrics flattens company stats to the per-item metric values tracked in the
// companies history
func CompanyMetrics(stats map[string]*CompanyStats) map[string]map[string]float64 {
	metrics := make(map[string]map[string]float64, len(stats))
	for item, itemStats := range stats {
		metrics[item] = map[string]float64{
			"comp_best_count":     float64(itemStats.BestCount),
			"comp_best_workers":   float64(itemStats.BestWorkers),
			"comp_best_ae":        float64(itemStats.BestAE),
			"comp_others_count":   float64(itemStats.OthersCount),
			"comp_others_workers": float64(itemStats.OthersWorkers),
			"comp_others_ae":      float64(itemStats.OthersAE),
			"comp_total_count":    float64(itemStats.TotalCount),
			"comp_total_workers":  float64(itemStats.TotalWorkers),
			"comp_total_ae":       float64(itemStats.TotalAE),
		}
	}

	return metrics
}
