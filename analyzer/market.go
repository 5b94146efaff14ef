package analyzer

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
	"github.com/wealthrate/wealthrate-analytics/client"
)

var log = logger.GetOrCreate("analyzer")

const (
	// order books with at least this many entries are considered deep enough to
	// average the top orders instead of taking the best one
	stableOrderDepth = 10
	topOrdersCount   = 3
	ordersFetchLimit = 10
)

// items traded but never produced, excluded from the stats
var excludedItems = map[string]struct{}{
	"case1":  {},
	"case2":  {},
	"scraps": {},
}

// ItemStats holds the min/avg/max market price of one item, derived from order depth
type ItemStats struct {
	Min float64
	Avg float64
	Max float64
}

// ResourceCost details one production input of an item
type ResourceCost struct {
	Item       string  `json:"item"`
	PrettyName string  `json:"pretty_name"`
	Quantity   float64 `json:"quantity"`
	Min        float64 `json:"min"`
	Avg        float64 `json:"avg"`
	Max        float64 `json:"max"`
}

// BestOption describes the best production location found for an item
type BestOption struct {
	TotalBonus    float64
	RegionBonus   float64
	CountryBonus  float64
	EthicBonus    float64
	Region        string
	Country       string
	DepositEndsAt string
}

// ItemSnapshot is the per-item output of one market analysis run
type ItemSnapshot struct {
	MinPP            float64        `json:"min_pp"`
	AvgPP            float64        `json:"avg_pp"`
	MaxPP            float64        `json:"max_pp"`
	MarketAvg        float64        `json:"market_avg"`
	BaseMinPrice     float64        `json:"base_min_price"`
	BaseAvgPrice     float64        `json:"base_avg_price"`
	BaseMaxPrice     float64        `json:"base_max_price"`
	MinPrice         float64        `json:"min_price"`
	AvgPrice         float64        `json:"avg_price"`
	MaxPrice         float64        `json:"max_price"`
	ProductionPoints float64        `json:"production_points"`
	BonusMultiplier  float64        `json:"bonus_multiplier"`
	TotalBonus       float64        `json:"total_bonus"`
	Resources        []ResourceCost `json:"resources"`
	RegionName       string         `json:"region_name"`
	CountryName      string         `json:"country_name"`
	RegionBonus      float64        `json:"region_bonus"`
	CountryBonus     float64        `json:"country_bonus"`
	EthicBonus       float64        `json:"ethic_bonus"`
	DepositEndsAt    string         `json:"deposit_ends_at,omitempty"`
	Company          *CompanyStats  `json:"company_stats,omitempty"`
}

// marketAnalyzer computes per-item profitability, considering production costs and
// regional bonuses
type marketAnalyzer struct {
	gateway    GameGateway
	dispatcher Dispatcher
}

// NewMarketAnalyzer creates a new market analyzer
func NewMarketAnalyzer(gateway GameGateway, dispatcher Dispatcher) (*marketAnalyzer, error) {
	if check.IfNil(gateway) {
		return nil, errNilGateway
	}
	if check.IfNil(dispatcher) {
		return nil, errNilDispatcher
	}

	return &marketAnalyzer{
		gateway:    gateway,
		dispatcher: dispatcher,
	}, nil
}

// Snapshot fetches prices, order-depth stats and best production options, then
// computes the profit per production point (min/avg/max) for every producible item
func (ma *marketAnalyzer) Snapshot(ctx context.Context) (map[string]*ItemSnapshot, error) {
	pricesResp, err := ma.gateway.ItemPrices(ctx)
	if err != nil {
		return nil, err
	}

	rawPrices := make(map[string]float64)
	for code, price := range pricesResp.Get("result.data").Map() {
		rawPrices[code] = price.Float()
	}

	items := make([]string, 0, len(rawPrices))
	for code := range rawPrices {
		items = append(items, code)
	}
	sort.Strings(items)

	stats, err := ma.itemStats(ctx, items, rawPrices)
	if err != nil {
		return nil, err
	}

	bestOptions := ma.bestProductionOptions(ctx, items)

	snapshot := make(map[string]*ItemSnapshot)
	for _, item := range items {
		prodInfo, err := ma.gateway.ProductionInfo(ctx, item)
		if err != nil {
			return nil, err
		}
		if prodInfo.Points <= 0 {
			continue
		}

		itemStats := stats[item]

		// conservative profit sells low and buys inputs high; optimistic is the reverse
		minProfit := itemStats.Min
		avgProfit := itemStats.Avg
		maxProfit := itemStats.Max

		resources := make([]ResourceCost, 0, len(prodInfo.Needs))
		needs := make([]string, 0, len(prodInfo.Needs))
		for res := range prodInfo.Needs {
			needs = append(needs, res)
		}
		sort.Strings(needs)

		for _, res := range needs {
			qty := prodInfo.Needs[res]
			resStats := stats[res]
			minProfit -= resStats.Max * qty
			avgProfit -= resStats.Avg * qty
			maxProfit -= resStats.Min * qty

			resources = append(resources, ResourceCost{
				Item:     res,
				Quantity: qty,
				Min:      resStats.Min,
				Avg:      resStats.Avg,
				Max:      resStats.Max,
			})
		}

		bestOpt := bestOptions[item]
		multiplier := 1 + bestOpt.TotalBonus/100

		snapshot[item] = &ItemSnapshot{
			MinPP:            round3(minProfit * multiplier / prodInfo.Points),
			AvgPP:            round3(avgProfit * multiplier / prodInfo.Points),
			MaxPP:            round3(maxProfit * multiplier / prodInfo.Points),
			MarketAvg:        round2(itemStats.Avg),
			BaseMinPrice:     round3(itemStats.Min),
			BaseAvgPrice:     round3(itemStats.Avg),
			BaseMaxPrice:     round3(itemStats.Max),
			MinPrice:         round3(minProfit),
			AvgPrice:         round3(avgProfit),
			MaxPrice:         round3(maxProfit),
			ProductionPoints: prodInfo.Points,
			BonusMultiplier:  multiplier,
			TotalBonus:       bestOpt.TotalBonus,
			Resources:        resources,
			RegionName:       bestOpt.Region,
			CountryName:      bestOpt.Country,
			RegionBonus:      bestOpt.RegionBonus,
			CountryBonus:     bestOpt.CountryBonus,
			EthicBonus:       bestOpt.EthicBonus,
			DepositEndsAt:    bestOpt.DepositEndsAt,
		}
	}

	log.Debug("market snapshot computed", "items", len(snapshot))

	return snapshot, nil
}

// itemStats derives min/avg/max from order depth: the listed price is the average;
// when an order book side holds at least stableOrderDepth entries the top orders are
// averaged, otherwise the single best order (or the listed price) is used
func (ma *marketAnalyzer) itemStats(ctx context.Context, items []string, prices map[string]float64) (map[string]ItemStats, error) {
	tracked := make([]string, 0, len(items))
	for _, item := range items {
		_, excluded := excludedItems[item]
		_, priced := prices[item]
		if priced && !excluded {
			tracked = append(tracked, item)
		}
	}

	calls := make([]client.LogicalCall, 0, len(tracked))
	for _, item := range tracked {
		calls = append(calls, client.LogicalCall{
			Method: "tradingOrder.getTopOrders",
			Params: map[string]interface{}{"itemCode": item, "limit": ordersFetchLimit},
		})
	}

	results, err := ma.dispatcher.Batch(ctx, calls, false)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]ItemStats, len(tracked))
	for i, item := range tracked {
		avg := round3(prices[item])
		res := results[i]

		if res.IsEmpty() || res.HasError() {
			// no order depth available, fall back to the listed price
			stats[item] = ItemStats{Min: avg, Avg: avg, Max: avg}
			continue
		}

		buyPrices := orderPrices(res.Data().Get("buyOrders"))
		sellPrices := orderPrices(res.Data().Get("sellOrders"))

		stats[item] = ItemStats{
			Min: sidePrice(buyPrices, avg),
			Avg: avg,
			Max: sidePrice(sellPrices, avg),
		}
	}

	return stats, nil
}

func orderPrices(orders gjson.Result) []float64 {
	prices := make([]float64, 0)
	for _, order := range orders.Array() {
		price := order.Get("price")
		if price.Exists() {
			prices = append(prices, price.Float())
		}
	}

	return prices
}

func sidePrice(prices []float64, fallback float64) float64 {
	if len(prices) >= stableOrderDepth {
		sum := 0.0
		for _, price := range prices[:topOrdersCount] {
			sum += price
		}
		return round3(sum / topOrdersCount)
	}
	if len(prices) > 0 {
		return round3(prices[0])
	}

	return fallback
}

// bestProductionOptions resolves, per item, the recommended region with the highest
// bonus (ties broken by the latest deposit end). Items whose recommendations cannot be
// fetched are simply absent from the result.
func (ma *marketAnalyzer) bestProductionOptions(ctx context.Context, items []string) map[string]BestOption {
	options := make(map[string]BestOption)

	countries, err := ma.gateway.Countries(ctx)
	if err != nil {
		log.Warn("could not fetch countries, location names will be unresolved", "error", err)
	}
	regions, err := ma.gateway.Regions(ctx)
	if err != nil {
		log.Warn("could not fetch regions, location names will be unresolved", "error", err)
	}

	countryNames := make(map[string]string, len(countries))
	for _, country := range countries {
		countryNames[country.Get("_id").String()] = country.Get("name").String()
	}

	for _, item := range items {
		recs, err := ma.gateway.RecommendedRegions(ctx, item)
		if err != nil || len(recs) == 0 {
			continue
		}

		bestRec := pickBestRecommendation(recs)

		regionID := bestRec.Get("regionId").String()
		regionObj := regions[regionID]
		regionName := regionObj.Get("name").String()
		if len(regionName) == 0 {
			regionName = regionObj.Get("code").String()
		}
		if len(regionName) == 0 {
			regionName = regionID
		}

		countryName, ok := countryNames[regionObj.Get("country").String()]
		if !ok {
			countryName = "Unknown"
		}

		depositBonus := bestRec.Get("depositBonus").Float()
		depositEndsAt := ""
		if depositBonus > 0 {
			depositEndsAt = bestRec.Get("depositEndAt").String()
		}

		options[item] = BestOption{
			TotalBonus:    bestRec.Get("bonus").Float(),
			RegionBonus:   depositBonus,
			CountryBonus:  bestRec.Get("strategicBonus").Float(),
			EthicBonus:    bestRec.Get("ethicDepositBonus").Float() + bestRec.Get("ethicSpecializationBonus").Float(),
			Region:        regionName,
			Country:       countryName,
			DepositEndsAt: depositEndsAt,
		}
	}

	return options
}

func pickBestRecommendation(recs []gjson.Result) gjson.Result {
	best := recs[0]
	bestBonus, bestTs := recommendationKey(best)

	for _, rec := range recs[1:] {
		bonus, ts := recommendationKey(rec)
		better := bonus > bestBonus || (bonus == bestBonus && ts > bestTs)
		if better {
			best = rec
			bestBonus = bonus
			bestTs = ts
		}
	}

	return best
}

// recommendations are ranked by bonus, then by how long an active deposit lasts
func recommendationKey(rec gjson.Result) (float64, float64) {
	bonus := rec.Get("bonus").Float()

	ts := 0.0
	endAt := rec.Get("depositEndAt").String()
	if rec.Get("depositBonus").Float() > 0 && len(endAt) > 0 {
		parsed, err := time.Parse(time.RFC3339, endAt)
		if err == nil {
			ts = float64(parsed.Unix())
		}
	}

	return bonus, ts
}

func round3(val float64) float64 {
	return math.Round(val*1000) / 1000
}

func round2(val float64) float64 {
	return math.Round(val*100) / 100
}

// IsInterfaceNil returns true if the value under the interface is nil
func (ma *marketAnalyzer) IsInterfaceNil() bool {
	return ma == nil
}
