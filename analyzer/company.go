package analyzer

import (
	"context"
	"sort"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/tidwall/gjson"
	"github.com/wealthrate/wealthrate-analytics/client"
)

const (
	usersPageSize     = 100
	companiesPageSize = 100
	// when the upstream returns exactly this many recommendations all tied at the max
	// bonus, the tie is treated as country-wide rather than region-specific
	fullRecommendationSet = 5
)

// CompanyStats aggregates company basing numbers for one item, split by whether the
// company sits in one of the item's best-bonus regions
type CompanyStats struct {
	BestCount        int `json:"comp_best_count"`
	BestWorkers      int `json:"comp_best_workers"`
	BestAE           int `json:"comp_best_ae"`
	OthersCount      int `json:"comp_others_count"`
	OthersWorkers    int `json:"comp_others_workers"`
	OthersAE         int `json:"comp_others_ae"`
	TotalCount       int `json:"comp_total_count"`
	TotalWorkers     int `json:"comp_total_workers"`
	TotalAE          int `json:"comp_total_ae"`
	BestRegionsCount int `json:"comp_best_regions_count"`
}

// companyAnalyzer scrapes all companies, through a two-level paginated crawl, and
// aggregates their basing statistics per item
type companyAnalyzer struct {
	gateway    GameGateway
	dispatcher Dispatcher
	crawler    Crawler
}

// NewCompanyAnalyzer creates a new company analyzer
func NewCompanyAnalyzer(gateway GameGateway, dispatcher Dispatcher, companyCrawler Crawler) (*companyAnalyzer, error) {
	if check.IfNil(gateway) {
		return nil, errNilGateway
	}
	if check.IfNil(dispatcher) {
		return nil, errNilDispatcher
	}
	if check.IfNil(companyCrawler) {
		return nil, errNilCrawler
	}

	return &companyAnalyzer{
		gateway:    gateway,
		dispatcher: dispatcher,
		crawler:    companyCrawler,
	}, nil
}

// bestRegionsMap identifies the best-bonus regions per item. When all five returned
// recommendations tie at the max bonus, deposit regions count directly while the
// non-deposit ones expand to every region of their country.
func (ca *companyAnalyzer) bestRegionsMap(ctx context.Context, items []string) (map[string]map[string]struct{}, error) {
	allRegions, err := ca.gateway.Regions(ctx)
	if err != nil {
		return nil, err
	}

	countryToRegions := make(map[string][]string)
	for regionID, regionData := range allRegions {
		countryID := regionData.Get("country").String()
		if len(countryID) > 0 {
			countryToRegions[countryID] = append(countryToRegions[countryID], regionID)
		}
	}

	bestRegions := make(map[string]map[string]struct{})
	addRegion := func(item string, regionID string) {
		if bestRegions[item] == nil {
			bestRegions[item] = make(map[string]struct{})
		}
		bestRegions[item][regionID] = struct{}{}
	}

	for _, item := range items {
		recs, err := ca.gateway.RecommendedRegions(ctx, item)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			continue
		}

		maxBonus := 0.0
		for _, rec := range recs {
			bonus := rec.Get("bonus").Float()
			if bonus > maxBonus {
				maxBonus = bonus
			}
		}

		topRegions := make([]gjson.Result, 0, len(recs))
		for _, rec := range recs {
			if rec.Get("bonus").Float() == maxBonus {
				topRegions = append(topRegions, rec)
			}
		}

		fullTie := len(recs) == fullRecommendationSet && len(topRegions) == fullRecommendationSet
		if !fullTie {
			for _, rec := range topRegions {
				addRegion(item, rec.Get("regionId").String())
			}
			continue
		}

		for _, rec := range topRegions {
			regionID := rec.Get("regionId").String()
			if rec.Get("depositBonus").Float() > 0 {
				addRegion(item, regionID)
				continue
			}

			countryID := allRegions[regionID].Get("country").String()
			for _, countryRegionID := range countryToRegions[countryID] {
				addRegion(item, countryRegionID)
			}
		}
	}

	return bestRegions, nil
}

// CollectStats scrapes all companies (countries -> users -> companies -> details) and
// aggregates basing statistics for the tracked items
func (ca *companyAnalyzer) CollectStats(ctx context.Context, items []string) (map[string]*CompanyStats, error) {
	bestRegions, err := ca.bestRegionsMap(ctx, items)
	if err != nil {
		return nil, err
	}

	countries, err := ca.gateway.Countries(ctx)
	if err != nil {
		return nil, err
	}
	countryIDs := make([]string, 0, len(countries))
	for _, country := range countries {
		countryIDs = append(countryIDs, country.Get("_id").String())
	}

	log.Debug("crawling users", "countries", len(countryIDs))
	userIDs, err := ca.crawler.Crawl(ctx, countryIDs, func(key string, cursor string) client.LogicalCall {
		params := map[string]interface{}{"countryId": key, "limit": usersPageSize}
		if len(cursor) > 0 {
			params["cursor"] = cursor
		}
		return client.LogicalCall{Method: "user.getUsersByCountry", Params: params}
	}, true)
	if err != nil {
		return nil, err
	}

	log.Debug("crawling companies", "users", len(userIDs))
	companyIDs, err := ca.crawler.Crawl(ctx, setToSortedSlice(userIDs), func(key string, cursor string) client.LogicalCall {
		params := map[string]interface{}{"userId": key, "perPage": companiesPageSize}
		if len(cursor) > 0 {
			params["cursor"] = cursor
		}
		return client.LogicalCall{Method: "company.getCompanies", Params: params}
	}, true)
	if err != nil {
		return nil, err
	}

	log.Debug("fetching company details", "companies", len(companyIDs))

	stats := make(map[string]*CompanyStats, len(items))
	trackedItems := make(map[string]struct{}, len(items))
	for _, item := range items {
		trackedItems[item] = struct{}{}
		stats[item] = &CompanyStats{
			BestRegionsCount: len(bestRegions[item]),
		}
	}

	calls := make([]client.LogicalCall, 0, len(companyIDs))
	for _, companyID := range setToSortedSlice(companyIDs) {
		calls = append(calls, client.LogicalCall{
			Method: "company.getById",
			Params: map[string]interface{}{"companyId": companyID},
		})
	}

	results, err := ca.dispatcher.Batch(ctx, calls, false)
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.IsEmpty() || res.HasError() {
			continue
		}

		company := unwrapCompany(res.Data())
		if len(company.Get("disabledAt").String()) > 0 {
			continue
		}

		itemCode := company.Get("itemCode").String()
		regionID := company.Get("region").String()
		if len(itemCode) == 0 || len(regionID) == 0 {
			continue
		}
		_, tracked := trackedItems[itemCode]
		if !tracked {
			continue
		}

		workers := int(company.Get("workerCount").Int())
		ae := int(company.Get("activeUpgradeLevels.automatedEngine").Int())

		itemStats := stats[itemCode]
		_, isBest := bestRegions[itemCode][regionID]
		if isBest {
			itemStats.BestCount++
			itemStats.BestWorkers += workers
			itemStats.BestAE += ae
		} else {
			itemStats.OthersCount++
			itemStats.OthersWorkers += workers
			itemStats.OthersAE += ae
		}

		itemStats.TotalCount++
		itemStats.TotalWorkers += workers
		itemStats.TotalAE += ae
	}

	return stats, nil
}

func unwrapCompany(data gjson.Result) gjson.Result {
	inner := data.Get("json")
	if inner.Exists() {
		return inner
	}

	return data
}

func setToSortedSlice(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

// IsInterfaceNil returns true if the value under the interface is nil
func (ca *companyAnalyzer) IsInterfaceNil() bool {
	return ca == nil
}
