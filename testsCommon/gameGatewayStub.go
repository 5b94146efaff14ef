package testsCommon

import (
	"context"

	"github.com/tidwall/gjson"
	"github.com/wealthrate/wealthrate-analytics/client"
)

// GameGatewayStub -
type GameGatewayStub struct {
	CountriesHandler          func(ctx context.Context) ([]gjson.Result, error)
	RegionsHandler            func(ctx context.Context) (map[string]gjson.Result, error)
	ItemPricesHandler         func(ctx context.Context) (gjson.Result, error)
	RecommendedRegionsHandler func(ctx context.Context, itemCode string) ([]gjson.Result, error)
	ProductionInfoHandler     func(ctx context.Context, itemCode string) (client.ProductionInfo, error)
}

// Countries -
func (stub *GameGatewayStub) Countries(ctx context.Context) ([]gjson.Result, error) {
	if stub.CountriesHandler != nil {
		return stub.CountriesHandler(ctx)
	}

	return nil, nil
}

// Regions -
func (stub *GameGatewayStub) Regions(ctx context.Context) (map[string]gjson.Result, error) {
	if stub.RegionsHandler != nil {
		return stub.RegionsHandler(ctx)
	}

	return map[string]gjson.Result{}, nil
}

// ItemPrices -
func (stub *GameGatewayStub) ItemPrices(ctx context.Context) (gjson.Result, error) {
	if stub.ItemPricesHandler != nil {
		return stub.ItemPricesHandler(ctx)
	}

	return gjson.Parse("{}"), nil
}

// RecommendedRegions -
func (stub *GameGatewayStub) RecommendedRegions(ctx context.Context, itemCode string) ([]gjson.Result, error) {
	if stub.RecommendedRegionsHandler != nil {
		return stub.RecommendedRegionsHandler(ctx, itemCode)
	}

	return nil, nil
}

// ProductionInfo -
func (stub *GameGatewayStub) ProductionInfo(ctx context.Context, itemCode string) (client.ProductionInfo, error) {
	if stub.ProductionInfoHandler != nil {
		return stub.ProductionInfoHandler(ctx, itemCode)
	}

	return client.ProductionInfo{}, nil
}

// IsInterfaceNil -
func (stub *GameGatewayStub) IsInterfaceNil() bool {
	return stub == nil
}
