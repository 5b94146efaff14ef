package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	"github.com/tidwall/gjson"
)

const apiKeyHeader = "X-API-Key"

// ProductionInfo holds the production requirements of one item
type ProductionInfo struct {
	Points float64
	Needs  map[string]float64
}

// ArgsTRPCClient is the DTO used to create a new tRPC client
type ArgsTRPCClient struct {
	BaseURL string
	Pool    CredentialProvider
	Timeout time.Duration
}

// trpcClient issues GET calls against a tRPC-style API, drawing the API key for each
// call from the credential pool
type trpcClient struct {
	baseURL string
	pool    CredentialProvider
	client  *http.Client

	mutGameConfig sync.Mutex
	gameConfig    *gjson.Result
}

// NewTRPCClient creates a new tRPC client
func NewTRPCClient(args ArgsTRPCClient) (*trpcClient, error) {
	if len(args.BaseURL) == 0 {
		return nil, errEmptyBaseURL
	}
	if check.IfNil(args.Pool) {
		return nil, errNilCredentialPool
	}

	return &trpcClient{
		baseURL: strings.TrimSuffix(args.BaseURL, "/"),
		pool:    args.Pool,
		client: &http.Client{
			Timeout: args.Timeout,
		},
	}, nil
}

// Call performs one logical remote call. In non-raising mode any transport failure
// degrades to an empty response instead of propagating.
func (tc *trpcClient) Call(ctx context.Context, method string, params map[string]interface{}, raiseOnError bool) (gjson.Result, error) {
	resp, err := tc.doGet(ctx, method, encodeInput(params))
	if err != nil {
		if raiseOnError {
			return gjson.Result{}, err
		}

		log.Debug("call failed, returning empty response", "method", method, "error", err)
		return emptyResponse(), nil
	}

	return resp, nil
}

// CallBatch sends all provided logical calls as a single batched request, keyed by the
// 0-based position inside the batch, and returns the decoded top-level response
func (tc *trpcClient) CallBatch(ctx context.Context, calls []LogicalCall) (gjson.Result, error) {
	methods := make([]string, 0, len(calls))
	inputs := make(map[string]interface{}, len(calls))
	for i, call := range calls {
		methods = append(methods, call.Method)
		inputs[fmt.Sprintf("%d", i)] = nonNilParams(call.Params)
	}

	return tc.doGet(ctx, strings.Join(methods, ",")+"?batch=1", encodeInput(inputs))
}

func (tc *trpcClient) doGet(ctx context.Context, methodPath string, encodedInput string) (gjson.Result, error) {
	key, err := tc.pool.Acquire(ctx)
	if err != nil {
		return gjson.Result{}, err
	}

	separator := "?"
	if strings.Contains(methodPath, "?") {
		separator = "&"
	}
	fullURL := tc.baseURL + "/" + methodPath + separator + "input=" + encodedInput

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("accept", "*/*")
	req.Header.Set(apiKeyHeader, key)

	resp, err := tc.client.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, errStatusNotOK(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return emptyResponse(), nil
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errInvalidJSONResponse
	}

	return gjson.ParseBytes(body), nil
}

func encodeInput(params map[string]interface{}) string {
	data, err := json.Marshal(nonNilParams(params))
	if err != nil {
		// a map of JSON-compatible values cannot fail to marshal
		data = []byte("{}")
	}

	return url.QueryEscape(string(data))
}

func nonNilParams(params map[string]interface{}) map[string]interface{} {
	if params == nil {
		return map[string]interface{}{}
	}

	return params
}

func emptyResponse() gjson.Result {
	return gjson.Parse("{}")
}

// GameConfig returns the game configuration payload, fetched once and cached for the
// client's lifetime
func (tc *trpcClient) GameConfig(ctx context.Context) (gjson.Result, error) {
	tc.mutGameConfig.Lock()
	defer tc.mutGameConfig.Unlock()

	if tc.gameConfig != nil {
		return *tc.gameConfig, nil
	}

	resp, err := tc.Call(ctx, "gameConfig.getGameConfig", nil, true)
	if err != nil {
		return gjson.Result{}, err
	}

	tc.gameConfig = &resp
	return resp, nil
}

// Countries returns all countries
func (tc *trpcClient) Countries(ctx context.Context) ([]gjson.Result, error) {
	resp, err := tc.Call(ctx, "country.getAllCountries", nil, true)
	if err != nil {
		return nil, err
	}

	return resp.Get("result.data").Array(), nil
}

// Regions returns the region id -> region object mapping
func (tc *trpcClient) Regions(ctx context.Context) (map[string]gjson.Result, error) {
	resp, err := tc.Call(ctx, "region.getRegionsObject", nil, true)
	if err != nil {
		return nil, err
	}

	return resp.Get("result.data").Map(), nil
}

// ItemPrices returns the raw item prices response
func (tc *trpcClient) ItemPrices(ctx context.Context) (gjson.Result, error) {
	return tc.Call(ctx, "itemTrading.getPrices", nil, true)
}

// RecommendedRegions returns the recommended production regions for the provided item
func (tc *trpcClient) RecommendedRegions(ctx context.Context, itemCode string) ([]gjson.Result, error) {
	params := map[string]interface{}{"itemCode": itemCode}
	resp, err := tc.Call(ctx, "company.getRecommendedRegionIdsByItemCode", params, true)
	if err != nil {
		return nil, err
	}

	return resp.Get("result.data").Array(), nil
}

// ProductionInfo extracts the production requirements of the provided item from the
// cached game configuration
func (tc *trpcClient) ProductionInfo(ctx context.Context, itemCode string) (ProductionInfo, error) {
	cfg, err := tc.GameConfig(ctx)
	if err != nil {
		return ProductionInfo{}, err
	}

	itemInfo := cfg.Get("result.data.items." + itemCode)
	needs := make(map[string]float64)
	for res, qty := range itemInfo.Get("productionNeeds").Map() {
		needs[res] = qty.Float()
	}

	return ProductionInfo{
		Points: itemInfo.Get("productionPoints").Float(),
		Needs:  needs,
	}, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (tc *trpcClient) IsInterfaceNil() bool {
	return tc == nil
}
