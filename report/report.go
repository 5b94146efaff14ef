package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/wealthrate/wealthrate-analytics/analyzer"
	"github.com/wealthrate/wealthrate-analytics/history"
)

var log = logger.GetOrCreate("report")

var errEmptyOutputDir = errors.New("empty output directory")

const outputFileName = "index.html"

// ArgsHTMLReportGenerator is the DTO used to create a new report generator
type ArgsHTMLReportGenerator struct {
	OutputDir       string
	PrettyNames     map[string]string
	ShortNames      map[string]string
	Colors          map[string]string
	MetricLabels    map[string]string
	ProductionLines map[string][]string
}

// htmlReportGenerator renders the self-contained index.html report from the current
// snapshot and the two history documents
type htmlReportGenerator struct {
	outputDir       string
	prettyNames     map[string]string
	shortNames      map[string]string
	colors          map[string]string
	metricLabels    map[string]string
	productionLines map[string][]string
	tmpl            *template.Template
}

type reportRow struct {
	Item       string `json:"item"`
	PrettyName string `json:"pretty_name"`
	*analyzer.ItemSnapshot
	History     map[string][]float64 `json:"history"`
	CompHistory map[string][]float64 `json:"comp_history"`
	Labels      []int64              `json:"labels"`
	CompLabels  []int64              `json:"comp_labels"`
}

type templateData struct {
	TableData       template.JS
	MetricLabels    template.JS
	ItemColors      template.JS
	ItemShortNames  template.JS
	ProductionLines template.JS
	Timestamp       int64
}

// NewHTMLReportGenerator creates a new HTML report generator
func NewHTMLReportGenerator(args ArgsHTMLReportGenerator) (*htmlReportGenerator, error) {
	if len(args.OutputDir) == 0 {
		return nil, errEmptyOutputDir
	}

	tmpl, err := template.New(outputFileName).Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}

	return &htmlReportGenerator{
		outputDir:       args.OutputDir,
		prettyNames:     args.PrettyNames,
		shortNames:      args.ShortNames,
		colors:          args.Colors,
		metricLabels:    args.MetricLabels,
		productionLines: args.ProductionLines,
		tmpl:            tmpl,
	}, nil
}

// Generate builds the index.html file in the output directory
func (rg *htmlReportGenerator) Generate(
	profitHistory *history.Document,
	compHistory *history.Document,
	snapshot map[string]*analyzer.ItemSnapshot,
) error {
	rows := make([]reportRow, 0, len(snapshot))

	itemCodes := make([]string, 0, len(snapshot))
	for item := range snapshot {
		itemCodes = append(itemCodes, item)
	}
	sort.Strings(itemCodes)

	for _, item := range itemCodes {
		snap := snapshot[item]
		for i := range snap.Resources {
			snap.Resources[i].PrettyName = rg.prettyName(snap.Resources[i].Item)
		}

		rows = append(rows, reportRow{
			Item:         item,
			PrettyName:   rg.prettyName(item),
			ItemSnapshot: snap,
			History:      profitHistory.Items[item],
			CompHistory:  compHistory.Items[item],
			Labels:       profitHistory.Labels,
			CompLabels:   compHistory.Labels,
		})
	}

	data, err := rg.buildTemplateData(rows)
	if err != nil {
		return err
	}

	err = os.MkdirAll(rg.outputDir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create the output directory: %w", err)
	}

	outputPath := filepath.Join(rg.outputDir, outputFileName)
	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", outputPath, err)
	}
	defer func() {
		_ = outFile.Close()
	}()

	err = rg.tmpl.Execute(outFile, data)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	log.Debug("report generated", "file", outputPath, "rows", len(rows))

	return nil
}

func (rg *htmlReportGenerator) buildTemplateData(rows []reportRow) (*templateData, error) {
	tableData, err := marshalJS(rows)
	if err != nil {
		return nil, err
	}
	metricLabels, err := marshalJS(rg.metricLabels)
	if err != nil {
		return nil, err
	}
	itemColors, err := marshalJS(rg.colors)
	if err != nil {
		return nil, err
	}
	shortNames, err := marshalJS(rg.shortNames)
	if err != nil {
		return nil, err
	}
	productionLines, err := marshalJS(rg.productionLines)
	if err != nil {
		return nil, err
	}

	return &templateData{
		TableData:       tableData,
		MetricLabels:    metricLabels,
		ItemColors:      itemColors,
		ItemShortNames:  shortNames,
		ProductionLines: productionLines,
		Timestamp:       time.Now().UTC().Unix(),
	}, nil
}

func (rg *htmlReportGenerator) prettyName(item string) string {
	name, ok := rg.prettyNames[item]
	if ok {
		return name
	}

	return item
}

func marshalJS(value interface{}) (template.JS, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report dataset: %w", err)
	}

	return template.JS(data), nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (rg *htmlReportGenerator) IsInterfaceNil() bool {
	return rg == nil
}
