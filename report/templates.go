package report

// the report is a single self-contained page: the datasets are injected as JS consts
// and rendered client-side
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Wealthrate Analytics</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #f7fafc; color: #1a202c; }
  header { padding: 16px 24px; background: #1a202c; color: #f7fafc; }
  header h1 { margin: 0; font-size: 20px; }
  header span { font-size: 12px; color: #a0aec0; }
  main { padding: 24px; }
  table { border-collapse: collapse; width: 100%; background: #fff; }
  th, td { padding: 8px 12px; border-bottom: 1px solid #e2e8f0; text-align: right; font-size: 14px; }
  th:first-child, td:first-child { text-align: left; }
  th { cursor: pointer; background: #edf2f7; position: sticky; top: 0; }
  tr.negative td { color: #c53030; }
  .charts { display: grid; grid-template-columns: repeat(auto-fill, minmax(420px, 1fr)); gap: 24px; margin-top: 32px; }
  .charts > div { background: #fff; padding: 16px; border-radius: 4px; }
</style>
</head>
<body>
<header>
  <h1>Wealthrate Analytics</h1>
  <span id="generated-at"></span>
</header>
<main>
  <table id="profit-table">
    <thead><tr>
      <th data-key="pretty_name">Item</th>
      <th data-key="min_pp">Min Profit/PP</th>
      <th data-key="avg_pp">Avg Profit/PP</th>
      <th data-key="max_pp">Max Profit/PP</th>
      <th data-key="market_avg">Market Avg</th>
      <th data-key="total_bonus">Bonus %</th>
      <th data-key="region_name">Best Region</th>
      <th data-key="comp_total">Companies</th>
    </tr></thead>
    <tbody></tbody>
  </table>
  <div class="charts" id="charts"></div>
</main>
<script>
const TABLE_DATA = {{.TableData}};
const METRIC_LABELS = {{.MetricLabels}};
const ITEM_COLORS = {{.ItemColors}};
const ITEM_SHORT_NAMES = {{.ItemShortNames}};
const PRODUCTION_LINES = {{.ProductionLines}};
const GENERATED_AT = {{.Timestamp}};

document.getElementById("generated-at").textContent =
  "updated " + new Date(GENERATED_AT * 1000).toUTCString();

function compTotal(row) {
  const h = row.comp_history || {};
  const seq = h.comp_total_count || [];
  return seq.length > 0 ? seq[seq.length - 1] : 0;
}

function renderTable(sortKey, desc) {
  const rows = [...TABLE_DATA].sort((a, b) => {
    const av = sortKey === "comp_total" ? compTotal(a) : a[sortKey];
    const bv = sortKey === "comp_total" ? compTotal(b) : b[sortKey];
    if (typeof av === "string") return desc ? bv.localeCompare(av) : av.localeCompare(bv);
    return desc ? bv - av : av - bv;
  });
  const tbody = document.querySelector("#profit-table tbody");
  tbody.innerHTML = "";
  for (const row of rows) {
    const tr = document.createElement("tr");
    if (row.avg_pp < 0) tr.classList.add("negative");
    tr.innerHTML =
      "<td>" + row.pretty_name + "</td>" +
      "<td>" + row.min_pp.toFixed(3) + "</td>" +
      "<td>" + row.avg_pp.toFixed(3) + "</td>" +
      "<td>" + row.max_pp.toFixed(3) + "</td>" +
      "<td>" + row.market_avg.toFixed(2) + "</td>" +
      "<td>" + row.total_bonus + "</td>" +
      "<td>" + (row.region_name || "-") + "</td>" +
      "<td>" + compTotal(row) + "</td>";
    tbody.appendChild(tr);
  }
}

let currentSort = { key: "avg_pp", desc: true };
renderTable(currentSort.key, currentSort.desc);
document.querySelectorAll("#profit-table th").forEach(th => {
  th.addEventListener("click", () => {
    const key = th.dataset.key;
    currentSort = { key, desc: currentSort.key === key ? !currentSort.desc : true };
    renderTable(currentSort.key, currentSort.desc);
  });
});

const chartsHost = document.getElementById("charts");
for (const [lineName, itemCodes] of Object.entries(PRODUCTION_LINES)) {
  const container = document.createElement("div");
  const canvas = document.createElement("canvas");
  container.appendChild(canvas);
  chartsHost.appendChild(container);

  const datasets = [];
  let labels = [];
  for (const code of itemCodes) {
    const row = TABLE_DATA.find(r => r.item === code);
    if (!row || !row.history || !row.history.avg_pp) continue;
    labels = row.labels.map(ts => new Date(ts * 1000).toLocaleDateString());
    datasets.push({
      label: ITEM_SHORT_NAMES[code] || row.pretty_name,
      data: row.history.avg_pp,
      borderColor: ITEM_COLORS[code] || "#718096",
      pointRadius: 0,
      borderWidth: 1.5,
      tension: 0.2,
    });
  }
  new Chart(canvas, {
    type: "line",
    data: { labels, datasets },
    options: {
      plugins: { title: { display: true, text: lineName + " — " + METRIC_LABELS.avg_pp } },
      animation: false,
      scales: { x: { ticks: { maxTicksLimit: 8 } } },
    },
  });
}
</script>
</body>
</html>
`
