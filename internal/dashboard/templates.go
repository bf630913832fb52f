package dashboard

// Base layout

const tmplBase = `
{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Snow Cover Dashboard</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:'JetBrains Mono',monospace,sans-serif;background:#0d1117;color:#c9d1d9;font-size:13px;line-height:1.5}
a{color:#58a6ff;text-decoration:none}
a:hover{text-decoration:underline}
nav{background:#161b22;border-bottom:1px solid #30363d;padding:8px 16px;display:flex;gap:16px;align-items:center}
nav .brand{color:#f0f6fc;font-weight:700;font-size:15px}
nav a{color:#8b949e;padding:4px 8px;border-radius:4px}
nav a:hover{color:#c9d1d9;background:#21262d;text-decoration:none}
main{padding:16px;max-width:1100px;margin:0 auto}
h1{font-size:16px;font-weight:700;color:#f0f6fc;margin-bottom:12px}
h2{font-size:13px;font-weight:600;color:#8b949e;text-transform:uppercase;letter-spacing:.06em;margin:16px 0 8px}
.cards{display:flex;gap:12px;flex-wrap:wrap;margin-bottom:16px}
.card{background:#161b22;border:1px solid #30363d;border-radius:6px;padding:12px 16px;min-width:120px}
.card .val{font-size:22px;font-weight:700;color:#f0f6fc}
.card .lbl{font-size:11px;color:#8b949e;margin-top:2px}
table{width:100%;border-collapse:collapse;font-size:12px}
th{text-align:left;padding:6px 10px;border-bottom:1px solid #30363d;color:#8b949e;font-weight:600;font-size:11px;text-transform:uppercase}
td{padding:5px 10px;border-bottom:1px solid #21262d}
.section{background:#161b22;border:1px solid #30363d;border-radius:6px;margin-bottom:16px;overflow:hidden}
.section-hdr{padding:8px 12px;border-bottom:1px solid #30363d;font-size:11px;font-weight:600;color:#8b949e;text-transform:uppercase;background:#0d1117}
.dim{color:#8b949e}
.err{color:#f87171;background:#161b22;border:1px solid #f87171;border-radius:6px;padding:10px 14px;margin-bottom:16px}
.filters{display:flex;gap:10px;flex-wrap:wrap;align-items:end;margin-bottom:16px;background:#161b22;padding:12px;border-radius:6px;border:1px solid #30363d}
.filters label{font-size:11px;color:#8b949e;display:flex;flex-direction:column;gap:3px}
.filters select,.filters input{background:#0d1117;border:1px solid #30363d;color:#c9d1d9;border-radius:4px;padding:4px 6px;font-size:12px;font-family:inherit}
.filters button{background:#1f6feb;border:none;color:#fff;padding:6px 14px;border-radius:4px;cursor:pointer;font-size:12px}
.bar-row{display:flex;align-items:center;gap:8px;padding:2px 0;font-size:11px}
.bar-label{min-width:40px;color:#8b949e;text-align:right}
.bar-area{flex:1;background:#0d1117;border-radius:3px;height:14px}
.bar{background:#1f6feb;border-radius:3px;height:14px;min-width:2px}
.bar-val{min-width:55px;color:#c9d1d9}
svg .series-line{fill:none;stroke:#58a6ff;stroke-width:1.5}
svg .swe-line{fill:none;stroke:#34d399;stroke-width:1.5}
svg .mean-line{stroke:#f59e0b;stroke-width:1;stroke-dasharray:4 3}
svg .axis{stroke:#30363d;stroke-width:1}
svg text{fill:#8b949e;font-size:9px;font-family:monospace}
</style>
</head>
<body>
<nav>
  <span class="brand">Snow Cover Dashboard</span>
  <a href="/">Analyze</a>
  <a href="/reports">History</a>
</nav>
<main>
{{template "content" .}}
</main>
</body>
</html>
{{end}}
`

// Analysis form

const tmplIndex = `
{{define "content"}}
<h1>Snow Cover Analysis</h1>
{{if .Error}}<div class="err">{{.Error}}</div>{{end}}

<h2>Watershed Analysis</h2>
<form class="filters" method="POST" action="/analyze/watershed">
  <label>Watershed
    <select name="watershed">
      {{range .Watersheds}}<option value="{{.}}" {{if eq . $.SelectedWatershed}}selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <label>Start date <input type="date" name="from" value="{{.From}}"></label>
  <label>End date <input type="date" name="to" value="{{.To}}"></label>
  <button type="submit">Run Analysis</button>
</form>

<h2>Point Analysis</h2>
<form class="filters" method="POST" action="/analyze/point">
  <label>Latitude <input type="number" name="lat" step="0.0001" min="-90" max="90" value="{{.Lat}}"></label>
  <label>Longitude <input type="number" name="lon" step="0.0001" min="-180" max="180" value="{{.Lon}}"></label>
  <label>Buffer (m) <input type="number" name="buffer_m" step="100" min="500" max="5000" value="{{.BufferM}}"></label>
  <label>Start date <input type="date" name="from" value="{{.From}}"></label>
  <label>End date <input type="date" name="to" value="{{.To}}"></label>
  <button type="submit">Run Analysis</button>
</form>
{{end}}
`

// Report page

const tmplReport = `
{{define "content"}}
<h1>{{.Title}} <span class="dim" style="font-size:12px;font-weight:400">{{fmtDate .Report.From}} to {{fmtDate .Report.To}}</span></h1>

<div class="cards">
  <div class="card"><div class="val">{{fmtPct .Report.Stats.Basic.Mean}}</div><div class="lbl">Mean snow cover</div></div>
  <div class="card"><div class="val">{{fmtPct .Report.Stats.Basic.Max}}</div><div class="lbl">Maximum</div></div>
  <div class="card"><div class="val">{{fmtPct .Report.Stats.Basic.Min}}</div><div class="lbl">Minimum</div></div>
  <div class="card"><div class="val">{{.Report.Series.Len}}</div><div class="lbl">Samples</div></div>
  <div class="card"><div class="val">{{.Report.ImagesProcessed}}</div><div class="lbl">Images</div></div>
  {{if .Report.Stats.Peak}}<div class="card"><div class="val">{{fmtDate .Report.Stats.Peak.PeakDate}}</div><div class="lbl">Peak date</div></div>{{end}}
</div>

<div class="section">
  <div class="section-hdr">Snow cover time series <span style="float:right;color:#f59e0b">- - mean</span></div>
  <div style="padding:12px">{{.SeriesChart}}</div>
</div>

{{if .SWEChart}}
<div class="section">
  <div class="section-hdr">Estimated snow water equivalent (mm)</div>
  <div style="padding:12px">{{.SWEChart}}</div>
</div>
{{end}}

<div class="section">
  <div class="section-hdr">Seasonal pattern</div>
  <div style="padding:8px 12px">
  {{range .SeasonalBars}}
  <div class="bar-row">
    <span class="bar-label">{{.Label}}</span>
    <div class="bar-area"><div class="bar" style="width:{{.WidthPct}}%"></div></div>
    <span class="bar-val">{{fmtPct .Value}} (n={{.Count}})</span>
  </div>
  {{end}}
  </div>
</div>

<div class="section">
  <div class="section-hdr">Distribution</div>
  <div style="padding:8px 12px">
  {{range .Histogram}}
  <div class="bar-row">
    <span class="bar-label" style="min-width:58px">{{.Label}}</span>
    <div class="bar-area"><div class="bar" style="width:{{.WidthPct}}%"></div></div>
    <span class="bar-val">{{.Count}}</span>
  </div>
  {{end}}
  </div>
</div>

<div class="section">
  <div class="section-hdr">Annual summary</div>
  <table>
  <tr><th>Year</th><th>Mean</th><th>Std dev</th><th>Samples</th></tr>
  {{range .AnnualRows}}
  <tr><td>{{.Label}}</td><td>{{fmtPct .Value}}</td><td>{{fmtPct .Std}}</td><td class="dim">{{.Count}}</td></tr>
  {{end}}
  </table>
</div>

<div class="section">
  <div class="section-hdr">Snow persistence</div>
  <div style="padding:10px 12px">
    Days above {{fmtPct .PersistenceThreshold}}: <strong>{{.Report.Stats.Persistence.HighSnowDays}}</strong> of {{.Report.Stats.Persistence.TotalDays}}
    ({{fmtRatio .Report.Stats.Persistence.PersistenceRatio}})
  </div>
</div>

{{if .Report.ID}}
<h2>Export</h2>
<div style="display:flex;gap:10px">
  <a href="/api/reports/{{.Report.ID}}/export?format=csv">Download CSV</a>
  <a href="/api/reports/{{.Report.ID}}/export?format=json">Download JSON</a>
  <a href="/api/reports/{{.Report.ID}}/export?format=txt">Download summary</a>
</div>
{{end}}
{{end}}
`

// Report history

const tmplReports = `
{{define "content"}}
<h1>Analysis History</h1>
<div class="section">
<table>
<tr><th>ID</th><th>Mode</th><th>Target</th><th>Period</th><th>Images</th><th>Samples</th><th>Created</th></tr>
{{range .Reports}}
<tr>
  <td><a href="/reports/{{.ID}}">{{.ID}}</a></td>
  <td class="dim">{{.Mode}}</td>
  <td>{{if .Watershed}}{{.Watershed}}{{else}}{{fmtCoord .Lat}}, {{fmtCoord .Lon}}{{end}}</td>
  <td class="dim">{{fmtDate .From}} to {{fmtDate .To}}</td>
  <td class="dim">{{.ImagesProcessed}}</td>
  <td class="dim">{{.SampleCount}}</td>
  <td class="dim">{{fmtDate .CreatedAt}}</td>
</tr>
{{end}}
</table>
</div>
{{end}}
`
