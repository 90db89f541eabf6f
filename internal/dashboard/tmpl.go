package dashboard

import (
	"html/template"
	"strconv"
)

var tmplIndex = template.Must(template.New("index").Funcs(template.FuncMap{
	"pct": func(p *float64) string {
		if p == nil {
			return "–"
		}
		return formatScore(*p)
	},
	"grade": scoreClass,
}).Parse(tmplIndexHTML))

func formatScore(s float64) string {
	v := int(s*100 + 0.5)
	switch {
	case v < 0:
		v = 0
	case v > 100:
		v = 100
	}
	return strconv.Itoa(v)
}

// scoreClass buckets a 0-1 score into the CSS class used to color it,
// mirroring the usual report coloring: red below 0.5, amber below 0.9.
func scoreClass(p *float64) string {
	if p == nil {
		return "dim"
	}
	switch {
	case *p >= 0.9:
		return "ok"
	case *p >= 0.5:
		return "warn"
	default:
		return "err"
	}
}

const tmplIndexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Performance History</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,'Segoe UI',sans-serif;background:#0d1117;color:#c9d1d9;font-size:13px;line-height:1.5}
a{color:#58a6ff;text-decoration:none}
a:hover{text-decoration:underline}
header{background:#161b22;border-bottom:1px solid #30363d;padding:10px 16px;display:flex;gap:12px;align-items:baseline}
header .brand{color:#f0f6fc;font-weight:700;font-size:15px}
header .dim{font-size:11px}
main{padding:16px;max-width:1100px;margin:0 auto}
h2{font-size:13px;font-weight:600;color:#8b949e;text-transform:uppercase;letter-spacing:.06em;margin:16px 0 8px}
table{width:100%;border-collapse:collapse;font-size:12px}
th{text-align:left;padding:6px 10px;border-bottom:1px solid #30363d;color:#8b949e;font-weight:600;font-size:11px;text-transform:uppercase}
td{padding:5px 10px;border-bottom:1px solid #21262d}
tr:hover td{background:#161b22}
.dim{color:#8b949e}
.ok{color:#56d364}
.warn{color:#f59e0b}
.err{color:#f87171}
.charts{display:grid;grid-template-columns:repeat(auto-fill,minmax(320px,1fr));gap:12px}
.chart{background:#161b22;border:1px solid #30363d;border-radius:6px;padding:10px}
.chart .lbl{font-size:11px;color:#8b949e;margin-bottom:6px}
.empty{padding:40px;text-align:center;color:#8b949e}
canvas{width:100%;height:140px}
</style>
</head>
<body>
<header>
  <span class="brand">Performance History</span>
  <span class="dim">generated {{.GeneratedAt}}</span>
</header>
<main>
{{if not .Rows}}
  <div class="empty">No measurement data yet.</div>
{{else}}
  <h2>Trends</h2>
  <div class="charts" id="charts"></div>
  <h2>All runs</h2>
  <table>
    <tr><th>Page</th><th>Preset</th><th>Fetched</th><th>Perf</th><th>A11y</th><th>BP</th><th>SEO</th><th>Run</th><th>Report</th></tr>
    {{range .Rows}}
    <tr>
      <td>{{.Page}}</td>
      <td>{{.Preset}}</td>
      <td class="dim">{{.FetchTime}}</td>
      <td class="{{grade (index .Scores "performance")}}">{{pct (index .Scores "performance")}}</td>
      <td class="{{grade (index .Scores "accessibility")}}">{{pct (index .Scores "accessibility")}}</td>
      <td class="{{grade (index .Scores "bestPractices")}}">{{pct (index .Scores "bestPractices")}}</td>
      <td class="{{grade (index .Scores "seo")}}">{{pct (index .Scores "seo")}}</td>
      <td>{{if .RunURL}}<a href="{{.RunURL}}">#{{.RunNumber}}</a>{{else}}<span class="dim">#{{.RunNumber}}</span>{{end}}</td>
      <td>{{if .ReportURL}}<a href="{{.ReportURL}}">report</a>{{else}}<span class="dim">–</span>{{end}}</td>
    </tr>
    {{end}}
  </table>
{{end}}
</main>
<script>
const DATA = {{.JSONData}};
(function () {
  const host = document.getElementById('charts');
  if (!host || !DATA.series) return;
  for (const s of DATA.series) {
    const card = document.createElement('div');
    card.className = 'chart';
    const lbl = document.createElement('div');
    lbl.className = 'lbl';
    lbl.textContent = s.page + ' · ' + s.preset + ' · ' + s.metric;
    const cv = document.createElement('canvas');
    cv.width = 640; cv.height = 280;
    card.appendChild(lbl); card.appendChild(cv); host.appendChild(card);
    draw(cv, s.points, DATA.threshold);
  }
  function draw(cv, pts, threshold) {
    const ctx = cv.getContext('2d');
    const w = cv.width, h = cv.height, pad = 24;
    const x = i => pts.length < 2 ? w / 2 : pad + i * (w - 2 * pad) / (pts.length - 1);
    const y = v => h - pad - (v / 100) * (h - 2 * pad);
    ctx.strokeStyle = '#30363d';
    ctx.strokeRect(pad, pad, w - 2 * pad, h - 2 * pad);
    ctx.strokeStyle = '#f59e0b';
    ctx.setLineDash([4, 4]);
    ctx.beginPath(); ctx.moveTo(pad, y(threshold)); ctx.lineTo(w - pad, y(threshold)); ctx.stroke();
    ctx.setLineDash([]);
    ctx.strokeStyle = '#58a6ff';
    ctx.lineWidth = 2;
    ctx.beginPath();
    pts.forEach((p, i) => i ? ctx.lineTo(x(i), y(p.score)) : ctx.moveTo(x(i), y(p.score)));
    ctx.stroke();
    ctx.fillStyle = '#58a6ff';
    pts.forEach((p, i) => { ctx.beginPath(); ctx.arc(x(i), y(p.score), 3, 0, 7); ctx.fill(); });
  }
})();
</script>
</body>
</html>
`
