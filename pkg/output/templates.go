/*
File: templates.go
Description: Embedded HTML template for the report page. Dark theme matching
the web dashboard, no external assets.
*/

package output

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
:root {
  --bg-primary: #0f0f0f;
  --bg-secondary: #1a1a1a;
  --bg-tertiary: #252525;
  --text-primary: #e0e0e0;
  --text-secondary: #a0a0a0;
  --accent: #00d4aa;
  --danger: #ff4444;
  --warning: #ffaa00;
  --success: #00cc66;
  --border: #333;
}
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
  background: var(--bg-primary);
  color: var(--text-primary);
  font-size: 14px;
  line-height: 1.5;
}
.header {
  background: var(--bg-secondary);
  border-bottom: 2px solid var(--accent);
  padding: 12px 20px;
  display: flex;
  justify-content: space-between;
  align-items: center;
}
.header h1 { font-size: 18px; color: var(--accent); }
.header .meta { font-size: 12px; color: var(--text-secondary); }
.container { max-width: 1400px; margin: 0 auto; padding: 20px; }
.cards { display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 12px; margin-bottom: 24px; }
.card { background: var(--bg-secondary); border: 1px solid var(--border); border-radius: 8px; padding: 14px; }
.card .label { font-size: 11px; text-transform: uppercase; color: var(--text-secondary); }
.card .value { font-size: 22px; font-weight: 600; margin-top: 4px; }
.card .value.danger { color: var(--danger); }
.card .value.accent { color: var(--accent); }
table { width: 100%; border-collapse: collapse; background: var(--bg-secondary); border-radius: 8px; }
th, td { padding: 8px 12px; text-align: right; border-bottom: 1px solid var(--border); }
th:first-child, td:first-child, th:nth-child(2), td:nth-child(2) { text-align: left; }
th { font-size: 11px; text-transform: uppercase; color: var(--text-secondary); }
.status-alive { color: var(--success); }
.status-dead { color: var(--danger); }
.status-starting { color: var(--warning); }
.warnings { margin-top: 24px; }
.warnings h2 { font-size: 15px; margin-bottom: 8px; }
.warning-item { background: var(--bg-tertiary); border-left: 3px solid var(--warning); padding: 8px 12px; margin-bottom: 6px; border-radius: 4px; }
.footer { margin-top: 32px; font-size: 12px; color: var(--text-secondary); text-align: center; }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title}}</h1>
  <div class="meta">{{.FindingsDir}} &middot; generated {{.GeneratedAt}}</div>
</div>
<div class="container">
  <div class="cards">
    <div class="card"><div class="label">Fuzzers alive</div><div class="value accent">{{.Summary.AliveFuzzers}}/{{.Summary.TotalFuzzers}}</div></div>
    <div class="card"><div class="label">Total executions</div><div class="value">{{execs .Summary.TotalExecs}}</div></div>
    <div class="card"><div class="label">Speed</div><div class="value">{{speed .Summary.TotalSpeed}}</div></div>
    <div class="card"><div class="label">Corpus</div><div class="value">{{number .Summary.TotalCorpus}}</div></div>
    <div class="card"><div class="label">Coverage</div><div class="value accent">{{percent .Summary.MaxCoverage}}</div></div>
    <div class="card"><div class="label">Crashes</div><div class="value{{if gt .Summary.TotalCrashes 0}} danger{{end}}">{{number .Summary.TotalCrashes}}</div></div>
    <div class="card"><div class="label">Hangs</div><div class="value">{{number .Summary.TotalHangs}}</div></div>
    <div class="card"><div class="label">Last find</div><div class="value">{{ago .Summary.LastFindTime}}</div></div>
  </div>

  <table id="fuzzers">
    <thead>
      <tr><th>Fuzzer</th><th>Status</th><th>Execs</th><th>Speed</th><th>Corpus</th><th>Pending</th><th>Coverage</th><th>Stability</th><th>Crashes</th><th>Last find</th></tr>
    </thead>
    <tbody>
    {{range .Fuzzers}}
      <tr>
        <td>{{.Name}}</td>
        <td class="status-{{.Status}}">{{.Status}}</td>
        <td>{{number .ExecsDone}}</td>
        <td>{{printf "%.1f/s" .ExecsPerSec}}</td>
        <td>{{number .CorpusCount}}</td>
        <td>{{number .PendingTotal}}</td>
        <td>{{percent .BitmapCoverage}}</td>
        <td>{{percent .Stability}}</td>
        <td>{{number .SavedCrashes}}</td>
        <td>{{ago .LastFind}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>

  {{if .Warnings}}
  <div class="warnings">
    <h2>Health warnings</h2>
    {{range $name, $list := .Warnings}}
      {{range $list}}
      <div class="warning-item"><strong>{{$name}}</strong>: {{.}}</div>
      {{end}}
    {{end}}
  </div>
  {{end}}

  <div class="footer">aflmon v{{.Version}}</div>
</div>
</body>
</html>
`
