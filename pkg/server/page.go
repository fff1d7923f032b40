/*
File: page.go
Description: Embedded live dashboard page. Renders the stats API response and
subscribes to the websocket feed, falling back to polling when the socket
drops.
*/

package server

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>aflmon dashboard</title>
<style>
:root {
  --bg-primary: #0f0f0f;
  --bg-secondary: #1a1a1a;
  --text-primary: #e0e0e0;
  --text-secondary: #a0a0a0;
  --accent: #00d4aa;
  --danger: #ff4444;
  --warning: #ffaa00;
  --success: #00cc66;
  --border: #333;
}
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background: var(--bg-primary); color: var(--text-primary); font-size: 14px; }
.header { background: var(--bg-secondary); border-bottom: 2px solid var(--accent); padding: 12px 20px; display: flex; justify-content: space-between; align-items: center; position: sticky; top: 0; }
.header h1 { font-size: 18px; color: var(--accent); }
.status-badge { padding: 4px 12px; border-radius: 12px; background: var(--border); font-size: 12px; }
.status-badge.live { background: var(--success); color: #000; }
.container { max-width: 1400px; margin: 0 auto; padding: 20px; }
.cards { display: grid; grid-template-columns: repeat(auto-fill, minmax(180px, 1fr)); gap: 12px; margin-bottom: 24px; }
.card { background: var(--bg-secondary); border: 1px solid var(--border); border-radius: 8px; padding: 14px; }
.card .label { font-size: 11px; text-transform: uppercase; color: var(--text-secondary); }
.card .value { font-size: 22px; font-weight: 600; margin-top: 4px; }
table { width: 100%; border-collapse: collapse; background: var(--bg-secondary); }
th, td { padding: 8px 12px; text-align: right; border-bottom: 1px solid var(--border); }
th:first-child, td:first-child, th:nth-child(2), td:nth-child(2) { text-align: left; }
th { font-size: 11px; text-transform: uppercase; color: var(--text-secondary); }
.alive { color: var(--success); }
.dead { color: var(--danger); }
.starting { color: var(--warning); }
</style>
</head>
<body>
<div class="header">
  <h1>aflmon dashboard</h1>
  <span id="badge" class="status-badge">connecting</span>
</div>
<div class="container">
  <div class="cards">
    <div class="card"><div class="label">Fuzzers alive</div><div class="value" id="alive">-</div></div>
    <div class="card"><div class="label">Total executions</div><div class="value" id="execs">-</div></div>
    <div class="card"><div class="label">Speed</div><div class="value" id="speed">-</div></div>
    <div class="card"><div class="label">Coverage</div><div class="value" id="coverage">-</div></div>
    <div class="card"><div class="label">Crashes</div><div class="value" id="crashes">-</div></div>
    <div class="card"><div class="label">Hangs</div><div class="value" id="hangs">-</div></div>
  </div>
  <table>
    <thead><tr><th>Fuzzer</th><th>Status</th><th>Execs</th><th>Speed</th><th>Corpus</th><th>Coverage</th><th>Crashes</th></tr></thead>
    <tbody id="fuzzers"></tbody>
  </table>
</div>
<script>
const fmt = new Intl.NumberFormat();

function render(data) {
  const s = data.summary || {};
  document.getElementById('alive').textContent = (s.alive_fuzzers || 0) + '/' + (s.total_fuzzers || 0);
  document.getElementById('execs').textContent = fmt.format(s.total_execs || 0);
  document.getElementById('speed').textContent = (s.total_speed || 0).toFixed(1) + '/s';
  document.getElementById('coverage').textContent = (s.max_coverage || 0).toFixed(2) + '%';
  document.getElementById('crashes').textContent = fmt.format(s.total_crashes || 0);
  document.getElementById('hangs').textContent = fmt.format(s.total_hangs || 0);

  const rows = (data.fuzzers || []).map(f =>
    '<tr><td>' + f.name + '</td>' +
    '<td class="' + f.status + '">' + f.status + '</td>' +
    '<td>' + fmt.format(f.execs_done) + '</td>' +
    '<td>' + f.execs_per_sec.toFixed(1) + '/s</td>' +
    '<td>' + fmt.format(f.corpus_count) + '</td>' +
    '<td>' + f.bitmap_cvg.toFixed(2) + '%</td>' +
    '<td>' + fmt.format(f.saved_crashes) + '</td></tr>');
  document.getElementById('fuzzers').innerHTML = rows.join('');
}

async function poll() {
  try {
    const resp = await fetch('/api/stats');
    render(await resp.json());
  } catch (e) { /* server restarting */ }
}

function connect() {
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const ws = new WebSocket(proto + '//' + location.host + '/ws');
  const badge = document.getElementById('badge');
  ws.onopen = () => { badge.textContent = 'live'; badge.classList.add('live'); };
  ws.onmessage = ev => render(JSON.parse(ev.data));
  ws.onclose = () => {
    badge.textContent = 'polling';
    badge.classList.remove('live');
    setTimeout(connect, 5000);
  };
}

poll();
setInterval(poll, 30000);
connect();
</script>
</body>
</html>
`
