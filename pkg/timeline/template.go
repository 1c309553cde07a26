package timeline

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <script src="{{.ChartScriptURL}}"></script>
  <style>
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen-Sans, Ubuntu, Cantarell, 'Helvetica Neue', sans-serif;
  max-width: 1600px;
  margin: 0 auto;
  padding: 20px;
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
  min-height: 100vh;
}
.header { background: white; color: #333; padding: 30px; border-radius: 12px; margin-bottom: 30px; box-shadow: 0 4px 20px rgba(0,0,0,0.1); text-align: center; }
.header h1 { margin: 0; font-size: 2.5em; color: #764ba2; }
.header p { margin: 10px 0 0; color: #666; }
.stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin-bottom: 30px; }
.stat-card { background: white; padding: 25px; border-radius: 12px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); text-align: center; transition: transform 0.2s, box-shadow 0.2s; }
.stat-card:hover { transform: translateY(-4px); box-shadow: 0 6px 20px rgba(0,0,0,0.15); }
.stat-card.passed { border-top: 4px solid #4caf50; }
.stat-card.failed { border-top: 4px solid #f44336; }
.stat-value { font-size: 2.5em; font-weight: bold; color: #667eea; margin-bottom: 8px; }
.stat-label { color: #666; font-size: 0.95em; font-weight: 500; }
.chart-container { background: white; padding: 30px; border-radius: 12px; box-shadow: 0 4px 20px rgba(0,0,0,0.1); position: relative; }
.empty { color: #666; text-align: center; padding: 40px; }
@media (max-width: 768px) {
  .stats { grid-template-columns: repeat(2, 1fr); }
  .header h1 { font-size: 1.8em; }
}
  </style>
</head>
<body>
  <div class="header">
    <h1>⏱️ {{.Title}}</h1>
    <p>Generated: {{.GeneratedAt}}</p>
  </div>

  <div class="stats">
    <div class="stat-card"><div class="stat-value" id="stat-features">{{.Features}}</div><div class="stat-label">Features</div></div>
    <div class="stat-card"><div class="stat-value" id="stat-scenarios">{{.Scenarios}}</div><div class="stat-label">Scenarios</div></div>
    <div class="stat-card passed"><div class="stat-value" id="stat-passed">{{.Passed}}</div><div class="stat-label">✓ Passed</div></div>
    <div class="stat-card failed"><div class="stat-value" id="stat-failed">{{.Failed}}</div><div class="stat-label">✗ Failed</div></div>
    <div class="stat-card"><div class="stat-value" id="stat-duration">{{.Duration}}</div><div class="stat-label">⏱ Total Duration</div></div>
  </div>

  <div class="chart-container" style="height: {{.ChartHeight}}px">
{{if .Bars}}
    <canvas id="timelineChart"></canvas>
{{else}}
    <p class="empty">No scenarios were executed.</p>
{{end}}
  </div>

{{if .Bars}}
  <script>
const data = {{.Bars}};

function barColor(status, alpha) {
  if (status === 'passed') return 'rgba(76, 175, 80, ' + alpha + ')';
  if (status === 'failed') return 'rgba(244, 67, 54, ' + alpha + ')';
  return 'rgba(158, 158, 158, ' + alpha + ')';
}

new Chart(document.getElementById('timelineChart'), {
  type: 'bar',
  data: {
    labels: data.map(function (s) { return s.label; }),
    datasets: [{
      label: 'Duration (ms)',
      data: data.map(function (s) { return s.ms; }),
      backgroundColor: data.map(function (s) { return barColor(s.status, 0.8); }),
      borderColor: data.map(function (s) { return barColor(s.status, 1); }),
      borderWidth: 2,
      borderRadius: 6,
      borderSkipped: false
    }]
  },
  options: {
    indexAxis: 'y',
    responsive: true,
    maintainAspectRatio: false,
    plugins: {
      legend: { display: false },
      title: {
        display: true,
        text: 'Scenario Duration',
        font: { size: 20, weight: 'bold' },
        padding: 20
      },
      tooltip: {
        backgroundColor: 'rgba(0, 0, 0, 0.8)',
        padding: 12,
        callbacks: {
          title: function (items) { return data[items[0].dataIndex].name; },
          label: function (item) { return 'Duration: ' + data[item.dataIndex].duration; },
          afterLabel: function (item) { return 'Feature: ' + data[item.dataIndex].feature; }
        }
      }
    },
    scales: {
      x: {
        beginAtZero: true,
        title: { display: true, text: 'Duration (milliseconds)', font: { size: 14, weight: 'bold' } },
        grid: { color: 'rgba(0, 0, 0, 0.05)' }
      },
      y: { grid: { display: false }, ticks: { font: { size: 12 } } }
    },
    animation: { duration: 1000, easing: 'easeInOutQuart' }
  }
});
  </script>
{{end}}
</body>
</html>
`
