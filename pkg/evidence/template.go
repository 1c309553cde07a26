package evidence

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
  padding: 20px;
  line-height: 1.6;
}
.container { max-width: 1400px; margin: 0 auto; background: white; border-radius: 12px; box-shadow: 0 20px 60px rgba(0,0,0,0.3); overflow: hidden; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; }
.header h1 { font-size: 2.5em; margin-bottom: 10px; }
.timestamp { opacity: 0.9; font-size: 0.9em; }
.summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(150px, 1fr)); gap: 20px; padding: 30px; background: #f8f9fa; border-bottom: 1px solid #e0e0e0; }
.summary-card { background: white; padding: 20px; border-radius: 8px; text-align: center; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
.summary-card.passed { border-top: 4px solid #4caf50; }
.summary-card.failed { border-top: 4px solid #f44336; }
.summary-card.skipped { border-top: 4px solid #ff9800; }
.summary-label { font-size: 0.9em; color: #666; margin-bottom: 8px; }
.summary-value { font-size: 2em; font-weight: bold; color: #333; }
.panel { margin: 30px; padding: 20px; border-radius: 8px; border: 1px solid #e0e0e0; background: #fffdf5; }
.panel h2 { font-size: 1.3em; margin-bottom: 12px; color: #764ba2; }
.panel ul { margin-left: 20px; }
.failure-group { border-left: 4px solid #f44336; background: white; padding: 12px 16px; margin: 10px 0; border-radius: 4px; }
.failure-group.high { border-left-color: #ff9800; }
.failure-group.medium, .failure-group.low { border-left-color: #9e9e9e; }
.failure-meta { color: #666; font-size: 0.85em; }
.feature { margin: 30px; border: 1px solid #e0e0e0; border-radius: 8px; overflow: hidden; background: white; }
.feature > summary { list-style: none; cursor: pointer; }
.feature > summary::-webkit-details-marker { display: none; }
.feature-header { background: linear-gradient(135deg, #f8f9fa 0%, #e9ecef 100%); padding: 20px; border-bottom: 2px solid #667eea; }
.feature-title { font-size: 1.5em; font-weight: bold; margin-bottom: 10px; }
.feature-keyword { color: #667eea; font-weight: bold; }
.feature-tags { color: #666; font-size: 0.9em; margin-bottom: 10px; }
.feature-metrics { display: flex; gap: 15px; flex-wrap: wrap; }
.metric { background: white; padding: 5px 12px; border-radius: 4px; font-size: 0.9em; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
.scenario { margin: 20px; border: 1px solid #e0e0e0; border-radius: 6px; overflow: hidden; }
.scenario.passed { border-left: 4px solid #4caf50; }
.scenario.failed { border-left: 4px solid #f44336; }
.scenario.skipped, .scenario.pending { border-left: 4px solid #ff9800; }
.scenario-header { background: #f8f9fa; padding: 15px; display: flex; justify-content: space-between; align-items: center; flex-wrap: wrap; gap: 10px; }
.scenario-title { font-size: 1.2em; font-weight: 600; }
.scenario-keyword { color: #764ba2; font-weight: bold; }
.status-icon { font-size: 1.2em; margin-right: 8px; }
.scenario-info { display: flex; gap: 15px; align-items: center; }
.scenario-tags, .scenario-duration { color: #666; font-size: 0.9em; }
.steps { padding: 10px 0; }
.step { display: grid; grid-template-columns: 1fr auto; gap: 15px; padding: 12px 20px; border-bottom: 1px solid #f0f0f0; }
.step:last-child { border-bottom: none; }
.step.passed { background: rgba(76, 175, 80, 0.05); }
.step.failed { background: rgba(244, 67, 54, 0.05); }
.step-content { display: flex; align-items: center; gap: 10px; }
.step-status { font-size: 1.2em; width: 24px; text-align: center; }
.step-keyword { font-weight: 600; color: #764ba2; white-space: pre; }
.step-duration { color: #999; font-size: 0.9em; white-space: nowrap; }
.step-error { grid-column: 1 / -1; background: #fff3f3; border: 1px solid #ffcdd2; border-radius: 4px; padding: 15px; margin-top: 10px; color: #c62828; font-family: 'Courier New', monospace; font-size: 0.9em; white-space: pre-wrap; }
.step-evidence { grid-column: 1 / -1; margin-top: 15px; display: flex; flex-direction: column; gap: 15px; }
.evidence-item { background: #f8f9fa; border: 1px solid #e0e0e0; border-radius: 8px; padding: 15px; }
.evidence-label { font-weight: 600; color: #667eea; margin-bottom: 10px; font-size: 0.95em; }
.evidence-screenshot { max-width: 100%; height: auto; border-radius: 4px; cursor: pointer; box-shadow: 0 2px 8px rgba(0,0,0,0.2); display: block; }
.evidence-log, .evidence-json { background: #2d2d2d; color: #f8f8f2; padding: 15px; border-radius: 4px; overflow: auto; font-family: 'Courier New', Consolas, Monaco, monospace; font-size: 0.85em; line-height: 1.5; max-height: 400px; white-space: pre-wrap; }
.evidence-json { color: #a6e22e; }
.modal { display: none; position: fixed; z-index: 1000; left: 0; top: 0; width: 100%; height: 100%; background: rgba(0,0,0,0.9); justify-content: center; align-items: center; cursor: pointer; }
.modal.active { display: flex; }
.modal-content { max-width: 90%; max-height: 90%; object-fit: contain; border-radius: 8px; }
.modal-close { position: absolute; top: 20px; right: 35px; color: white; font-size: 40px; font-weight: bold; cursor: pointer; }
@media (max-width: 768px) {
  .summary { grid-template-columns: repeat(2, 1fr); }
  .step { grid-template-columns: 1fr; }
}
  </style>
</head>
<body>
  <div class="container">
    <header class="header">
      <h1>{{.Title}}</h1>
      <div class="timestamp">Generated: {{.GeneratedAt}}</div>
    </header>

    <div class="summary">
      <div class="summary-card"><div class="summary-label">Features</div><div class="summary-value" id="summary-features">{{.Summary.Features}}</div></div>
      <div class="summary-card"><div class="summary-label">Scenarios</div><div class="summary-value" id="summary-scenarios">{{.Summary.Scenarios}}</div></div>
      <div class="summary-card passed"><div class="summary-label">✓ Passed</div><div class="summary-value" id="summary-passed">{{.Summary.Passed}}</div></div>
      <div class="summary-card failed"><div class="summary-label">✗ Failed</div><div class="summary-value" id="summary-failed">{{.Summary.Failed}}</div></div>
      <div class="summary-card skipped"><div class="summary-label">○ Skipped</div><div class="summary-value" id="summary-skipped">{{.Summary.Skipped}}</div></div>
      <div class="summary-card"><div class="summary-label">⏱ Total Duration</div><div class="summary-value" id="summary-duration">{{.Summary.Duration}}</div></div>
    </div>
{{with .Insights}}{{if .FailureGroups}}
    <section class="panel" id="failure-analysis">
      <h2>Failure Analysis{{with .Health}} · {{.HealthStatus}} ({{percent .SuccessRate}} passed){{end}}</h2>
      {{with .Health}}<ul>{{range .KeyInsights}}<li>{{.}}</li>{{end}}</ul>
      <p class="failure-meta">{{.Recommendation}}</p>{{end}}
      {{range .FailureGroups}}
      <div class="failure-group {{.Severity}}">
        <strong>{{.ErrorType}}</strong> · {{.Count}} scenario(s) · {{.Severity}}
        <div>{{.RootCause}}</div>
        <div class="failure-meta">Scenarios: {{join .AffectedScenarios ", "}}</div>
        {{if .StepText}}<div class="failure-meta">First failing step: {{.StepText}}</div>{{end}}
        {{if .PreviousOccurrences}}<div class="failure-meta">Seen in {{.PreviousOccurrences}} earlier run(s)</div>{{end}}
        <div class="failure-meta">{{.SuggestedFix}}</div>
      </div>
      {{end}}
    </section>
{{end}}{{end}}
{{if .Flaky}}
    <section class="panel" id="flaky-scenarios">
      <h2>Flaky Scenarios</h2>
      <ul>
      {{range .Flaky}}<li>{{.Feature}}: {{.Scenario}} · failed {{percent .FailureRate}} of {{.Runs}} runs</li>{{end}}
      </ul>
    </section>
{{end}}
{{range .Features}}
    <details class="feature" open>
      <summary class="feature-header">
        <div class="feature-title"><span class="feature-keyword">{{.Keyword}}:</span> {{.Name}}</div>
        {{if .Tags}}<div class="feature-tags">{{.Tags}}</div>{{end}}
        <div class="feature-metrics">
          <span class="metric">⏱ {{.Duration}}</span>
          <span class="metric">{{.Scenarios}} scenarios</span>
          <span class="metric">{{.Steps}} steps</span>
        </div>
      </summary>
{{range .Items}}
      <div class="scenario {{.Status}}">
        <div class="scenario-header">
          <div class="scenario-title">
            <span class="status-icon">{{icon .Status}}</span>
            <span class="scenario-keyword">{{.Keyword}}:</span> {{.Name}}
          </div>
          <div class="scenario-info">
            {{if .Tags}}<span class="scenario-tags">{{.Tags}}</span>{{end}}
            <span class="scenario-duration">⏱ {{.Duration}}</span>
          </div>
        </div>
        <div class="steps">
{{range .Before}}{{template "step" .}}{{end}}
{{range .Steps}}{{template "step" .}}{{end}}
{{range .After}}{{template "step" .}}{{end}}
        </div>
      </div>
{{end}}
    </details>
{{end}}
  </div>

  <div id="imageModal" class="modal" onclick="closeModal()">
    <span class="modal-close" onclick="closeModal()">&times;</span>
    <img id="modalImage" class="modal-content" alt="Screenshot">
  </div>

  <script>
function openModal(src) {
  var modal = document.getElementById('imageModal');
  document.getElementById('modalImage').src = src;
  modal.classList.add('active');
}
function closeModal() {
  document.getElementById('imageModal').classList.remove('active');
}
document.addEventListener('keydown', function (e) {
  if (e.key === 'Escape') {
    closeModal();
  }
});
  </script>
</body>
</html>
{{define "step"}}
          <div class="step {{.Status}}">
            <div class="step-content">
              <span class="step-status">{{icon .Status}}</span>
              <span class="step-keyword">{{.Keyword}}</span>
              <span class="step-name">{{.Name}}</span>
            </div>
            <div class="step-duration">⏱ {{.Duration}}</div>
            {{if .Error}}<div class="step-error">{{.Error}}</div>{{end}}
            {{if .Evidence}}<div class="step-evidence">
            {{range .Evidence}}<div class="evidence-item">
              <div class="evidence-label">{{.Label}}</div>
              {{if eq .Kind "image"}}<img src="{{.Src}}" class="evidence-screenshot" alt="{{.Label}}" onclick="openModal(this.src); event.stopPropagation();">
              {{else if eq .Kind "json"}}<pre class="evidence-json">{{.Text}}</pre>
              {{else}}<pre class="evidence-log">{{.Text}}</pre>{{end}}
            </div>{{end}}
            </div>{{end}}
          </div>
{{end}}
`
