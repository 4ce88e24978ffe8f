package dashboard

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.RefreshSecs}}">
<title>bracketbot {{.Symbol}}</title>
<style>
body { font-family: monospace; background: #111; color: #0f0; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1em; }
td { padding: 2px 12px 2px 0; }
.err { color: #f55; }
pre { background: #000; padding: 1em; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Symbol}} bot</h1>
<table>
<tr><td>State</td><td>{{.State}}</td></tr>
<tr><td>Status</td><td>{{.Message}}</td></tr>
<tr><td>Balance</td><td>{{printf "%.2f" .Balance}}{{if not .LiveAccount}} (cached){{end}}</td></tr>
<tr><td>Equity</td><td>{{printf "%.2f" .Equity}}</td></tr>
<tr><td>Trades today</td><td>{{.TradesToday}}</td></tr>
<tr><td>Cooldown</td><td>{{.CooldownRemaining}}</td></tr>
<tr><td>Last signal</td><td>{{.LastSignal}}</td></tr>
<tr><td>Last decision</td><td>{{.LastDecision}}</td></tr>
<tr><td>Last order</td><td>{{.LastOrder}}</td></tr>
<tr><td>Updated</td><td>{{if not .UpdatedAt.IsZero}}{{.UpdatedAt.Format "2006-01-02 15:04:05"}}{{end}}</td></tr>
</table>
{{if .AccountError}}<p class="err">account: {{.AccountError}}</p>{{end}}
<pre>{{range .Log}}{{.}}
{{end}}</pre>
</body>
</html>
`
