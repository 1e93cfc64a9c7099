package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/blinkchain/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"level": func(c status.Chain) string {
		if !c.Initialized {
			return "UNKNOWN"
		}
		return status.LevelString(c.Level)
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Blinkchain</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.swatch { display: inline-block; width: 1em; height: 1em; vertical-align: middle; border: 1px solid #888; margin-right: 6px; }
</style>
</head>
<body>
<h1>Blinkchain</h1>

<h2>Chain</h2>
<table>
<tr><th>Mode</th><td id="mode">{{orUnknown .Chain.Mode}}</td></tr>
<tr><th>Interval</th><td>{{orUnknown .Chain.Interval}}</td></tr>
<tr><th>Output</th><td id="level" class="{{with level .Chain}}{{if eq . "ON"}}on{{else if eq . "OFF"}}off{{else}}unknown{{end}}{{end}}">{{level .Chain}}</td></tr>
<tr><th>Backlight</th><td>{{if .Chain.Color}}<span class="swatch" style="background: {{.Chain.Color}}"></span>{{.Chain.Color}}{{else}}none{{end}}</td></tr>
<tr><th>Ready</th><td>{{if .Chain.Initialized}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Counts</h2>
<table>
<tr><th>Toggles</th><td>{{.Chain.Toggles}}</td></tr>
<tr><th>Button presses</th><td>{{.Chain.Presses}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Pins</th><td>chain {{.Config.ChainPin}}, button {{.Config.ButtonPin}}</td></tr>
<tr><th>Modes</th><td>{{range $i, $m := .Config.Modes}}{{if $i}}, {{end}}{{$m}}{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
