package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/rangefinder/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Rangefinder</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.reading { color: green; font-weight: bold; }
.fault { color: red; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Rangefinder{{if .Config.Simulated}} (simulated){{end}}</h1>

<h2>Measurement</h2>
<table>
{{if .HasLast}}{{if .Last.Valid}}<tr><th>Distance</th><td id="distance" class="reading">{{.Last.DistanceCm}} cm</td></tr>
{{else}}<tr><th>Distance</th><td id="distance" class="fault">{{.Last.Fault}}</td></tr>
{{end}}<tr><th>Measured</th><td>{{.Last.Timestamp.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{else}}<tr><th>Distance</th><td id="distance" class="unknown">UNKNOWN</td></tr>
{{end}}<tr><th>State</th><td>{{.State}}</td></tr>
<tr><th>Failures in a row</th><td>{{.ConsecutiveFailures}}</td></tr>
</table>

<h2>Sensor</h2>
<table>
<tr><th>Profile</th><td>{{.Config.Profile.Name}}</td></tr>
<tr><th>Pins</th><td>trig {{.Config.TrigPin}} / echo {{.Config.EchoPin}} on {{.Config.Chip}}</td></tr>
<tr><th>Scale</th><td>{{.Config.Profile.UsPerCm}} us/cm</td></tr>
<tr><th>Levels</th><td>trig {{.Config.Profile.TrigActive}} / echo {{.Config.Profile.EchoActive}}</td></tr>
<tr><th>Start timeout</th><td>{{.Config.Profile.TimeoutForPulseStartUs}} us</td></tr>
<tr><th>Max pulse</th><td>{{.Config.Profile.MaxPulseDurationUs}} us</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Readings</th><td>{{.Counts.Readings}}</td></tr>
<tr><th>Pulse start timeout</th><td>{{.Counts.PulseStartTimeout}}</td></tr>
<tr><th>Pulse runaway</th><td>{{.Counts.PulseRunaway}}</td></tr>
<tr><th>Echo already active</th><td>{{.Counts.EchoAlreadyActive}}</td></tr>
<tr><th>I/O error</th><td>{{.Counts.IOError}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Interval</th><td>{{.Config.IntervalMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
