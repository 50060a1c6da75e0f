package service

import (
	"bytes"
	"encoding/xml"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"xml":     xmlEscape,
	"unitArg": unitArg,
}

var launchdTemplate = template.Must(template.New("plist").Funcs(funcs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{ xml .Label }}</string>
    <key>ProgramArguments</key>
    <array>
{{- range .Args }}
        <string>{{ xml . }}</string>
{{- end }}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <dict>
        <key>SuccessfulExit</key>
        <false/>
    </dict>
{{- if .LogFile }}
    <key>StandardOutPath</key>
    <string>{{ xml .LogFile }}</string>
    <key>StandardErrorPath</key>
    <string>{{ xml .LogFile }}</string>
{{- end }}
</dict>
</plist>
`))

var systemdTemplate = template.Must(template.New("unit").Funcs(funcs).Parse(`[Unit]
Description=filesorter ({{ .WatchRoot }})
After=default.target

[Service]
Type=simple
ExecStart={{ range $i, $a := .Args }}{{ if $i }} {{ end }}{{ unitArg $a }}{{ end }}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`))

type templateData struct {
	Label     string
	WatchRoot string
	Args      []string
	LogFile   string
}

func xmlEscape(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// unitArg quotes an ExecStart argument for systemd's command-line parser.
func unitArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'\\$%") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `$$`, `%`, `%%`)
	return `"` + r.Replace(s) + `"`
}
