package notifier

import (
	"html/template"
	"strings"
)

type reminderView struct {
	StartupName string
	GrantName   string
	Provider    string
	Deadline    string
	DaysLabel   string
	Link        string
}

type grantLine struct {
	Name     string
	Provider string
	Deadline string
	Link     string
}

type digestView struct {
	StartupName string
	NewGrants   []grantLine
	Closing     []grantLine
	Link        string
}

var reminderTemplate = template.Must(template.New("reminder").Parse(`<p>Hi {{.StartupName}} team,</p>
<p><strong>{{.GrantName}}</strong> from {{.Provider}} closes {{.DaysLabel}} ({{.Deadline}}).</p>
<p><a href="{{.Link}}">Review your application</a></p>`))

var digestTemplate = template.Must(template.New("digest").Parse(`<p>Hi {{.StartupName}} team,</p>
{{if .NewGrants}}<h3>New grants for you</h3>
<ul>{{range .NewGrants}}<li><a href="{{.Link}}">{{.Name}}</a> ({{.Provider}}){{if .Deadline}}, deadline {{.Deadline}}{{end}}</li>{{end}}</ul>
{{end}}{{if .Closing}}<h3>Watched grants closing soon</h3>
<ul>{{range .Closing}}<li><a href="{{.Link}}">{{.Name}}</a>, deadline {{.Deadline}}</li>{{end}}</ul>
{{end}}<p><a href="{{.Link}}">Browse all grants</a></p>`))

func renderReminder(v reminderView) (string, error) {
	var sb strings.Builder
	err := reminderTemplate.Execute(&sb, v)
	return sb.String(), err
}

func renderDigest(v digestView) (string, error) {
	var sb strings.Builder
	err := digestTemplate.Execute(&sb, v)
	return sb.String(), err
}
