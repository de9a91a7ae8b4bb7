package httpd

import (
	"html/template"
	"net/http"
)

type outcomeData struct {
	Txnid      string
	Status     string
	Amount     string
	Message    string
	Suspicious bool
}

var outcomeTmpl = template.Must(template.New("outcome").Parse(`<!DOCTYPE html>
<html>
<head><title>Payment Result</title></head>
<body>
  <h1>Payment {{.Status}}</h1>
  {{if .Txnid}}<p>Transaction: {{.Txnid}}</p>{{end}}
  {{if .Amount}}<p>Amount: {{.Amount}}</p>{{end}}
  {{if .Message}}<p>{{.Message}}</p>{{end}}
  {{if .Suspicious}}<p><strong>Warning:</strong> suspicious activity was detected on this payment. It has been flagged for manual review.</p>{{end}}
</body>
</html>
`))

// renderOutcome always answers 200: the payer's browser is a dead end for
// HTTP error semantics, the page carries the outcome.
func renderOutcome(w http.ResponseWriter, data outcomeData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	outcomeTmpl.Execute(w, data)
}
