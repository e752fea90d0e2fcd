/*
Copyright © 2026 the WV-LUT authors.
This file is part of WV-LUT.

WV-LUT is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WV-LUT is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WV-LUT.  If not, see <http://www.gnu.org/licenses/>.
*/

package wvlututil

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/ctessum/gobra"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

const guiAddress = "localhost:7272"

// configHandler reads the configuration file given in the request and
// responds with the resulting value of every option.
func configHandler(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	configFile := r.Form.Get("config")
	Root.PersistentFlags().Set("config", configFile)
	if err := setConfig(); err != nil {
		http.Error(w, err.Error(), http.StatusNoContent)
		return
	}
	config := make(map[string]interface{})
	for _, option := range options {
		config[option.name] = Cfg.Get(option.name)
	}
	if err := json.NewEncoder(w).Encode(config); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StartWebServer starts a web server that allows the commands to be run
// from a browser, and opens it.
func StartWebServer() {
	if err := setConfig(); err != nil {
		Log.WithError(err).Warn("reading configuration for the GUI")
	}

	http.HandleFunc("/setConfig", configHandler)

	Log.Info("loading front-end")

	for _, cmd := range []*cobra.Command{Root, versionCmd, generateCmd, jacobianCmd,
		recallCmd, jrecallCmd, quicklookCmd, selftestCmd} {
		cmd.SilenceUsage = true // We don't want the usage messages in the GUI.
	}

	output := template.Must(template.New("").Parse(guiTemplate))
	server := gobra.Server{Root: Root, ServerAddress: guiAddress, AllowCORS: false, HTML: output}
	Log.WithField("address", guiAddress).Info("server starting")
	if err := open.Run("http://" + guiAddress); err != nil {
		fmt.Printf("If not opened automatically, please visit http://%s\n", guiAddress)
	}
	server.Start()
}

// guiTemplate wraps the form generated from the command tree. Loading a
// configuration file refreshes every field from /setConfig.
const guiTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>wvlut</title>
<style>
body { font-family: monospace; max-width: 60em; margin: 1em auto; }
div[data-name] input { width: 30em; }
input.loaded { background: #eef8ee; }
input.failed { background: #f8eeee; }
</style>
</head>
<body>
<h2>wvlut lookup tables</h2>
<p>Enter a configuration file path to load its values, then choose a command.</p>
{{.}}
<script>
const fields = Array.from(document.querySelectorAll("[data-name]"));
const input = name => {
	const f = fields.find(f => f.dataset.name == name);
	return f ? f.children[0] : null;
};
const cfg = input("config");
cfg.addEventListener("change", async () => {
	const res = await fetch("/setConfig?config=" + encodeURIComponent(cfg.value));
	cfg.className = res.status == 200 ? "loaded" : "failed";
	if (res.status != 200) return;
	const values = await res.json();
	for (const [name, v] of Object.entries(values)) {
		const el = input(name);
		if (el && name != "config") {
			el.value = typeof v == "string" ? v : JSON.stringify(v);
			el.className = "loaded";
		}
	}
});
</script>
</body>
</html>
`
