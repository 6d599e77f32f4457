package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"frameworks/api_tunnels/internal/app"
	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/ledger"
	"frameworks/api_tunnels/internal/netif"
	"frameworks/api_tunnels/internal/wgconf"
	"frameworks/api_tunnels/internal/xexec"
	"frameworks/api_tunnels/internal/xexec/xexectest"
)

const sampleTunnel = `[Interface]
PrivateKey = cHJpdmF0ZQ==
Address = 10.8.0.2/32
DNS = 1.1.1.1

[Peer]
PublicKey = cHVibGlj
Endpoint = vpn.example.net:51820
AllowedIPs = 0.0.0.0/0
`

type cliHarness struct {
	dir    string
	wgDir  string
	ledger string
	config string
	stub   *xexectest.Stub
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	dir := t.TempDir()
	h := &cliHarness{
		dir:    dir,
		wgDir:  filepath.Join(dir, "wireguard"),
		ledger: filepath.Join(dir, "parameters.csv"),
		config: filepath.Join(dir, "config.yaml"),
		stub:   &xexectest.Stub{},
	}
	if err := os.MkdirAll(h.wgDir, 0o700); err != nil {
		t.Fatal(err)
	}
	cfg := strings.Join([]string{
		"wg_quick_bin: wg-quick",
		"wg_bin: wg",
		"relay_bin: bosun-test-relay",
		"relay_session: bosun-test",
		"screen_bin: screen",
		"loopback_interface: lo",
		"wg_status_backend: command",
		"external_tool_timeout: 5s",
	}, "\n")
	if err := os.WriteFile(h.config, []byte(cfg+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *cliHarness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app.Options{
		Runner:     h.stub,
		Interfaces: netif.Static{"eth0", "lo", "wg1"},
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	full := append([]string{"--config", h.config, "--wireguard-dir", h.wgDir, "--ledger", h.ledger}, args...)
	root.SetArgs(full)
	err := root.Execute()
	return out.String(), err
}

func (h *cliHarness) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := h.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("bosunctl %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (h *cliHarness) records(t *testing.T) []ledger.Record {
	t.Helper()
	var records []ledger.Record
	if err := json.Unmarshal([]byte(h.mustRun(t, "", "-o", "json", "listeners", "list")), &records); err != nil {
		t.Fatalf("decode listeners: %v", err)
	}
	return records
}

func TestTunnelsAddFromFileAndList(t *testing.T) {
	h := newCLIHarness(t)
	src := filepath.Join(h.dir, "client.conf")
	if err := os.WriteFile(src, []byte(sampleTunnel), 0o600); err != nil {
		t.Fatal(err)
	}

	out := h.mustRun(t, "", "tunnels", "add", src)
	if !strings.Contains(out, "created wg1") {
		t.Fatalf("unexpected output %q", out)
	}

	written, err := os.ReadFile(filepath.Join(h.wgDir, "wg1.conf"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(written), "DNS") || !strings.Contains(string(written), "Table=off") {
		t.Fatalf("config not transformed:\n%s", written)
	}

	var names []string
	if err := json.Unmarshal([]byte(h.mustRun(t, "", "-o", "json", "tunnels", "list")), &names); err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "wg1" {
		t.Fatalf("tunnels list = %v", names)
	}

	if shown := h.mustRun(t, "", "tunnels", "show", "wg1"); shown != string(written) {
		t.Fatalf("show printed %q, want %q", shown, written)
	}
}

func TestTunnelsAddFromStdinWithUp(t *testing.T) {
	h := newCLIHarness(t)

	out := h.mustRun(t, sampleTunnel, "tunnels", "add", "--up")
	if !strings.Contains(out, "created wg1 and brought it up") {
		t.Fatalf("unexpected output %q", out)
	}
	want := "wg-quick up " + filepath.Join(h.wgDir, "wg1.conf")
	if lines := h.stub.Lines(); len(lines) != 1 || lines[0] != want {
		t.Fatalf("runner saw %v, want [%s]", lines, want)
	}
}

func TestTunnelsShowSummaryOmitsPrivateKey(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun(t, sampleTunnel, "tunnels", "add")

	var view struct {
		Interface string `yaml:"interface"`
		Summary   struct {
			Address []string `yaml:"address"`
		} `yaml:"summary"`
	}
	out := h.mustRun(t, "", "-o", "yaml", "tunnels", "show", "wg1")
	if err := yaml.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode yaml: %v\n%s", err, out)
	}
	if view.Interface != "wg1" || len(view.Summary.Address) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	summary := strings.SplitN(out, "summary:", 2)[1]
	if strings.Contains(summary, "cHJpdmF0ZQ==") {
		t.Fatalf("summary leaks the private key:\n%s", summary)
	}
}

func TestTunnelsDownAlreadyDownIsWarning(t *testing.T) {
	h := newCLIHarness(t)
	h.stub.On("wg-quick down", xexectest.Response{Result: xexec.Result{
		ExitCode: 1,
		Stderr:   "wg-quick: `wg1' is not a WireGuard interface\n",
	}})

	out, err := h.run(t, "", "tunnels", "down", "wg1")
	if err != nil {
		t.Fatalf("down: %v", err)
	}
	if !strings.Contains(out, "not a WireGuard interface") {
		t.Fatalf("warning not reported: %q", out)
	}

	var res struct {
		Status string `json:"status"`
		Data   struct {
			Code int `json:"error_code"`
		} `json:"data"`
	}
	out = h.mustRun(t, "", "-o", "json", "tunnels", "down", "wg1")
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "warning" || res.Data.Code != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestTunnelsUpFailureIsExternalToolError(t *testing.T) {
	h := newCLIHarness(t)
	h.stub.On("wg-quick up", xexectest.Response{Result: xexec.Result{ExitCode: 2, Stderr: "Address already in use"}})

	_, err := h.run(t, "", "tunnels", "up", "wg3")
	if apperrors.KindOf(err) != apperrors.KindExternalTool {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Address already in use") {
		t.Fatalf("stderr not carried: %v", err)
	}
}

func TestTunnelsRejectInvalidNameBeforeRunning(t *testing.T) {
	h := newCLIHarness(t)
	for _, args := range [][]string{
		{"tunnels", "up", "eth0"},
		{"tunnels", "down", "wg"},
		{"tunnels", "show", "../wg1"},
		{"tunnels", "rm", "wg1x"},
	} {
		if _, err := h.run(t, "", args...); !apperrors.IsValidation(err) {
			t.Fatalf("%v: expected validation error, got %v", args, err)
		}
	}
	if calls := h.stub.Calls(); len(calls) != 0 {
		t.Fatalf("runner invoked for invalid names: %v", calls)
	}
}

func TestTunnelsActiveUsesWgShow(t *testing.T) {
	h := newCLIHarness(t)
	h.stub.On("wg show", xexectest.Response{Result: xexec.Result{
		Stdout: "interface: wg1\n  public key: abc\n\ninterface: wg4\n",
	}})

	out := h.mustRun(t, "", "tunnels", "active")
	if out != "wg1\nwg4\n" {
		t.Fatalf("active = %q", out)
	}
}

func TestTunnelsRemoveRedirectsListeners(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun(t, sampleTunnel, "tunnels", "add")
	h.mustRun(t, "", "listeners", "add", "-u", "alice", "-p", "pw", "--port", "1080", "-i", "wg1")
	h.mustRun(t, "", "listeners", "add", "-u", "bob", "-p", "pw", "--port", "1081", "-i", "eth0")

	out := h.mustRun(t, "", "tunnels", "rm", "wg1")
	if !strings.Contains(out, "1 listener(s) moved to lo") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(h.wgDir, "wg1.conf")); !os.IsNotExist(err) {
		t.Fatalf("config still present: %v", err)
	}

	records := h.records(t)
	if records[0].Interface != "lo" || records[1].Interface != "eth0" {
		t.Fatalf("unexpected records %+v", records)
	}

	if _, err := h.run(t, "", "tunnels", "rm", "wg1"); !apperrors.IsNotFound(err) {
		t.Fatalf("second rm: expected not found, got %v", err)
	}
}

func TestListenersAddPromptsForPassword(t *testing.T) {
	h := newCLIHarness(t)

	h.mustRun(t, "s3cret\n", "listeners", "add", "-u", "alice", "--port", "01080", "-i", "eth0")

	records := h.records(t)
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Password != "s3cret" || records[0].Port != "1080" || records[0].ID != 1 {
		t.Fatalf("unexpected record %+v", records[0])
	}

	if _, err := h.run(t, "", "listeners", "add", "-u", "bob", "--port", "1081", "-i", "eth0"); !apperrors.IsValidation(err) {
		t.Fatalf("empty password: expected validation error, got %v", err)
	}
}

func TestListenersAddValidation(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun(t, "", "listeners", "add", "-u", "a", "-p", "b", "--port", "22", "-i", "eth0")

	cases := []struct {
		name string
		args []string
	}{
		{"duplicate port", []string{"-u", "c", "-p", "d", "--port", "22", "-i", "eth0"}},
		{"port out of range", []string{"-u", "c", "-p", "d", "--port", "70000", "-i", "eth0"}},
		{"unknown interface", []string{"-u", "c", "-p", "d", "--port", "8080", "-i", "wg9"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.run(t, "", append([]string{"listeners", "add"}, tc.args...)...)
			if !apperrors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if n := len(h.records(t)); n != 1 {
		t.Fatalf("ledger changed by rejected adds: %d records", n)
	}
}

func TestListenersEditKeepsUnsetFields(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun(t, "", "listeners", "add", "-u", "alice", "-p", "pw", "--port", "1080", "-i", "eth0")

	h.mustRun(t, "", "listeners", "edit", "1", "--port", "2080")

	got := h.records(t)[0]
	want := ledger.Record{ID: 1, Username: "alice", Password: "pw", Port: "2080", Interface: "eth0"}
	if got != want {
		t.Fatalf("edit = %+v, want %+v", got, want)
	}

	if _, err := h.run(t, "", "listeners", "edit", "7", "--port", "1"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := h.run(t, "", "listeners", "edit", "x"); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListenersRemoveRenumbers(t *testing.T) {
	h := newCLIHarness(t)
	for _, port := range []string{"1080", "1081", "1082"} {
		h.mustRun(t, "", "listeners", "add", "-u", "user"+port, "-p", "pw", "--port", port, "-i", "eth0")
	}

	h.mustRun(t, "", "listeners", "rm", "2")
	h.mustRun(t, "", "listeners", "rm", "9")

	records := h.records(t)
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].ID != 1 || records[0].Port != "1080" || records[1].ID != 2 || records[1].Port != "1082" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestListenersListMasksPasswords(t *testing.T) {
	h := newCLIHarness(t)
	if out := h.mustRun(t, "", "listeners", "list"); !strings.Contains(out, "No listeners configured") {
		t.Fatalf("empty list printed %q", out)
	}

	h.mustRun(t, "", "listeners", "add", "-u", "alice", "-p", "hunter2", "--port", "1080", "-i", "eth0")
	if out := h.mustRun(t, "", "listeners", "list"); strings.Contains(out, "hunter2") {
		t.Fatalf("password printed without --show-passwords:\n%s", out)
	}
	if out := h.mustRun(t, "", "listeners", "list", "--show-passwords"); !strings.Contains(out, "hunter2") {
		t.Fatalf("password missing with --show-passwords:\n%s", out)
	}
}

func TestListenersCommand(t *testing.T) {
	h := newCLIHarness(t)
	if out := h.mustRun(t, "", "listeners", "command"); out != "bosun-test-relay\n" {
		t.Fatalf("empty ledger command = %q", out)
	}

	h.mustRun(t, "", "listeners", "add", "-u", "u", "-p", "p", "--port", "1080", "-i", "eth0")
	h.mustRun(t, "", "listeners", "add", "-u", "u", "-p", "p", "--port", "1081", "-i", "wg1")

	out := h.mustRun(t, "", "listeners", "command")
	want := "bosun-test-relay -L :1080?auth=dTpw -F direct://:0?interface=eth0 -- -L :1081?auth=dTpw -F direct://:0?interface=wg1\n"
	if out != want {
		t.Fatalf("command = %q, want %q", out, want)
	}
}

func TestListenersInterfaces(t *testing.T) {
	h := newCLIHarness(t)
	if out := h.mustRun(t, "", "listeners", "interfaces"); out != "eth0\nlo\nwg1\n" {
		t.Fatalf("interfaces = %q", out)
	}
}

func TestRelayStartRunsDetachedSession(t *testing.T) {
	h := newCLIHarness(t)
	if _, err := h.run(t, "", "relay", "start"); !apperrors.IsValidation(err) {
		t.Fatalf("empty ledger: expected validation error, got %v", err)
	}

	h.mustRun(t, "", "listeners", "add", "-u", "u", "-p", "p", "--port", "1080", "-i", "eth0")
	out := h.mustRun(t, "", "relay", "start")
	if !strings.Contains(out, "relay started with 1 listener(s)") {
		t.Fatalf("unexpected output %q", out)
	}

	want := "screen -dmS bosun-test bosun-test-relay -L :1080?auth=dTpw -F direct://:0?interface=eth0"
	lines := h.stub.Lines()
	if len(lines) != 1 || lines[0] != want {
		t.Fatalf("runner saw %v, want [%s]", lines, want)
	}
}

func TestRelayStartFailureCarriesToolOutput(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun(t, "", "listeners", "add", "-u", "u", "-p", "p", "--port", "1080", "-i", "eth0")
	h.stub.On("screen", xexectest.Response{Result: xexec.Result{ExitCode: 1, Stderr: "Must be connected to a terminal."}})

	_, err := h.run(t, "", "relay", "start")
	if apperrors.KindOf(err) != apperrors.KindExternalTool || !strings.Contains(err.Error(), "Must be connected") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRelayStatusAndStopWhenNotRunning(t *testing.T) {
	h := newCLIHarness(t)

	if out := h.mustRun(t, "", "relay", "status"); !strings.Contains(out, "relay is not running") {
		t.Fatalf("status = %q", out)
	}
	if out := h.mustRun(t, "", "relay", "stop"); !strings.Contains(out, "relay was not running") {
		t.Fatalf("stop = %q", out)
	}
}

func TestVersionStructuredOutput(t *testing.T) {
	h := newCLIHarness(t)

	var info map[string]string
	if err := json.Unmarshal([]byte(h.mustRun(t, "", "-o", "json", "version")), &info); err != nil {
		t.Fatal(err)
	}
	if info["component_name"] != "bosunctl" || info["version"] == "" {
		t.Fatalf("unexpected version info %v", info)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	h := newCLIHarness(t)
	if _, err := h.run(t, "", "-o", "xml", "tunnels", "list"); err == nil {
		t.Fatal("expected error for unknown output format")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RELAY_BIN", "")
	t.Setenv("EXTERNAL_TOOL_TIMEOUT", "")

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"), false)
	if err != nil {
		t.Fatalf("implicit missing file: %v", err)
	}
	if cfg.RelayBin != "gost" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml"), true); err == nil {
		t.Fatal("explicit missing file: expected error")
	}

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("relay_bin: /usr/local/bin/gost\nexternal_tool_timeout: 5s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RelayBin != "/usr/local/bin/gost" || cfg.ToolTimeout != 5*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LoopbackInterface != "lo" {
		t.Fatalf("unset keys should keep defaults: %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("relay_bin: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, true); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTunnelsAddHelpNamesWrittenDirective(t *testing.T) {
	cmd := newTunnelsAddCmd(&rootState{})
	if !strings.Contains(cmd.Long, `"`+wgconf.TableOff+`"`) {
		t.Fatalf("help text does not name %q:\n%s", wgconf.TableOff, cmd.Long)
	}
}
