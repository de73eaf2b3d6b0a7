package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/config"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/service"
	"github.com/Philos250/TransactiTrack/internal/sheets"
)

var idPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

const statementOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>Corner Grocery
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>3000.00
<FITID>2024013101
<NAME>Payroll
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

// testEnv runs commands against one temporary database.
type testEnv struct {
	t       *testing.T
	dbPath  string
	envFile string
	config  string
	writer  *sheets.MockWriter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		t:       t,
		dbPath:  filepath.Join(dir, "ledger.db"),
		envFile: filepath.Join(dir, "missing.env"),
		writer:  sheets.NewMockWriter(),
	}
}

func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()

	a := newApp()
	a.newReportWriter = func(_ context.Context, _ sheets.Config, _ *slog.Logger) (service.ReportWriter, error) {
		return e.writer, nil
	}

	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))

	global := []string{"--db", e.dbPath, "--env-file", e.envFile, "--log-level", "error"}
	if e.config != "" {
		global = append(global, "--config", e.config)
	}
	root.SetArgs(append(global, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, out)
	return out
}

func (e *testEnv) createdID(args ...string) string {
	e.t.Helper()
	id := idPattern.FindString(e.mustRun(args...))
	require.NotEmpty(e.t, id, "no id in output")
	return id
}

func findCommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name {
			return sub
		}
	}
	return nil
}

func TestRootCmdStructure(t *testing.T) {
	root := newRootCmd(newApp())

	for _, name := range []string{"serve", "migrate", "categories", "transactions", "report", "import-ofx", "export-sheets", "version"} {
		assert.NotNil(t, findCommand(root, name), "%s command should exist", name)
	}

	for _, flag := range []string{"config", "env-file", "log-level", "log-format", "db", "backend"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "--%s flag should exist", flag)
	}

	categories := findCommand(root, "categories")
	require.NotNil(t, categories)
	for _, name := range []string{"list", "add", "update", "delete", "usage"} {
		assert.NotNil(t, findCommand(categories, name), "categories %s should exist", name)
	}

	transactions := findCommand(root, "transactions")
	require.NotNil(t, transactions)
	for _, name := range []string{"list", "add", "update", "delete"} {
		assert.NotNil(t, findCommand(transactions, name), "transactions %s should exist", name)
	}

	importCmd := findCommand(root, "import-ofx")
	require.NotNil(t, importCmd)
	accountType := importCmd.Flag("account-type")
	require.NotNil(t, accountType)
	assert.Equal(t, "bank", accountType.DefValue)

	assert.NotNil(t, findCommand(findCommand(root, "export-sheets"), "auth"))
}

func TestVersionCmd(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Equal(t, "transactitrack dev\n", out)
}

func TestMigrateCmd(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("migrate")
	assert.Contains(t, out, "Database migrated to version")

	out = env.mustRun("migrate", "--status")
	assert.Contains(t, out, "Current version")
	assert.Contains(t, out, env.dbPath)
}

func TestLedgerCommands(t *testing.T) {
	env := newTestEnv(t)

	foodID := env.createdID("categories", "add", "Food", "--budget", "200", "--description", "Groceries")
	assert.Contains(t, env.mustRun("categories", "list"), "Food")

	txID := env.createdID("transactions", "add",
		"--amount", "50", "--category", foodID, "--type", "expense",
		"--account-type", "mobile_money", "--date", "2024-01-15", "--description", "Market")

	list := env.mustRun("transactions", "list")
	assert.Contains(t, list, "Market")
	assert.Contains(t, list, "50.00")
	assert.Contains(t, list, "mobile money")

	out := env.mustRun("report", "--start", "2024-01-01", "--end", "2024-01-31", "--json")
	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Transactions, 1)
	assert.Equal(t, "Food", report.Transactions[0].CategoryName)
	assert.True(t, decimal.NewFromInt(50).Equal(report.Summary.Expense))
	assert.True(t, decimal.NewFromInt(150).Equal(report.Summary.BudgetLeft))

	out = env.mustRun("report", "--start", "2024-02-01", "--end", "2024-02-28", "--summary")
	assert.Contains(t, out, "Budget left")

	usage := env.mustRun("categories", "usage", "--start", "2024-01-01", "--end", "2024-01-31")
	assert.Contains(t, usage, "150.00")

	env.mustRun("transactions", "update", txID, "--amount", "75")
	out = env.mustRun("report", "--start", "2024-01-01", "--end", "2024-01-31", "--json", "--summary")
	var summary model.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.True(t, decimal.NewFromInt(75).Equal(summary.Expense))

	_, err := env.run("", "categories", "delete", foodID, "--yes")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCategoryInUse)

	out, err = env.run("n\n", "transactions", "delete", txID)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out, err = env.run("y\n", "transactions", "delete", txID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted transaction")

	env.mustRun("categories", "delete", foodID, "--yes")
	assert.Contains(t, env.mustRun("categories", "list"), "No categories yet")
}

func TestCategoryUpdateCmd(t *testing.T) {
	env := newTestEnv(t)

	parentID := env.createdID("categories", "add", "Household")
	childID := env.createdID("categories", "add", "Utilities", "--parent", parentID)

	env.mustRun("categories", "update", childID, "--name", "Bills", "--budget", "80")
	list := env.mustRun("categories", "list")
	assert.Contains(t, list, "Bills")
	assert.Contains(t, list, "80.00")

	_, err := env.run("", "categories", "update", childID, "--parent", childID)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.run("", "categories", "update", childID, "--parent", "missing")
	assert.ErrorIs(t, err, common.ErrInvalidReference)
}

func TestCommandValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		args   []string
		fields []string
	}{
		{
			name:   "transaction without required fields",
			args:   []string{"transactions", "add"},
			fields: []string{"amount", "description", "category", "type", "accountType"},
		},
		{
			name:   "report without range",
			args:   []string{"report"},
			fields: []string{"start", "end"},
		},
		{
			name:   "report with bad start",
			args:   []string{"report", "--start", "yesterday", "--end", "2024-01-31"},
			fields: []string{"start"},
		},
		{
			name:   "category with bad budget",
			args:   []string{"categories", "add", "Food", "--budget", "lots"},
			fields: []string{"budget"},
		},
		{
			name:   "transaction with bad date",
			args:   []string{"transactions", "add", "--date", "15/01/2024"},
			fields: []string{"date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run("", tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tt.fields, common.ValidationFields(err))
		})
	}

	_, err := env.run("", "report", "--start", "2024-02-01", "--end", "2024-01-01")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.run("", "transactions", "delete", "missing", "--yes")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestImportOFXCmd(t *testing.T) {
	env := newTestEnv(t)
	categoryID := env.createdID("categories", "add", "Imported")

	dir := t.TempDir()
	// The second statement overlaps the first completely.
	for _, name := range []string{"jan.ofx", "jan-again.QFX", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(statementOFX), 0o600))
	}

	out := env.mustRun("import-ofx", "--category", categoryID, "--dry-run", dir)
	assert.Contains(t, out, "Corner Grocery")
	assert.Contains(t, out, "Dry run: 4 transactions parsed, 2 duplicates")
	assert.Contains(t, env.mustRun("transactions", "list"), "No transactions found")

	out = env.mustRun("import-ofx", "--category", categoryID, dir)
	assert.Contains(t, out, "Imported 2 of 4 transactions (2 duplicates skipped, 0 failed)")

	out = env.mustRun("report", "--start", "2024-01-01", "--end", "2024-01-31", "--json")
	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Transactions, 2)
	assert.Equal(t, model.TransactionTypeExpense, report.Transactions[0].Type)
	assert.True(t, decimal.RequireFromString("25.50").Equal(report.Transactions[0].Amount))
	assert.Equal(t, model.TransactionTypeIncome, report.Transactions[1].Type)
	assert.Equal(t, model.AccountTypeBank, report.Transactions[1].AccountType)

	_, err := env.run("", "import-ofx", "--category", "missing", dir)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = env.run("", "import-ofx", "--category", categoryID, filepath.Join(dir, "*.csv"))
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestExpandStatementFiles(t *testing.T) {
	dir := t.TempDir()
	for _, file := range []string{"checking.ofx", "savings.OFX", "credit.qfx", "report.pdf", "sub/deep.ofx"} {
		path := filepath.Join(dir, file)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("test"), 0o600))
	}

	files, err := expandStatementFiles([]string{dir})
	require.NoError(t, err)
	assert.Len(t, files, 4)

	files, err = expandStatementFiles([]string{filepath.Join(dir, "*.ofx")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "checking.ofx")}, files)

	_, err = expandStatementFiles([]string{"[bad"})
	assert.Error(t, err)
}

func TestExportSheetsCmd(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", "export-sheets", "--start", "2024-01-01", "--end", "2024-01-31")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Equal(t, 0, env.writer.WriteCallCount)

	env.config = filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(env.config, []byte("sheets:\n  service_account_path: /tmp/service-account.json\n"), 0o600))

	categoryID := env.createdID("categories", "add", "Rent", "--budget", "900")
	env.mustRun("transactions", "add", "--amount", "900", "--category", categoryID, "--description", "January rent",
		"--type", "expense", "--account-type", "bank", "--date", "2024-01-01")

	out := env.mustRun("export-sheets", "--start", "2024-01-01", "--end", "2024-01-31")
	assert.Contains(t, out, "Exported 1 transactions")

	require.Equal(t, 1, env.writer.WriteCallCount)
	require.NotNil(t, env.writer.LastReport)
	assert.Len(t, env.writer.LastReport.Transactions, 1)
	assert.True(t, decimal.Zero.Equal(env.writer.LastReport.Summary.BudgetLeft))

	env.writer.SetWriteError(errors.New("quota exceeded"))
	_, err = env.run("", "export-sheets", "--start", "2024-01-01", "--end", "2024-01-31")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("", "--backend", "postgres", "categories", "list")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestServe(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
		ReadHeaderTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, listener, srv, time.Second)
	}()

	resp, err := http.Get("http://" + listener.Addr().String())
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenTLS(t *testing.T) {
	tlsCfg := config.TLSConfig{Enabled: true, CertDir: t.TempDir(), Hosts: []string{"127.0.0.1"}}

	listener, err := listen("127.0.0.1:0", tlsCfg)
	require.NoError(t, err)

	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("secure"))
		}),
		ReadHeaderTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = serve(ctx, listener, srv, time.Second) }()

	cert, err := tlsCfg.Source().Load()
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	pool := x509.NewCertPool()
	pool.AddCert(leaf)

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}}}
	resp, err := client.Get("https://" + listener.Addr().String())
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "secure", string(body))
}

func TestParseRangeFlags(t *testing.T) {
	from, to, err := parseRangeFlags("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), to)

	_, _, err = parseRangeFlags("", "2024-01-31")
	assert.Equal(t, []string{"start"}, common.ValidationFields(err))
}
