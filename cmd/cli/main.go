// Command ob is the operator CLI for the onboarding service.
package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/and161185/onboarding/internal/client"
	"github.com/and161185/onboarding/internal/clipboard"
	"github.com/and161185/onboarding/internal/config"
	"github.com/and161185/onboarding/internal/model"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// backend is the data access layer the commands run against.
type backend interface {
	ListClients(ctx context.Context) ([]model.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	GetClientByShareToken(ctx context.Context, tok string) (*model.Client, error)
	CreateClient(ctx context.Context, name string) (*model.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	GetFormData(ctx context.Context, clientID uuid.UUID) (*model.OnboardingForm, error)
	SaveFormData(ctx context.Context, clientID uuid.UUID, data model.FormData) error
	ClearFormData(ctx context.Context, clientID uuid.UUID) error
	ExportFormData(ctx context.Context, clientID uuid.UUID, generatedAt time.Time) (string, error)
	Close() error
}

type copier interface {
	Copy(text string) (clipboard.Method, error)
}

// app carries what every command needs. Tests swap dial, in, out and copier.
type app struct {
	cfg        config.CLI
	configPath string

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	dial   func(config.CLI) (backend, error)
	copier copier
	now    func() time.Time

	be backend
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: &syncWriter{w: errOut},
		dial:   dialServer,
		copier: clipboard.New(),
		now:    time.Now,
	}
}

// backend dials lazily so commands that never talk to the server work offline.
func (a *app) backend() (backend, error) {
	if a.be != nil {
		return a.be, nil
	}
	be, err := a.dial(a.cfg)
	if err != nil {
		return nil, err
	}
	a.be = be
	return be, nil
}

func (a *app) close() {
	if a.be != nil {
		_ = a.be.Close()
		a.be = nil
	}
}

// confirm asks a yes/no question on errOut and reads the answer from in.
func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.errOut, "%s [y/N]: ", question)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "j", "ja":
		return true
	}
	return false
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// syncWriter serializes writes from autosave callbacks and the command loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func loadTLS(caPath string) (*tls.Config, error) {
	if caPath == "" {
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func dialServer(cfg config.CLI) (backend, error) {
	opts := client.Options{Timeout: cfg.Timeout}
	if !cfg.Insecure {
		tc, err := loadTLS(cfg.CAFile)
		if err != nil {
			return nil, err
		}
		opts.TLS = tc
	}
	return client.Dial(cfg.Server, opts)
}

func newRootCmd(a *app) *cobra.Command {
	var (
		server   string
		caFile   string
		insecure bool
		timeout  time.Duration
	)
	root := &cobra.Command{
		Use:           "ob",
		Short:         "Operator CLI for client onboarding",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadCLI(a.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("server") {
				cfg.Server = server
			}
			if flags.Changed("cacert") {
				cfg.CAFile = caFile
			}
			if flags.Changed("insecure") {
				cfg.Insecure = insecure
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}
			a.cfg = cfg
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultCLIPath(), "config file")
	pf.StringVar(&server, "server", "", "server address HOST:PORT")
	pf.StringVar(&caFile, "cacert", "", "CA cert (PEM)")
	pf.BoolVar(&insecure, "insecure", false, "dial without TLS (dev)")
	pf.DurationVar(&timeout, "timeout", 0, "per-call timeout")

	root.AddCommand(
		newVersionCmd(a),
		newClientsCmd(a),
		newShareCmd(a),
		newFormCmd(a),
		newExportCmd(a),
		newChecklistCmd(a),
		newFieldsCmd(a),
	)
	return root
}

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	root := newRootCmd(a)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		a.close()
		os.Exit(1)
	}
}
