package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/and161185/onboarding/internal/autosave"
	"github.com/and161185/onboarding/internal/schema"
)

const editHelp = `KEY=VALUE   set a field (\n in VALUE becomes a line break, KEY= empties it)
KEY         print a field with its label
:show       print filled fields    :all    print every field
:status     print save status      :save   save now
:clear      empty the whole form   :quit   save and exit
`

func newEditCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a form interactively; changes are saved automatically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			be, c, err := a.mustClient(cmd, args[0])
			if err != nil {
				return err
			}
			log := zap.NewNop()
			if verbose {
				log = zap.New(zapcore.NewCore(
					zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
					zapcore.AddSync(a.errOut),
					zap.DebugLevel,
				))
			}

			sess := autosave.New(be, c.ID, autosave.Options{
				Quiet:    a.cfg.Quiet,
				Logger:   log,
				OnStatus: (&statusPrinter{w: a.errOut, prev: autosave.Loading}).print,
			})
			defer sess.Close()

			ctx := cmd.Context()
			if err := sess.Start(ctx); err != nil {
				fmt.Fprintln(a.errOut, "could not load the stored form, starting empty:", err)
			}
			fmt.Fprintf(a.out, "Editing %q. :help for commands.\n", c.Name)

			for {
				line, rerr := a.in.ReadString('\n')
				if quit := a.editLine(cmd, sess, strings.TrimRight(line, "\r\n")); quit {
					break
				}
				if rerr != nil {
					if !errors.Is(rerr, io.EOF) {
						return rerr
					}
					break
				}
			}

			if err := sess.Flush(ctx); err != nil {
				return fmt.Errorf("final save: %w", err)
			}
			fmt.Fprintln(a.out, "saved")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log autosave activity to stderr")
	return cmd
}

// editLine handles one input line and reports whether the loop should end.
func (a *app) editLine(cmd *cobra.Command, sess *autosave.Session, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case ":q", ":quit", ":wq":
		return true
	case ":h", ":help":
		fmt.Fprint(a.out, editHelp)
	case ":show":
		writeFields(a, sess.Snapshot(), false)
	case ":all":
		writeFields(a, sess.Snapshot(), true)
	case ":status":
		fmt.Fprintln(a.out, describeStatus(sess.Status()))
	case ":save":
		if err := sess.Flush(cmd.Context()); err != nil {
			fmt.Fprintln(a.errOut, "save failed:", err)
		}
	case ":clear":
		err := sess.Clear(cmd.Context(), func() bool { return a.confirm("Tømme hele skjemaet?") })
		switch {
		case errors.Is(err, autosave.ErrNotConfirmed):
			fmt.Fprintln(a.out, "not cleared")
		case err != nil:
			fmt.Fprintln(a.errOut, "clear failed:", err)
		default:
			fmt.Fprintln(a.out, "cleared")
		}
	default:
		if strings.HasPrefix(line, ":") {
			fmt.Fprintf(a.errOut, "unknown command %s\n", line)
			return false
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		field, known := schema.Lookup(key)
		if !known {
			fmt.Fprintf(a.errOut, "unknown field %q; run `ob fields`\n", key)
			return false
		}
		if !ok {
			fmt.Fprintf(a.out, "%s: %s\n", field.Label, sess.Get(key))
			return false
		}
		if err := sess.Set(key, strings.ReplaceAll(value, `\n`, "\n")); err != nil {
			fmt.Fprintln(a.errOut, err)
		}
	}
	return false
}

// statusPrinter reports save transitions, not every edit.
type statusPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	prev autosave.State
}

func (p *statusPrinter) print(st autosave.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.prev
	p.prev = st.State
	switch {
	case st.State == autosave.Saving && prev != autosave.Saving:
		fmt.Fprintln(p.w, "saving...")
	case prev != autosave.Saving:
	case st.LastErr != nil:
		fmt.Fprintln(p.w, "save failed:", st.LastErr)
	case st.Saved:
		fmt.Fprintln(p.w, "saved")
	}
}

func describeStatus(st autosave.Status) string {
	s := st.State.String()
	if st.Saved {
		s += ", saved"
	}
	if st.LastErr != nil {
		s += ", last save failed: " + st.LastErr.Error()
	}
	return s
}
