package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/and161185/onboarding/internal/checklist"
	"github.com/and161185/onboarding/internal/clipboard"
	"github.com/and161185/onboarding/internal/convert"
	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/model"
	"github.com/and161185/onboarding/internal/schema"
)

var errCanceled = errors.New("canceled")

func parseID(s string) (uuid.UUID, error) { return convert.ParseID(s) }

// mustClient loads a client and turns a missing one into errs.ErrNotFound.
func (a *app) mustClient(cmd *cobra.Command, arg string) (backend, *model.Client, error) {
	id, err := parseID(arg)
	if err != nil {
		return nil, nil, err
	}
	be, err := a.backend()
	if err != nil {
		return nil, nil, err
	}
	c, err := be.GetClient(cmd.Context(), id)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, fmt.Errorf("client %s: %w", id, errs.ErrNotFound)
	}
	return be, c, nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.out, "ob %s (%s)\n", version, buildDate)
		},
	}
}

// ---- clients ----

func newClientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "clients", Short: "Manage clients"}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List clients, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			be, err := a.backend()
			if err != nil {
				return err
			}
			cs, err := be.ListClients(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(convert.ToAPIClients(cs, a.cfg.PublicURL))
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCREATED")
			for _, c := range cs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.CreatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a client and print its share link",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			be, err := a.backend()
			if err != nil {
				return err
			}
			c, err := be.CreateClient(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\n%s\n", c.ID, c.ShareURL(a.cfg.PublicURL))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := a.mustClient(cmd, args[0])
			if err != nil {
				return err
			}
			return a.printJSON(convert.ToAPIClient(*c, a.cfg.PublicURL))
		},
	}

	lookup := &cobra.Command{
		Use:   "lookup TOKEN",
		Short: "Find the client owning a share token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			be, err := a.backend()
			if err != nil {
				return err
			}
			c, err := be.GetClientByShareToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("share token: %w", errs.ErrNotFound)
			}
			return a.printJSON(convert.ToAPIClient(*c, a.cfg.PublicURL))
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a client and its form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			be, c, err := a.mustClient(cmd, args[0])
			if err != nil {
				return err
			}
			if !yes && !a.confirm(fmt.Sprintf("Slette %q og skjemaet?", c.Name)) {
				return errCanceled
			}
			if err := be.DeleteClient(cmd.Context(), c.ID); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "deleted")
			return nil
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	cmd.AddCommand(list, create, show, lookup, del)
	return cmd
}

func newShareCmd(a *app) *cobra.Command {
	var copyLink bool
	cmd := &cobra.Command{
		Use:   "share ID",
		Short: "Print the client's share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := a.mustClient(cmd, args[0])
			if err != nil {
				return err
			}
			link := c.ShareURL(a.cfg.PublicURL)
			fmt.Fprintln(a.out, link)
			if copyLink {
				a.copy(link)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyLink, "copy", false, "copy the link to the clipboard")
	return cmd
}

// copy reports the outcome on errOut; a failed copy never fails the command.
func (a *app) copy(text string) {
	m, err := a.copier.Copy(text)
	switch {
	case errors.Is(err, clipboard.ErrUnavailable):
		fmt.Fprintln(a.errOut, "clipboard unavailable; copy the text above manually")
	case err != nil:
		fmt.Fprintln(a.errOut, "copy failed:", err)
	case m == clipboard.MethodOSC52:
		fmt.Fprintln(a.errOut, "copied via terminal")
	default:
		fmt.Fprintln(a.errOut, "copied")
	}
}

// ---- form ----

func newFormCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "form", Short: "Read and edit a client's onboarding form"}

	var all, asJSON bool
	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print the stored answers in form order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			be, c, err := a.mustClient(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := be.GetFormData(cmd.Context(), c.ID)
			if err != nil {
				return err
			}
			data := model.FormData{}
			if f != nil {
				data = f.Data
			}
			if asJSON {
				return a.printJSON(data)
			}
			writeFields(a, data, all)
			return nil
		},
	}
	show.Flags().BoolVar(&all, "all", false, "include empty fields")
	show.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	set := &cobra.Command{
		Use:   "set ID KEY=VALUE...",
		Short: "Set fields and save at once; KEY= empties a field",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			be, c, err := a.mustClient(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := be.GetFormData(cmd.Context(), c.ID)
			if err != nil {
				return err
			}
			data := model.FormData{}
			if f != nil {
				data = f.Data.Clone()
			}
			for k, v := range edits {
				data[k] = v
			}
			if err := be.SaveFormData(cmd.Context(), c.ID, data); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved %d field(s)\n", len(edits))
			return nil
		},
	}

	var yes bool
	clr := &cobra.Command{
		Use:   "clear ID",
		Short: "Empty every field of the form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			be, c, err := a.mustClient(cmd, args[0])
			if err != nil {
				return err
			}
			if !yes && !a.confirm(fmt.Sprintf("Tømme hele skjemaet for %q?", c.Name)) {
				return errCanceled
			}
			if err := be.ClearFormData(cmd.Context(), c.ID); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "cleared")
			return nil
		},
	}
	clr.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")

	cmd.AddCommand(show, set, clr, newEditCmd(a))
	return cmd
}

// parseAssignments splits KEY=VALUE pairs and rejects keys outside the schema.
func parseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	var unknown []string
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: expected KEY=VALUE, got %q", errs.ErrInvalidArgument, arg)
		}
		if !schema.Known(k) {
			unknown = append(unknown, k)
			continue
		}
		out[k] = v
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnknownField, unknown)
	}
	return out, nil
}

func writeFields(a *app, data model.FormData, all bool) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, s := range schema.Sections {
		for _, f := range s.Fields {
			v := data[f.Key]
			if v == "" && !all {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Key, f.Label, strings.ReplaceAll(v, "\n", " / "))
		}
	}
	_ = tw.Flush()
}

// ---- export / checklist / fields ----

func newExportCmd(a *app) *cobra.Command {
	var (
		copyText bool
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Render the meeting form as plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			be, err := a.backend()
			if err != nil {
				return err
			}
			text, err := be.ExportFormData(cmd.Context(), id, a.now())
			if err != nil {
				return err
			}
			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(text), 0o600); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
			} else {
				fmt.Fprint(a.out, text)
			}
			if copyText {
				a.copy(text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyText, "copy", false, "copy the export to the clipboard")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func newChecklistCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checklist ID",
		Short: "Print the customer preparation checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := a.mustClient(cmd, args[0])
			if err != nil {
				return err
			}
			return checklist.WriteText(a.out, c.Name)
		},
	}
}

func newFieldsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List form field keys in form order",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, s := range schema.Sections {
				for _, f := range s.Fields {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Number, f.Key, f.Label)
				}
			}
			return tw.Flush()
		},
	}
}
