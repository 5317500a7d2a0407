package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"clubsheet/internal/archive"
	"clubsheet/internal/club"
	"clubsheet/internal/query"
	"clubsheet/internal/storage"
	"clubsheet/internal/table"
	"clubsheet/pkg/domain"
)

func (a *app) initCmd() *cobra.Command {
	var memberFee, officerFee, quarter string
	var days int64
	var year int
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Create the club tables and views and write the club settings",
		Args:    cobra.NoArgs,
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mf, err := parseMoney(memberFee)
			if err != nil {
				return err
			}
			of, err := parseMoney(officerFee)
			if err != nil {
				return err
			}
			current := domain.QuarterOf(time.Now())
			if quarter != "" {
				q, err := domain.ParseQuarterName(quarter)
				if err != nil {
					return err
				}
				if year == 0 {
					year = current.Year()
				}
				if current, err = domain.NewQuarter(q, year); err != nil {
					return err
				}
			}
			info := domain.ClubInfo{
				MemberFee:            domain.NewInt(mf),
				OfficerFee:           domain.NewInt(of),
				DaysUntilFeeRequired: domain.NewInt(days),
				CurrentQuarter:       current,
			}
			if err := a.svc.Initialize(cmd.Context(), info); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized for %s\n", current.DateString())
			return nil
		},
	}
	cmd.Flags().StringVar(&memberFee, "member-fee", "30", "quarterly dues for members")
	cmd.Flags().StringVar(&officerFee, "officer-fee", "15", "quarterly dues for officers")
	cmd.Flags().Int64Var(&days, "days-until-fee", 2, "days a member may attend before dues are required")
	cmd.Flags().StringVar(&quarter, "quarter", "", "current quarter name, default from today")
	cmd.Flags().IntVar(&year, "year", 0, "year of --quarter, default this year")
	return cmd
}

func (a *app) memberCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "member", Short: "Add, rename or remove members"}

	var email string
	var officer, performing, notifyPoll, receipt bool
	add := &cobra.Command{
		Use:     "add <name>",
		Short:   "Add a member",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.svc.AddMember(cmd.Context(), domain.Member{
				Name:        domain.Ptr(domain.NewString(args[0])),
				Email:       domain.Ptr(domain.NewString(email)),
				Officer:     domain.Ptr(domain.NewBool(officer)),
				Performing:  domain.Ptr(domain.NewBool(performing)),
				NotifyPoll:  domain.Ptr(domain.NewBool(notifyPoll)),
				SendReceipt: domain.Ptr(domain.NewBool(receipt)),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "member %s added with id %s\n", args[0], id)
			return nil
		},
	}
	add.Flags().StringVar(&email, "email", "", "email address")
	add.Flags().BoolVar(&officer, "officer", false, "member is an officer")
	add.Flags().BoolVar(&performing, "performing", false, "member is performing")
	add.Flags().BoolVar(&notifyPoll, "notify-poll", false, "send poll notifications")
	add.Flags().BoolVar(&receipt, "send-receipt", false, "email receipts for payments")

	rename := &cobra.Command{
		Use:     "rename <from> <to>",
		Short:   "Rename a member",
		Args:    cobra.ExactArgs(2),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.RenameMember(cmd.Context(), args[0], args[1])
		},
	}
	remove := &cobra.Command{
		Use:     "remove <name>...",
		Short:   "Remove members",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.RemoveMember(cmd.Context(), splitNames(args)...)
		},
	}
	merge := &cobra.Command{
		Use:     "merge <into> <alias>...",
		Short:   "Fold duplicate members into one",
		Args:    cobra.MinimumNArgs(2),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.MergeMember(cmd.Context(), splitNames(args[1:]), args[0])
		},
	}
	cmd.AddCommand(add, rename, remove, merge, a.statusCmd(), a.contactCmd())
	return cmd
}

// optionalBool returns nil unless the flag was set on the command line.
func optionalBool(cmd *cobra.Command, name string) (*bool, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalBools(cmd *cobra.Command, names ...string) ([]*bool, error) {
	out := make([]*bool, len(names))
	for i, n := range names {
		v, err := optionalBool(cmd, n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (a *app) statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status <name>",
		Short:   "Change whether a member is performing, active or an officer",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := optionalBools(cmd, "performing", "active", "officer")
			if err != nil {
				return err
			}
			return a.svc.UpdateMemberStatus(cmd.Context(), args[0], club.MemberStatus{
				Performing: flags[0],
				Active:     flags[1],
				Officer:    flags[2],
			})
		},
	}
	cmd.Flags().Bool("performing", false, "member is performing")
	cmd.Flags().Bool("active", false, "member is active")
	cmd.Flags().Bool("officer", false, "member is an officer")
	return cmd
}

func (a *app) contactCmd() *cobra.Command {
	var c club.ContactSettings
	cmd := &cobra.Command{
		Use:     "contact <name>",
		Short:   "Change a member's email or text address and notification choices",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := optionalBools(cmd, "notify-poll", "send-receipt")
			if err != nil {
				return err
			}
			c.NotifyPoll, c.SendReceipt = flags[0], flags[1]
			return a.svc.UpdateContactSettings(cmd.Context(), args[0], c)
		},
	}
	cmd.Flags().StringVar(&c.Email, "email", "", "email address")
	cmd.Flags().StringVar(&c.Phone, "phone", "", "mobile number, used with --carrier when no --email")
	cmd.Flags().StringVar(&c.Carrier, "carrier", "", "mobile carrier: "+strings.Join(club.Carriers(), ", "))
	cmd.Flags().Bool("notify-poll", false, "send poll notifications")
	cmd.Flags().Bool("send-receipt", false, "email receipts for payments")
	return cmd
}

// namesCmd builds the rename and merge commands for a name-only table.
func (a *app) namesCmd(use, label string) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: "Rename or merge " + label + "s"}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "rename <from> <to>",
			Short:   "Rename a " + label,
			Args:    cobra.ExactArgs(2),
			PreRunE: a.open,
			RunE: func(cmd *cobra.Command, args []string) error {
				if use == "paymenttype" {
					return a.svc.RenamePaymentType(cmd.Context(), args[0], args[1])
				}
				return a.svc.RenameRecipient(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:     "merge <into> <alias>...",
			Short:   "Fold duplicate " + label + "s into one",
			Args:    cobra.MinimumNArgs(2),
			PreRunE: a.open,
			RunE: func(cmd *cobra.Command, args []string) error {
				if use == "paymenttype" {
					return a.svc.MergePaymentType(cmd.Context(), splitNames(args[1:]), args[0])
				}
				return a.svc.MergeRecipient(cmd.Context(), splitNames(args[1:]), args[0])
			},
		},
	)
	return cmd
}

// transactionFlags binds the flags shared by income and expense add.
func transactionFlags(cmd *cobra.Command, amount, date *string, tx *club.Transaction) {
	cmd.Flags().StringVar(amount, "amount", "", "amount in dollars")
	cmd.Flags().StringVar(date, "date", "", "date as mm/dd/yyyy, default today")
	cmd.Flags().StringVar(&tx.Description, "description", "", "what the money was for")
	cmd.Flags().StringVar(&tx.PaymentType, "payment-type", "cash", "payment type, added if new")
	_ = cmd.MarkFlagRequired("amount")
}

func (a *app) addTransaction(kind string, add func(*cobra.Command, club.Transaction) (domain.IntValue, error)) *cobra.Command {
	var amount, date string
	var tx club.Transaction
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record an " + kind,
		Args:    cobra.NoArgs,
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if tx.AmountCents, err = parseMoney(amount); err != nil {
				return err
			}
			if tx.Date, err = parseDate(date); err != nil {
				return err
			}
			id, err := add(cmd, tx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s recorded\n", kind, id)
			return nil
		},
	}
	transactionFlags(cmd, &amount, &date, &tx)
	if kind == "expense" {
		cmd.Flags().StringVar(&tx.Recipient, "recipient", "", "who was paid, added if new")
		_ = cmd.MarkFlagRequired("recipient")
	}
	return cmd
}

func (a *app) incomeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "income", Short: "Record money received"}
	cmd.AddCommand(a.addTransaction("income", func(cmd *cobra.Command, tx club.Transaction) (domain.IntValue, error) {
		return a.svc.AddIncome(cmd.Context(), tx)
	}))
	return cmd
}

func (a *app) expenseCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "expense", Short: "Record money paid out"}
	cmd.AddCommand(a.addTransaction("expense", func(cmd *cobra.Command, tx club.Transaction) (domain.IntValue, error) {
		return a.svc.AddExpense(cmd.Context(), tx)
	}))
	return cmd
}

func (a *app) duesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "dues", Short: "Collect or check quarterly dues"}
	var paymentType string
	collect := &cobra.Command{
		Use:     "collect <name>...",
		Short:   "Record dues paid by members",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.CollectDues(cmd.Context(), splitNames(args), paymentType)
		},
	}
	collect.Flags().StringVar(&paymentType, "payment-type", "cash", "payment type, added if new")
	owing := &cobra.Command{
		Use:     "owing",
		Short:   "List members who must pay before attending again",
		Args:    cobra.NoArgs,
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := a.svc.DuesRequired(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.AddCommand(collect, owing)
	return cmd
}

func (a *app) iouCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "iou", Short: "Track money members owe"}
	var amount, description, paymentType string
	add := &cobra.Command{
		Use:     "add <name>...",
		Short:   "Add to members' balances",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := parseMoney(amount)
			if err != nil {
				return err
			}
			return a.svc.AddMemberIOU(cmd.Context(), splitNames(args), cents, description)
		},
	}
	add.Flags().StringVar(&amount, "amount", "", "amount in dollars")
	add.Flags().StringVar(&description, "description", "", "what is owed for")
	_ = add.MarkFlagRequired("amount")
	resolve := &cobra.Command{
		Use:     "resolve <name>...",
		Short:   "Record members paying off their balances",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.svc.ResolveMemberIOU(cmd.Context(), splitNames(args), paymentType)
		},
	}
	resolve.Flags().StringVar(&paymentType, "payment-type", "cash", "payment type, added if new")
	cmd.AddCommand(add, resolve)
	return cmd
}

func (a *app) attendanceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "attendance", Short: "Record attendance"}
	var date string
	var newMembers []string
	take := &cobra.Command{
		Use:     "take [name]...",
		Short:   "Record who was present",
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			id, err := a.svc.TakeAttendance(cmd.Context(), d, splitNames(args), splitNames(newMembers))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "attendance %s recorded\n", id)
			return nil
		},
	}
	take.Flags().StringVar(&date, "date", "", "date as mm/dd/yyyy, default today")
	take.Flags().StringSliceVar(&newMembers, "new", nil, "names of first-time attendees to add as members")
	cmd.AddCommand(take)
	return cmd
}

func (a *app) quarterCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "quarter", Short: "Manage the current quarter"}
	next := &cobra.Command{
		Use:     "next",
		Short:   "Advance to the next quarter and reset dues",
		Args:    cobra.NoArgs,
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := a.svc.NextQuarter(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "now in %s\n", q.DateString())
			return nil
		},
	}
	cmd.AddCommand(next)
	return cmd
}

func (a *app) transferCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "transfer", Short: "Reconcile money against bank statements"}
	var incomes, expenses []string
	create := &cobra.Command{
		Use:     "create",
		Short:   "Put incomes and expenses on a new statement",
		Args:    cobra.NoArgs,
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := parseIDs(incomes)
			if err != nil {
				return err
			}
			ex, err := parseIDs(expenses)
			if err != nil {
				return err
			}
			id, err := a.svc.TransferFunds(cmd.Context(), in, ex)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "statement %s created\n", id)
			return nil
		},
	}
	create.Flags().StringSliceVar(&incomes, "income", nil, "income ids")
	create.Flags().StringSliceVar(&expenses, "expense", nil, "expense ids")
	confirm := &cobra.Command{
		Use:     "confirm <statement-id>...",
		Short:   "Mark statements confirmed",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return a.svc.ConfirmTransfer(cmd.Context(), ids)
		},
	}
	cmd.AddCommand(create, confirm)
	return cmd
}

func (a *app) printRows(cmd *cobra.Command, header []string, rows [][]string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	return w.Flush()
}

func (a *app) tableCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "table", Short: "Query and sort raw tables"}
	sel := &cobra.Command{
		Use:     "select <table> [column]...",
		Short:   "Print columns of a table",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseTable(args[0])
			if err != nil {
				return err
			}
			g, err := table.Open(cmd.Context(), a.wb, t)
			if err != nil {
				return err
			}
			cols := args[1:]
			if len(cols) == 0 {
				cols = t.Header()
			}
			rows, err := table.SelectMulti(cmd.Context(), g, cols)
			if err != nil {
				return err
			}
			return a.printRows(cmd, cols, rows)
		},
	}
	where := &cobra.Command{
		Use:     "where <table> <expression>",
		Short:   `Print rows matching a filter such as 'row.amountOwed > 0 AND row.active'`,
		Args:    cobra.ExactArgs(2),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseTable(args[0])
			if err != nil {
				return err
			}
			rows, err := query.Filter(cmd.Context(), a.wb, t, args[1])
			if err != nil {
				return err
			}
			return a.printRows(cmd, t.Header(), rows)
		},
	}
	var desc bool
	order := &cobra.Command{
		Use:     "order <table> <column>...",
		Short:   "Sort a table in place",
		Args:    cobra.MinimumNArgs(2),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseTable(args[0])
			if err != nil {
				return err
			}
			g, err := table.Open(cmd.Context(), a.wb, t)
			if err != nil {
				return err
			}
			if err := table.OrderBy(cmd.Context(), g, args[1:], !desc); err != nil {
				return err
			}
			return a.svc.TableEdited(cmd.Context(), t.String())
		},
	}
	order.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.AddCommand(sel, where, order)
	return cmd
}

func (a *app) refreshCmd() *cobra.Command {
	var tables []string
	cmd := &cobra.Command{
		Use:     "refresh",
		Short:   "Rebuild views, all of them or those depending on --table",
		Args:    cobra.NoArgs,
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(tables) == 0 {
				return a.svc.RefreshAll(cmd.Context())
			}
			for _, t := range tables {
				if err := a.svc.TableEdited(cmd.Context(), t); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&tables, "table", nil, "edited tables")
	return cmd
}

func (a *app) archiveCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "archive", Short: "Snapshot the workbook to blob storage"}
	var prefix string
	cmd.PersistentFlags().StringVar(&prefix, "prefix", "clubsheet", "key prefix for snapshots")
	export := &cobra.Command{
		Use:     "export",
		Short:   "Write a snapshot of every sheet",
		Args:    cobra.NoArgs,
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := storage.OpenBlobStore(cmd.Context(), a.cfg.Blob)
			if err != nil {
				return err
			}
			id, err := archive.Export(cmd.Context(), a.wb, store, prefix)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	imp := &cobra.Command{
		Use:     "import <snapshot>",
		Short:   "Restore sheets from a snapshot and rebuild views",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.OpenBlobStore(cmd.Context(), a.cfg.Blob)
			if err != nil {
				return err
			}
			m, err := archive.Import(cmd.Context(), a.wb, store, prefix, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d sheets\n", len(m.Sheets))
			return a.svc.RefreshAll(cmd.Context())
		},
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List snapshot ids, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := storage.OpenBlobStore(cmd.Context(), a.cfg.Blob)
			if err != nil {
				return err
			}
			ids, err := archive.List(cmd.Context(), store, prefix)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	del := &cobra.Command{
		Use:   "delete <snapshot>",
		Short: "Delete a snapshot and all its sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.OpenBlobStore(cmd.Context(), a.cfg.Blob)
			if err != nil {
				return err
			}
			n, err := archive.Delete(cmd.Context(), store, prefix, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d blobs\n", n)
			return nil
		},
	}
	cmd.AddCommand(export, imp, list, del)
	return cmd
}
