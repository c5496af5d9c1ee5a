// Command cli is the operator console for the gold ledger: it inspects
// balances and review queues, decides requests, runs migrations and mints
// tokens for support staff.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/initializer"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/migrations"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/app"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/request"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/middleware"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  balances <user_id>
  holdings <user_id>
  pending topups|withdrawals
  decide-topup <admin_id> <topup_id> approve|reject [note]
  decide-withdrawal <admin_id> <withdrawal_id> approve|decline [note]
  migrate up|down|version
  token <user_id> [user|admin] [jurisdiction]`

var (
	good  = color.New(color.FgGreen, color.Bold).SprintFunc()
	warn  = color.New(color.FgYellow).SprintFunc()
	fail  = color.New(color.FgRed, color.Bold).SprintFunc()
	label = color.New(color.FgHiBlack).SprintFunc()
	gold  = color.New(color.FgHiYellow).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, fail("error:"), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	switch cmd {
	case "token":
		return token(cfg, args)
	case "migrate":
		return migrate(cfg, args)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return err
	}
	defer deps.Close() //nolint:errcheck
	a := app.New(deps, cfg)

	switch cmd {
	case "balances":
		return balances(ctx, a, args)
	case "holdings":
		return holdings(ctx, a, args)
	case "pending":
		return pending(ctx, a, args)
	case "decide-topup":
		return decide(ctx, a, args, true)
	case "decide-withdrawal":
		return decide(ctx, a, args, false)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func parseID(args []string, i int, name string) (uuid.UUID, error) {
	if len(args) <= i {
		return uuid.Nil, fmt.Errorf("missing %s\n%s", name, usage)
	}
	id, err := uuid.Parse(args[i])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

func balances(ctx context.Context, a *app.App, args []string) error {
	userID, err := parseID(args, 0, "user_id")
	if err != nil {
		return err
	}
	b, err := a.Settlement.Balances(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", label("spendable:   "), good(b.Spendable.StringFixed(2)))
	fmt.Printf("%s %s\n", label("withdrawable:"), good(b.Withdrawable.StringFixed(2)))
	return nil
}

func holdings(ctx context.Context, a *app.App, args []string) error {
	userID, err := parseID(args, 0, "user_id")
	if err != nil {
		return err
	}
	h, err := a.Settlement.Holdings(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Printf("%s %sg (%s mature, %s locked)\n", label("gold:"),
		gold(h.Total.String()), good(h.Mature.String()), warn(h.Locked.String()))
	for _, l := range h.Lots {
		fmt.Printf("  %s  %sg of %sg @ %s  matures %s\n", label(l.ID.String()),
			gold(l.GramsRemaining.String()), l.GramsPurchased.String(),
			l.PricePerGramAtPurchase.StringFixed(2), l.MaturesAt.Format("2006-01-02"))
	}
	return nil
}

func pending(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing queue\n%s", usage)
	}
	switch args[0] {
	case "topups":
		list, err := a.Settlement.PendingTopups(ctx)
		if err != nil {
			return err
		}
		for _, t := range list {
			fmt.Printf("%s  %s  %s  %s\n", label(t.ID.String()), t.OwnerID,
				gold(t.Amount.StringFixed(2)), t.EvidenceRef)
		}
		fmt.Println(warn(fmt.Sprintf("%d pending top-up(s)", len(list))))
	case "withdrawals":
		list, err := a.Settlement.PendingWithdrawals(ctx)
		if err != nil {
			return err
		}
		for _, w := range list {
			fmt.Printf("%s  %s  %s  %s\n", label(w.ID.String()), w.OwnerID,
				gold(w.Amount.StringFixed(2)), w.BankDetails)
		}
		fmt.Println(warn(fmt.Sprintf("%d pending withdrawal(s)", len(list))))
	default:
		return fmt.Errorf("unknown queue %q", args[0])
	}
	return nil
}

func decide(ctx context.Context, a *app.App, args []string, topup bool) error {
	adminID, err := parseID(args, 0, "admin_id")
	if err != nil {
		return err
	}
	requestID, err := parseID(args, 1, "request_id")
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return fmt.Errorf("missing decision\n%s", usage)
	}
	decision := request.Decision(args[2])
	note := strings.Join(args[3:], " ")

	if topup {
		r, err := a.Settlement.DecideTopup(ctx, adminID, requestID, decision, note)
		if err != nil {
			return err
		}
		fmt.Printf("%s top-up %s is %s; spendable now %s\n", good("done:"),
			r.Record.ID, r.Record.Status, r.Balances.Spendable.StringFixed(2))
		return nil
	}
	r, err := a.Settlement.DecideWithdrawal(ctx, adminID, requestID, decision, note)
	if err != nil {
		return err
	}
	fmt.Printf("%s withdrawal %s is %s; withdrawable now %s\n", good("done:"),
		r.Record.ID, r.Record.Status, r.Balances.Withdrawable.StringFixed(2))
	return nil
}

func migrate(cfg *config.App, args []string) error {
	if cfg.DB.Driver == "sqlite" {
		return fmt.Errorf("migrations target postgres; sqlite schemas are created on connect")
	}
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}
	db, err := infra.NewDBConnection(&config.DB{Url: cfg.DB.Url, Driver: cfg.DB.Driver}, cfg.Env)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close() //nolint:errcheck
	}
	switch direction {
	case "up":
		err = migrations.Up(db)
	case "down":
		err = migrations.Down(db)
	case "version":
		v, dirty, verr := migrations.Version(db)
		if verr != nil {
			return verr
		}
		state := good("clean")
		if dirty {
			state = fail("dirty")
		}
		fmt.Printf("%s %d (%s)\n", label("schema version:"), v, state)
		return nil
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
	if err != nil {
		return err
	}
	fmt.Println(good("migrations applied:"), direction)
	return nil
}

func token(cfg *config.App, args []string) error {
	userID, err := parseID(args, 0, "user_id")
	if err != nil {
		return err
	}
	id := middleware.Identity{UserID: userID, Role: middleware.RoleUser}
	if len(args) > 1 {
		id.Role = args[1]
	}
	if id.Role != middleware.RoleUser && id.Role != middleware.RoleAdmin {
		return fmt.Errorf("role must be %s or %s", middleware.RoleUser, middleware.RoleAdmin)
	}
	if len(args) > 2 {
		id.Jurisdiction = strings.ToUpper(args[2])
	}
	t, err := middleware.IssueToken(cfg.Auth.Jwt, id)
	if err != nil {
		return err
	}
	fmt.Println(t)
	return nil
}
