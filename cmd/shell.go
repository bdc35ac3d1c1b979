package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/analysis"
	"github.com/pable/rlstats/internal/dashboard"
	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/prefs"
	"github.com/pable/rlstats/internal/report"
	"github.com/pable/rlstats/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shell is the REPL's working state: one live session for the current view.
type shell struct {
	db      *storage.DB
	store   prefs.Store
	session *dashboard.Session
}

func runShell(cmd *cobra.Command, _ []string) error {
	db, store, closeAll, err := openStores()
	if err != nil {
		return err
	}
	defer closeAll()

	sh := &shell{db: db, store: store}
	ctx := context.Background()
	if err := sh.switchView(ctx, dashboard.Views[0].Name); err != nil {
		return err
	}

	cGreeting.Println("rlstats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print(sh.session.View().Name)
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "table", "t":
			sh.render()
		case "view":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: view <scoreline|goaldiff|games>")
				continue
			}
			if err := sh.switchView(ctx, args[0]); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			sh.render()
		case "set":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: set <key>=<value> [...]   (keys: ts ties short pl all sort dir)")
				continue
			}
			sh.set(ctx, args)
		case "reset":
			sh.apply(ctx, sh.session.View().Codec.Default())
		case "sort":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: sort <key>")
				continue
			}
			if err := sh.session.ToggleSort(analysis.SortKey(args[0])); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			sh.persist(ctx)
			sh.render()
		case "expand":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: expand <bucket-key>")
				continue
			}
			if _, err := sh.session.ToggleExpand(args[0]); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			sh.render()
		case "link":
			q := sh.session.Query().String()
			if q == "" {
				cMuted.Println("(default state)")
				continue
			}
			fmt.Printf("%s?%s\n", sh.session.View().Name, q)
		case "refresh":
			sh.refresh(ctx)
			sh.render()
		case "watch":
			interval := 10 * time.Second
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					cError.Fprintln(os.Stderr, "usage: watch [seconds]")
					continue
				}
				interval = time.Duration(n) * time.Second
			}
			sh.watch(ctx, interval)
		case "list":
			sh.list()
		case "show":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: show <id-prefix>")
				continue
			}
			if err := showGame(sh.db, args[0]); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"table", "re-render the current view"},
		{"view <scoreline|goaldiff|games>", "switch view (restores its saved state)"},
		{"set <key>=<value> [...]", "change filters: ts=3 ties=1 short=1 pl=r1,r2 all=1"},
		{"reset", "restore the view's default filters"},
		{"sort <key>", "sort by key; repeat to flip direction"},
		{"expand <key>", "toggle the games under a bucket (e.g. 3-0, +2)"},
		{"link", "print the encoded state of the view"},
		{"refresh", "reload games from the database"},
		{"watch [seconds]", "reload and re-render periodically until Ctrl-C"},
		{"list", "list recent games"},
		{"show <id-prefix>", "show one game"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-34s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (sh *shell) switchView(ctx context.Context, name string) error {
	v, err := dashboard.Lookup(name)
	if err != nil {
		return err
	}
	st, err := prefs.Restore(ctx, sh.store, v)
	if err != nil {
		cWarn.Fprintf(os.Stderr, "could not restore %s state: %v\n", v.Name, err)
	}
	if sh.session == nil {
		sh.session = dashboard.NewSession(v, st)
		sh.refresh(ctx)
		return nil
	}
	if sh.session.SetView(v, st) || !sh.session.Loaded() {
		sh.refresh(ctx)
	}
	return nil
}

// set merges key=value pairs into the current encoded state.
func (sh *shell) set(ctx context.Context, args []string) {
	v := sh.session.View()
	q := v.Codec.Encode(sh.session.State())
	for _, a := range args {
		k, val, ok := strings.Cut(a, "=")
		if !ok {
			cError.Fprintf(os.Stderr, "expected key=value, got %q\n", a)
			return
		}
		q[k] = val
	}
	sh.apply(ctx, v.Codec.Decode(q))
}

func (sh *shell) apply(ctx context.Context, st filter.State) {
	if sh.session.SetState(st) {
		sh.refresh(ctx)
	}
	sh.persist(ctx)
	sh.render()
}

func (sh *shell) persist(ctx context.Context) {
	if err := prefs.Persist(ctx, sh.store, sh.session.View(), sh.session.State()); err != nil {
		cWarn.Fprintf(os.Stderr, "could not save state: %v\n", err)
	}
}

func (sh *shell) refresh(ctx context.Context) {
	if _, err := sh.session.Refresh(ctx, sh.db); err != nil {
		cError.Fprintf(os.Stderr, "load failed: %v\n", err)
	}
}

func (sh *shell) render() {
	cMuted.Println(describeState(sh.session.State()))
	report.PrintTable(os.Stdout, sh.session.Table(), report.Options{Color: !color.NoColor})
	fmt.Println()
}

// watch refreshes on every tick. Fetches run concurrently; the session only
// applies the newest one, so a slow fetch never overwrites a newer result.
func (sh *shell) watch(ctx context.Context, interval time.Duration) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cMuted.Printf("refreshing every %s, Ctrl-C to stop\n", interval)
	applied := make(chan bool, 1)
	fetch := func() {
		go func() {
			ok, err := sh.session.Refresh(ctx, sh.db)
			if err != nil && ctx.Err() == nil {
				cError.Fprintf(os.Stderr, "load failed: %v\n", err)
			}
			select {
			case applied <- ok:
			case <-ctx.Done():
			}
		}()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	fetch()
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case <-ticker.C:
			fetch()
		case ok := <-applied:
			if ok {
				cHeader.Printf("--- %s ---\n", time.Now().Format("15:04:05"))
				sh.render()
			}
		}
	}
}

func (sh *shell) list() {
	games, err := sh.db.ListGames(20)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(games) == 0 {
		cMuted.Println("No games stored yet.")
		return
	}
	report.PrintGameList(os.Stdout, games)
}
