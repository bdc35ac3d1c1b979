package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/dashboard"
)

var linkFlags filterFlags

var linkCmd = &cobra.Command{
	Use:   "link <view>",
	Short: "Print the canonical encoded state of a view",
	Long: `Print the compact query form of a view's filter and sort state. Only values
that differ from the defaults appear, so the default state prints an empty
query. Without flags the saved state is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runLink,
}

func init() {
	linkFlags.register(linkCmd)
}

func runLink(cmd *cobra.Command, args []string) error {
	v, err := dashboard.Lookup(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, store, closeAll, err := openStores()
	if err != nil {
		return err
	}
	defer closeAll()

	st, _, err := linkFlags.resolve(ctx, cmd, v, store)
	if err != nil {
		return err
	}
	q := v.Codec.Encode(st).String()
	if q == "" {
		fmt.Fprintf(os.Stdout, "%s\n", v.Name)
		return nil
	}
	fmt.Fprintf(os.Stdout, "%s?%s\n", v.Name, q)
	return nil
}
