package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type prefsCmd struct{ env *Env }

func (*prefsCmd) Name() string           { return "prefs" }
func (*prefsCmd) Synopsis() string       { return "show the current theme and favorites" }
func (*prefsCmd) Usage() string          { return "prefs\n" }
func (*prefsCmd) SetFlags(*flag.FlagSet) {}

func (c *prefsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p := c.env.Prefs.Snapshot()
	fmt.Fprintf(c.env.Out, "theme: %s\nfavorites: %s\n", p.Theme, strings.Join(p.Favorites, ", "))
	return subcommands.ExitSuccess
}

type themeCmd struct{ env *Env }

func (*themeCmd) Name() string           { return "theme" }
func (*themeCmd) Synopsis() string       { return "toggle between dark and light theme" }
func (*themeCmd) Usage() string          { return "theme\n" }
func (*themeCmd) SetFlags(*flag.FlagSet) {}

func (c *themeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(c.env.Out, "theme: %s\n", c.env.Prefs.ToggleTheme(ctx))
	return subcommands.ExitSuccess
}

type favCmd struct{ env *Env }

func (*favCmd) Name() string           { return "fav" }
func (*favCmd) Synopsis() string       { return "add exchanges to favorites" }
func (*favCmd) Usage() string          { return "fav <exchange-id>...\n" }
func (*favCmd) SetFlags(*flag.FlagSet) {}

func (c *favCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(c.env.Err, "at least one exchange id is required")
		return subcommands.ExitUsageError
	}
	for _, id := range f.Args() {
		c.env.Prefs.AddFavorite(ctx, id)
	}
	fmt.Fprintf(c.env.Out, "favorites: %s\n", strings.Join(c.env.Prefs.Favorites(), ", "))
	return subcommands.ExitSuccess
}

type unfavCmd struct{ env *Env }

func (*unfavCmd) Name() string           { return "unfav" }
func (*unfavCmd) Synopsis() string       { return "remove exchanges from favorites" }
func (*unfavCmd) Usage() string          { return "unfav <exchange-id>...\n" }
func (*unfavCmd) SetFlags(*flag.FlagSet) {}

func (c *unfavCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(c.env.Err, "at least one exchange id is required")
		return subcommands.ExitUsageError
	}
	for _, id := range f.Args() {
		c.env.Prefs.RemoveFavorite(ctx, id)
	}
	fmt.Fprintf(c.env.Out, "favorites: %s\n", strings.Join(c.env.Prefs.Favorites(), ", "))
	return subcommands.ExitSuccess
}
