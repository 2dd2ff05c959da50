package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/listing"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/pkg/pricefmt"
	"github.com/google/subcommands"
)

type coinsCmd struct {
	env      *Env
	currency string
	search   string
	sort     string
	limit    int
}

func (*coinsCmd) Name() string     { return "coins" }
func (*coinsCmd) Synopsis() string { return "list coins by market cap" }
func (*coinsCmd) Usage() string {
	return `coins [-currency usd] [-search <term>] [-sort <key>] [-limit N]

  Lists coins from the market listing.
  Sort keys: market_cap_asc (default), price_asc, price_desc, change_asc, change_desc.
`
}

func (c *coinsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "usd", "quote currency")
	f.StringVar(&c.search, "search", "", "case-insensitive name filter")
	f.StringVar(&c.sort, "sort", "", "sort key")
	f.IntVar(&c.limit, "limit", 20, "max rows, 0 for all")
}

func (c *coinsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	coins, err := c.env.Dash.Coins(ctx, c.currency, listing.CoinQuery{
		Search: c.search,
		Sort:   listing.ParseCoinSort(c.sort),
	})
	if err != nil {
		return c.env.failf("Error loading coins: %v", err)
	}

	w := tabwriter.NewWriter(c.env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCOIN\tSYMBOL\tPRICE\t24H")
	for i, coin := range coins {
		if c.limit > 0 && i == c.limit {
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rank(coin.MarketCapRank),
			coin.Name,
			strings.ToUpper(coin.Symbol),
			pricefmt.Price(coin.CurrentPrice, c.currency),
			pricefmt.Percent(coin.PriceChangePct24h),
		)
	}
	if err := w.Flush(); err != nil {
		return c.env.failf("Error writing output: %v", err)
	}
	return subcommands.ExitSuccess
}

type exchangesCmd struct {
	env       *Env
	search    string
	sort      string
	favorites bool
}

func (*exchangesCmd) Name() string     { return "exchanges" }
func (*exchangesCmd) Synopsis() string { return "list exchanges by trust score" }
func (*exchangesCmd) Usage() string {
	return `exchanges [-search <term>] [-sort <key>] [-favorites]

  Lists exchanges. Favorites are marked with '*'.
  Sort keys: rank_asc (default), rank_desc, name_asc, name_desc.
`
}

func (c *exchangesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "case-insensitive name filter")
	f.StringVar(&c.sort, "sort", "", "sort key")
	f.BoolVar(&c.favorites, "favorites", false, "show favorites only")
}

func (c *exchangesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	items, err := c.env.Dash.Exchanges(ctx, c.env.Prefs.Favorites(), listing.ExchangeQuery{
		Search:        c.search,
		Sort:          listing.ParseExchangeSort(c.sort),
		FavoritesOnly: c.favorites,
	})
	if err != nil {
		return c.env.failf("Error loading exchanges: %v", err)
	}

	w := tabwriter.NewWriter(c.env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FAV\tRANK\tEXCHANGE\tID\tVOLUME 24H (BTC)")
	for _, e := range items {
		fav := ""
		if e.Favorite {
			fav = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", fav, rank(e.TrustScoreRank), e.Name, e.ID, e.TradeVolume24hBTC.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return c.env.failf("Error writing output: %v", err)
	}
	return subcommands.ExitSuccess
}

type chartCmd struct {
	env      *Env
	currency string
	days     string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "print the price history of a coin" }
func (*chartCmd) Usage() string {
	return `chart [-currency usd] [-days 1|30|365] <coin-id>

  Prints one line per price point, then low, high and change over the window.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "usd", "quote currency")
	f.StringVar(&c.days, "days", "1", "window in days: 1, 30 or 365")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(c.env.Err, "exactly one coin id is required")
		return subcommands.ExitUsageError
	}
	days, err := domain.ParseWindow(c.days)
	if err != nil {
		fmt.Fprintf(c.env.Err, "invalid -days %q: use 1, 30 or 365\n", c.days)
		return subcommands.ExitUsageError
	}

	ch, err := c.env.Dash.Chart(ctx, f.Arg(0), c.currency, days)
	if err != nil {
		return c.env.failf("Error loading chart: %v", err)
	}
	w := tabwriter.NewWriter(c.env.Out, 0, 0, 2, ' ', 0)
	for i, p := range ch.Points {
		fmt.Fprintf(w, "%s\t%s\n", ch.Labels[i], pricefmt.Price(p.Price, ch.Currency))
	}
	if len(ch.Points) > 0 {
		fmt.Fprintf(w, "low\t%s\nhigh\t%s\nchange\t%s\n",
			pricefmt.Price(ch.Stats.Low, ch.Currency),
			pricefmt.Price(ch.Stats.High, ch.Currency),
			pricefmt.Percent(ch.Stats.ChangePct),
		)
	}
	if err := w.Flush(); err != nil {
		return c.env.failf("Error writing output: %v", err)
	}
	return subcommands.ExitSuccess
}

func rank(r *int) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprint(*r)
}
