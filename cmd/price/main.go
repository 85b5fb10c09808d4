// Command price prints the full Poisson market tables for one contest, either
// from two team qualities or from both teams' xG for and against.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"xg-value-bot/internal/analysis"
	"xg-value-bot/internal/poisson"
)

func main() {
	home := flag.Float64("home", 0, "home team quality (expected goals)")
	away := flag.Float64("away", 0, "away team quality (expected goals)")
	homeXG := flag.String("home-xg", "", "home xGF,xGA (used instead of -home/-away)")
	awayXG := flag.String("away-xg", "", "away xGF,xGA (used instead of -home/-away)")
	flag.Parse()

	rates := poisson.Rates{Home: *home, Away: *away}
	if *homeXG != "" || *awayXG != "" {
		hf, ha, err := parseXG(*homeXG)
		if err != nil {
			log.Fatalf("-home-xg: %v", err)
		}
		af, aa, err := parseXG(*awayXG)
		if err != nil {
			log.Fatalf("-away-xg: %v", err)
		}
		rates = poisson.Rates{
			Home: analysis.TeamQuality(hf, aa),
			Away: analysis.TeamQuality(af, ha),
		}
	}
	if rates.Home <= 0 || rates.Away <= 0 {
		log.Fatal("both team qualities must be positive; set -home/-away or -home-xg/-away-xg")
	}

	m := poisson.Price(rates)
	d := poisson.NewDistribution(rates)

	fmt.Printf("Team quality: %v - %v\n\n", rates.Home, rates.Away)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "goals\thome\taway\tsame")
	for k := 0; k <= poisson.MaxScore; k++ {
		fmt.Fprintf(w, "%d\t%v\t%v\t%v\n", k, d.Home[k], d.Away[k], d.Same[k])
	}
	w.Flush()

	fmt.Printf("\nMoneyline: %s\n\n", m.Moneyline)

	fmt.Fprintln(w, "total\tover\tunder")
	for _, t := range m.Totals.Quotes() {
		fmt.Fprintf(w, "%v\t%v\t%v\n", t.Line, t.Over, t.Under)
	}
	w.Flush()
	fmt.Println()

	fmt.Fprintln(w, "handicap\thome\taway")
	for _, h := range m.Handicaps.Quotes() {
		fmt.Fprintf(w, "%v\t%v\t%v\n", h.Line, h.Home, h.Away)
	}
	w.Flush()
}

func parseXG(s string) (xgFor, xgAgainst float64, err error) {
	forStr, againstStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("want xGF,xGA, got %q", s)
	}
	if xgFor, err = strconv.ParseFloat(strings.TrimSpace(forStr), 64); err != nil {
		return 0, 0, fmt.Errorf("xGF: %w", err)
	}
	if xgAgainst, err = strconv.ParseFloat(strings.TrimSpace(againstStr), 64); err != nil {
		return 0, 0, fmt.Errorf("xGA: %w", err)
	}
	return xgFor, xgAgainst, nil
}
