package analysis

import "xg-value-bot/internal/mathutil"

// xG regression applied to both inputs before they are combined.
const (
	xgWeight = 0.75
	xgBase   = 0.05
)

// TeamQuality turns a side's expected goals for and its opponent's expected
// goals against into the side's scoring rate for the contest:
//
//	(0.75·xGF + 0.05) · (0.75·xGA_opp + 0.05) − 1
//
// rounded to three places. Very weak inputs can produce a negative quality;
// the Poisson engine treats that as a rate of zero.
func TeamQuality(xgFor, xgAgainstOpponent float64) float64 {
	q := (xgWeight*xgFor+xgBase)*(xgWeight*xgAgainstOpponent+xgBase) - 1
	return mathutil.Round3(q)
}
