package protocol

// Daily-totals decoding lives apart from the verified decode paths: the
// vendor never documented the totals reply, its shape was inferred from
// captures, and future firmware corrections should not disturb Decode.

// TotalsChannels is the number of doser channels a totals reply reports.
const TotalsChannels = 4

// DailyTotals holds the dispensed volume per doser channel in millilitres.
type DailyTotals [TotalsChannels]float64

// IsTotalsReply reports whether the response looks like a daily-totals reply:
// command family 91 with a totals mode and exactly four hi/lo parameter
// pairs.
func (r *Response) IsTotalsReply() bool {
	if r.CommandID != CmdQuery {
		return false
	}
	if r.Mode != ModeTotalsCurrent && r.Mode != ModeTotalsLegacy {
		return false
	}
	return len(r.Params) == TotalsChannels*2
}

// DailyTotals decodes the four hi/lo parameter pairs of a totals reply,
// each as hi*25.6 + lo*0.1 millilitres (the dose amount encoding in
// reverse). The second return is false when the response is not a totals
// reply.
func (r *Response) DailyTotals() (DailyTotals, bool) {
	var totals DailyTotals
	if !r.IsTotalsReply() {
		return totals, false
	}
	for ch := 0; ch < TotalsChannels; ch++ {
		hi, lo := r.Params[ch*2], r.Params[ch*2+1]
		// hi*25.6 in floats accumulates error; work in tenths and divide once.
		tenths := int(hi)*256 + int(lo)
		totals[ch] = float64(tenths) / 10
	}
	return totals, true
}
