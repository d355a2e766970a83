package opponent

// Profile is the read-only snapshot of one (player, variant) row, with
// every percentage derived fresh — never cached — so it always reflects
// the current sample size, per spec.md §4.4.
type Profile struct {
	PlayerID     string
	Variant      Variant
	ScreenName   string
	HandsPlayed  int64
	Trusted      bool
	Archetype    Archetype
	VPIP         float64
	PFR          float64
	ThreeBetPct  float64
	CBetPct      float64
	FoldToCBet   float64
	WTSD         float64
	WSD          float64
	Aggression   float64 // (bets+raises)/calls
	AvgBetSizePot float64
}

func pct(count, opportunities int64) float64 {
	if opportunities == 0 {
		return 0
	}
	return float64(count) / float64(opportunities)
}

// Profile computes a fresh read-only snapshot for (playerID, variant). If
// the row has never been touched, it returns an untrusted, unknown-
// archetype zero profile rather than an error — an absent opponent is
// just maximally unseen, not invalid input.
func (s *Store) Profile(playerID string, variant Variant) Profile {
	r := s.rowFor(playerID, variant)
	r.mu.Lock()
	c := r.counters
	screen := r.screen
	r.mu.Unlock()

	trusted := c.HandsPlayed >= s.minTrustHands
	p := Profile{
		PlayerID:    playerID,
		Variant:     variant,
		ScreenName:  screen,
		HandsPlayed: c.HandsPlayed,
		Trusted:     trusted,
		VPIP:        pct(c.VPIPCount, c.HandsPlayed),
		PFR:         pct(c.PFRCount, c.HandsPlayed),
		ThreeBetPct: pct(c.ThreeBetCount, c.ThreeBetOpp),
		CBetPct:     pct(c.CBetCount, c.CBetOpp),
		FoldToCBet:  pct(c.FoldToCBetCount, c.FoldToCBetOpp),
		WTSD:        pct(c.WTSDCount, c.WTSDOpp),
		WSD:         pct(c.WSDCount, c.WTSDCount),
	}
	if c.TotalCalls > 0 {
		p.Aggression = float64(c.TotalBets+c.TotalRaises) / float64(c.TotalCalls)
	}
	if c.BetSizeCount > 0 {
		p.AvgBetSizePot = float64(c.BetSizeSum) / float64(c.BetSizeCount) / 100
	}

	if trusted {
		p.Archetype = classify(p.Variant, p.VPIP, p.PFR, p.Aggression)
	} else {
		p.Archetype = Unknown
	}
	return p
}

// variantThresholds returns the VPIP (loose, wide) boundary pair used to
// classify archetypes. PLO5 thresholds are tighter than PLO6 because
// 6-card hands connect with more boards, per spec.md §4.4.
func variantThresholds(v Variant) (looseVPIP, wideVPIP float64) {
	if v == PLO6 {
		return 0.40, 0.70
	}
	return 0.30, 0.55
}

// classify is a pure function of the trusted stat line. It never runs on
// an untrusted profile — the caller gates that.
func classify(v Variant, vpip, pfr, aggression float64) Archetype {
	loose, wide := variantThresholds(v)
	switch {
	case vpip >= wide && aggression < 1.0:
		return Whale
	case vpip >= wide:
		return Fish
	case vpip < loose*0.6 && pfr < loose*0.4:
		return Nit
	case vpip >= loose && pfr >= loose*0.75 && aggression >= 1.5:
		return Lag
	case vpip < loose && pfr >= vpip*0.7 && aggression >= 1.0:
		return Tag
	default:
		return Reg
	}
}
