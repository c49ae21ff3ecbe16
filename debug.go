package orchard

// debugMaxClaimChecks is the number of leaf-point/fruit distance checks per
// fruit spawn above which a warning is logged once.
const debugMaxClaimChecks = 1_000_000

// debugStats logs a Stats line every DebugEvery frames when Config.Debug is
// set.
func (g *Game) debugStats() {
	if !g.cfg.Debug || g.cfg.DebugEvery <= 0 || g.frames%uint64(g.cfg.DebugEvery) != 0 {
		return
	}
	st := g.seq.Stats()
	g.log.Debug("stats",
		"frame", g.frames,
		"state", st.State,
		"trees", st.Trees,
		"revealed", st.Revealed,
		"pending", st.Pending,
		"leaf_points", st.LeafPoints,
		"fruits", st.Fruits,
		"grown", st.GrownFruits,
		"butterflies", st.Butterflies,
		"fruit_interval", g.seq.FruitInterval(),
	)
	g.debugCheckClaims(st)
}

// debugCheckClaims warns once when free-leaf filtering grows expensive.
func (g *Game) debugCheckClaims(st Stats) {
	if g.claimWarned {
		return
	}
	if checks := st.LeafPoints * st.Fruits; checks > debugMaxClaimChecks {
		g.claimWarned = true
		g.log.Warn("fruit placement checks exceed threshold",
			"leaf_points", st.LeafPoints, "fruits", st.Fruits, "threshold", debugMaxClaimChecks)
	}
}
