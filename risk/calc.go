package risk

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// PlannedRisk is the account-currency loss if the stop is hit. units is
// volume times contract size.
func PlannedRisk(units, entry, stop, quoteToAccountRate float64) float64 {
	return units * abs(entry-stop) * quoteToAccountRate
}

// RR is reward over risk; zero when the stop equals the entry.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}
