package calc

// session price in euro by sessions per week
var sessionPrices = map[int]int{
	1: 50,
	2: 45,
	3: 42,
	4: 41,
	5: 40,
}

const maxFrequencySessionPrice = 40

type quoteKey struct {
	duration  int
	frequency int
}

// package prices that replace the per-session total
var packagePrices = map[quoteKey]int{
	{duration: 4, frequency: 3}:  500,
	{duration: 12, frequency: 3}: 1500,
	{duration: 4, frequency: 5}:  800,
	{duration: 12, frequency: 5}: 2400,
}

type PriceQuote struct {
	// Duration in weeks
	Duration        int  `json:"duration"`
	Frequency       int  `json:"frequency"`
	SessionPrice    int  `json:"sessionPrice"`
	TotalSessions   int  `json:"totalSessions"`
	TotalPrice      int  `json:"totalPrice"`
	PackageOverride bool `json:"packageOverride"`
}

func SessionPrice(frequency int) int {
	if frequency < 1 {
		return 0
	}
	if price, ok := sessionPrices[frequency]; ok {
		return price
	}
	return maxFrequencySessionPrice
}

// Quote prices a coaching package of duration weeks with frequency sessions per week.
func Quote(duration, frequency int) PriceQuote {
	quote := PriceQuote{
		Duration:  duration,
		Frequency: frequency,
	}
	if duration < 1 || frequency < 1 {
		return quote
	}

	quote.SessionPrice = SessionPrice(frequency)
	quote.TotalSessions = duration * frequency
	if total, ok := packagePrices[quoteKey{duration: duration, frequency: frequency}]; ok {
		quote.TotalPrice = total
		quote.PackageOverride = true
		return quote
	}
	quote.TotalPrice = quote.SessionPrice * quote.TotalSessions
	return quote
}
