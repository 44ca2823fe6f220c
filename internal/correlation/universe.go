package correlation

import (
	"strings"

	"mining-intel/internal/domain"
)

// Universe lists the instruments and commodity proxies a correlation run
// may query. Immutable after construction.
type Universe struct {
	// Instruments maps symbol to issuer name.
	Instruments map[string]string
	// Commodities maps commodity name (as produced by the classifier's
	// lexicon, e.g. "copper") to the proxy symbol its series trades under.
	Commodities map[string]string
}

// DefaultUniverse returns the Canadian mining instrument universe and the
// commodity ETF proxy mapping.
func DefaultUniverse() *Universe {
	return &Universe{
		Instruments: map[string]string{
			"ABX.TO":    "Barrick Gold Corporation",
			"AEM.TO":    "Agnico Eagle Mines Limited",
			"K.TO":      "Kinross Gold Corporation",
			"FM.TO":     "First Quantum Minerals Ltd.",
			"LUN.TO":    "Lundin Mining Corporation",
			"HBM.TO":    "Hudbay Minerals Inc.",
			"TECK-B.TO": "Teck Resources Limited",
			"ELD.TO":    "Eldorado Gold Corporation",
			"CG.TO":     "Centerra Gold Inc.",
			"IMG.TO":    "IAMGOLD Corporation",
			"KL.TO":     "Kirkland Lake Gold Ltd.",
			"YRI.TO":    "Yamana Gold Inc.",
			"BTO.TO":    "B2Gold Corp.",
			"TXG.TO":    "Torex Gold Resources Inc.",
			"SEA.TO":    "Seabridge Gold Inc.",
			"AGI.TO":    "Alamos Gold Inc.",
			"FNV.TO":    "Franco-Nevada Corporation",
			"WPM.TO":    "Wheaton Precious Metals Corp.",
			"SIL.TO":    "SilverCrest Metals Inc.",
			"PAAS.TO":   "Pan American Silver Corp.",
			"SSL.TO":    "Sandstorm Gold Ltd.",
			"OR.TO":     "Osisko Gold Royalties Ltd",
			"MAG.TO":    "MAG Silver Corp.",
			"CXB.TO":    "Calibre Mining Corp.",
			"EDV.TO":    "Endeavour Mining Corporation",
			"MINE.TO":   "Magna Mining Inc.",
		},
		Commodities: map[string]string{
			"gold":        "GLD",
			"silver":      "SLV",
			"copper":      "CPER",
			"platinum":    "PPLT",
			"uranium":     "URA",
			"oil":         "USO",
			"natural_gas": "UNG",
		},
	}
}

// copperFocused and goldFocused narrow the instrument set when an event
// names a specific commodity.
var copperFocused = []string{"FM.TO", "LUN.TO", "HBM.TO", "TECK-B.TO"}

var goldFocused = []string{"ABX.TO", "AEM.TO", "K.TO", "KL.TO"}

// selectInstruments picks which instruments to query for an event.
// An event that names issuers queries only those; otherwise commodity
// mentions bias the set toward the relevant producers.
func (u *Universe) selectInstruments(e *domain.Event) map[string]string {
	if len(e.Organizations) > 0 {
		matched := make(map[string]string)
		for symbol, name := range u.Instruments {
			lower := strings.ToLower(name)
			for _, org := range e.Organizations {
				if strings.Contains(lower, strings.ToLower(org)) {
					matched[symbol] = name
					break
				}
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}

	selected := make(map[string]string, len(u.Instruments))
	for symbol, name := range u.Instruments {
		selected[symbol] = name
	}
	if _, ok := e.CommodityImpact["copper"]; ok {
		for _, symbol := range copperFocused {
			if name, exists := u.Instruments[symbol]; exists {
				selected[symbol] = name
			}
		}
	}
	if _, ok := e.CommodityImpact["gold"]; ok {
		for _, symbol := range goldFocused {
			if name, exists := u.Instruments[symbol]; exists {
				selected[symbol] = name
			}
		}
	}
	return selected
}

// selectCommodities picks which commodities to query for an event.
// Commodities the classifier flagged take priority; policy events add the
// safe havens.
func (u *Universe) selectCommodities(e *domain.Event) map[string]string {
	if len(e.CommodityImpact) > 0 {
		prioritized := make(map[string]string)
		for commodity := range e.CommodityImpact {
			if symbol, ok := u.Commodities[commodity]; ok {
				prioritized[commodity] = symbol
			}
		}
		if len(prioritized) > 0 {
			if e.EventType == domain.EventTypePolicy {
				if symbol, ok := u.Commodities["gold"]; ok {
					prioritized["gold"] = symbol
				}
				if symbol, ok := u.Commodities["silver"]; ok {
					prioritized["silver"] = symbol
				}
			}
			return prioritized
		}
	}

	selected := make(map[string]string, len(u.Commodities))
	for commodity, symbol := range u.Commodities {
		selected[commodity] = symbol
	}
	return selected
}
