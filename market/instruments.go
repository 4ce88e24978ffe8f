package market

// InstrumentMeta holds the precision the order endpoint expects.
type InstrumentMeta struct {
	Name          string
	PriceDigits   int32
	VolumeDigits  int32
	MinimumVolume float64
	// ContractSize is units of the base per 1.0 volume.
	ContractSize float64
}

var Instruments = map[string]InstrumentMeta{
	"XAUUSD": {
		Name:          "XAUUSD",
		PriceDigits:   2,
		VolumeDigits:  2,
		MinimumVolume: 0.01,
		ContractSize:  100,
	},
	"XAGUSD": {
		Name:          "XAGUSD",
		PriceDigits:   3,
		VolumeDigits:  2,
		MinimumVolume: 0.01,
		ContractSize:  5000,
	},
	"EURUSD": {
		Name:          "EURUSD",
		PriceDigits:   5,
		VolumeDigits:  2,
		MinimumVolume: 0.01,
		ContractSize:  100000,
	},
	"USDJPY": {
		Name:          "USDJPY",
		PriceDigits:   3,
		VolumeDigits:  2,
		MinimumVolume: 0.01,
		ContractSize:  100000,
	},
}

// Instrument returns the metadata for name, falling back to five price digits
// for symbols not in the table.
func Instrument(name string) InstrumentMeta {
	if m, ok := Instruments[name]; ok {
		return m
	}
	return InstrumentMeta{Name: name, PriceDigits: 5, VolumeDigits: 2, MinimumVolume: 0.01, ContractSize: 100000}
}
