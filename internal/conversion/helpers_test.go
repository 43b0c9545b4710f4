package conversion

import "github.com/nerrad567/pmc-config/internal/pmc"

type kv struct{ variable, value string }

func pairs(kvs ...kv) []*pmc.ConfigPair {
	out := make([]*pmc.ConfigPair, 0, len(kvs))
	for _, p := range kvs {
		out = append(out, pmc.NewConfigPair(p.variable, p.value))
	}
	return out
}

// newDevice builds a device with the given device-scope pairs and, when sdr
// is non-nil, an SDR section holding sdr.
func newDevice(device, sdr []kv) *pmc.Device {
	d := &pmc.Device{Name: "psu0_vin", Configs: pairs(device...)}
	if sdr != nil {
		d.Sdr = &pmc.Sdr{Name: "PSU0_VIN", Configs: pairs(sdr...)}
	}
	return d
}

func scaledDevice(mVal, rExp string) *pmc.Device {
	return newDevice([]kv{{VarMVal, mVal}, {VarRExp, rExp}}, []kv{{UpperCritical, "0x64"}})
}
