package chain

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/bytedance/sonic"
)

// UnmarshalJSON implements custom JSON unmarshaling for HexOrInt
func (h *HexOrInt) UnmarshalJSON(data []byte) error {
	h.Value = new(big.Int)

	var num uint64
	if err := sonic.Unmarshal(data, &num); err == nil {
		h.Value.SetUint64(num)
		return nil
	}

	var str string
	if err := sonic.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("value must be a non-negative number or string, got: %s", string(data))
	}

	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		if _, ok := h.Value.SetString(str[2:], 16); !ok {
			return fmt.Errorf("invalid hex string: %s", str)
		}
		return nil
	}

	if _, ok := h.Value.SetString(str, 10); !ok {
		return fmt.Errorf("invalid number string: %s", str)
	}
	return nil
}

// MarshalJSON writes values that fit in a uint64 as numbers and larger ones as
// decimal strings.
func (h HexOrInt) MarshalJSON() ([]byte, error) {
	if h.Value == nil {
		return sonic.Marshal(0)
	}
	if h.Value.IsUint64() {
		return sonic.Marshal(h.Value.Uint64())
	}
	return sonic.Marshal(h.Value.String())
}

func (h HexOrInt) Uint64() uint64 {
	if h.Value == nil {
		return 0
	}
	return h.Value.Uint64()
}

func (h HexOrInt) String() string {
	if h.Value == nil {
		return "0"
	}
	return h.Value.String()
}

// UnmarshalJSON reads a [uid, weight] tuple.
func (e *WeightEntry) UnmarshalJSON(data []byte) error {
	var tuple []uint64
	if err := sonic.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("weight entry: %w", err)
	}

	if len(tuple) != 2 {
		return fmt.Errorf("expected tuple of length 2, got %d", len(tuple))
	}
	if tuple[0] > math.MaxUint16 || tuple[1] > math.MaxUint16 {
		return fmt.Errorf("weight entry %v does not fit in u16", tuple)
	}

	e.UID, e.Weight = uint16(tuple[0]), uint16(tuple[1])
	return nil
}

func (e WeightEntry) MarshalJSON() ([]byte, error) {
	return sonic.Marshal([2]uint16{e.UID, e.Weight})
}

// StakeRao converts TotalStake from TAO to rao, clamping to the u64 range. NaN
// becomes 0.
func (m SubnetMetagraph) StakeRao() []uint64 {
	out := make([]uint64, len(m.TotalStake))
	for i, s := range m.TotalStake {
		rao := math.Round(s * RaoPerTao)
		switch {
		case math.IsNaN(rao) || rao <= 0:
		case rao >= float64(math.MaxUint64):
			out[i] = math.MaxUint64
		default:
			out[i] = uint64(rao)
		}
	}
	return out
}

// KappaU16 returns kappa as the u16 proportion the chain stores. Kami reports it
// either normalized to [0, 1] or as the raw u16 value.
func (p SubnetHyperparams) KappaU16() uint16 {
	k := p.Kappa
	if math.IsNaN(k) {
		return 0
	}
	if k <= 1 {
		k *= math.MaxUint16
	}
	return uint16(math.Round(max(0, min(k, math.MaxUint16))))
}
