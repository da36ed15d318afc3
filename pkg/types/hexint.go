package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// HexInt is an integer that is written as 0x-prefixed hex in yaml and json,
// and accepts either hex strings or plain numbers when read.
type HexInt uint32

func (h HexInt) String() string {
	return fmt.Sprintf("0x%04x", uint32(h))
}

func ParseHexInt(s string) (HexInt, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex value %q: %v", s, err)
	}
	return HexInt(v), nil
}

func (h HexInt) MarshalYAML() (interface{}, error) {
	return h.String(), nil
}

func (h *HexInt) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseHexInt(value.Value)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func (h HexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *HexInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// plain number
		var n uint32
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid hex value %s", data)
		}
		*h = HexInt(n)
		return nil
	}
	v, err := ParseHexInt(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}
