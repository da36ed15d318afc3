package basic

import (
	"fmt"
	"io"
	"strings"

	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/jpnorenam/fmio/cmd/cli/config"
	"github.com/jpnorenam/fmio/pkg/storage"
	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/jpnorenam/fmio/pkg/utils"
	"github.com/spf13/cobra"
)

const groupID = "basic"

func Group(title string) *cobra.Group {
	return &cobra.Group{
		ID:    groupID,
		Title: title,
	}
}

// configuredFrequency returns the frequency setting, 0 when unset
func configuredFrequency(ctx *common.Context) (types.Frequency, error) {
	v, err := config.GetString(ctx.Config, storage.KeyFrequency)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, nil
	}

	f, err := common.ParseFrequency(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s setting: %v", storage.KeyFrequency, err)
	}
	return f, nil
}

// configuredCycles returns the scan.cycles setting, at least 1
func configuredCycles(ctx *common.Context) (int, error) {
	v, err := config.GetValue(ctx.Config, storage.KeyScanCycles)
	if err != nil {
		return 0, err
	}
	cycles, err := utils.ToInt(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s setting: %v", storage.KeyScanCycles, err)
	}
	return max(cycles, 1), nil
}

// formatState writes the stereo and signal state as "stereo : signal",
// leaving out what the card cannot tell
func formatState(w io.Writer, stereo, signal *bool) {
	var parts []string
	if stereo != nil {
		parts = append(parts, pick(*stereo, "stereo", "mono"))
	}
	if signal != nil {
		parts = append(parts, pick(*signal, "signal", "noise"))
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, strings.Join(parts, " : "))
	}
}

// formatInfo writes a tuner snapshot in the text format
func formatInfo(w io.Writer, info *types.TunerInfo) {
	fmt.Fprintf(w, "Driver: %s\n", common.DescribeCard(info.Driver, uint32(info.Port)))
	if info.Frequency != nil {
		fmt.Fprintf(w, "Frequency: %.2f MHz\n", info.Frequency.MHz())
	}
	if info.Volume != nil {
		fmt.Fprintf(w, "Volume: %d\n", *info.Volume)
	}
	if info.Signal != nil {
		fmt.Fprintf(w, "Signal: %s\n", pick(*info.Signal, "on", "off"))
	}
	if info.Stereo != nil {
		fmt.Fprintf(w, "Stereo: %s\n", pick(*info.Stereo, "on", "off"))
	}
}

func pick(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
