// Package flags provides helpers for reading persistent root flags from
// subcommands.
package flags

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rosa-labs/chainsail/pkg/ui/timer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// TimingFlagName is the persistent flag enabling per-stage timing output.
const TimingFlagName = "timing"

// ErrNilCommand is returned when a nil command is passed to a flag lookup.
var ErrNilCommand = errors.New("command is nil")

// ErrFlagNotFound is returned when the requested flag is not registered on the
// command or any of its parents.
var ErrFlagNotFound = errors.New("flag not found")

// IsTimingEnabled reports whether the timing flag is set on the command, its
// own persistent flags, or a parent's persistent flags.
func IsTimingEnabled(cmd *cobra.Command) (bool, error) {
	if cmd == nil {
		return false, ErrNilCommand
	}

	flag := lookupTimingFlag(cmd)
	if flag == nil {
		return false, fmt.Errorf("%w: %s", ErrFlagNotFound, TimingFlagName)
	}

	enabled, err := strconv.ParseBool(flag.Value.String())
	if err != nil {
		return false, fmt.Errorf("parse %s flag: %w", TimingFlagName, err)
	}

	return enabled, nil
}

// MaybeTimer returns the timer when timing output is enabled for the command,
// and nil otherwise. Notify helpers skip the timing block for a nil timer.
func MaybeTimer(cmd *cobra.Command, tmr timer.Timer) timer.Timer {
	if cmd == nil || tmr == nil {
		return nil
	}

	enabled, err := IsTimingEnabled(cmd)
	if err != nil || !enabled {
		return nil
	}

	return tmr
}

func lookupTimingFlag(cmd *cobra.Command) *pflag.Flag {
	if flag := cmd.Flags().Lookup(TimingFlagName); flag != nil {
		return flag
	}

	if flag := cmd.PersistentFlags().Lookup(TimingFlagName); flag != nil {
		return flag
	}

	return cmd.InheritedFlags().Lookup(TimingFlagName)
}
