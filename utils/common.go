package utils

import (
	"fmt"
	"time"
)

// TimeTrack logs the wall-clock duration since start under the given label.
// Used to report the reach task's total wall-clock time (engine or CEGAR
// loop) when -metrics is set.
func TimeTrack(start time.Time, name string) {
	fmt.Printf("%s took %s\n", name, time.Since(start))
}
