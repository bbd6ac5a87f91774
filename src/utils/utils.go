package utils

import (
	"fmt"
	"strconv"
	"strings"

	"smartlift/src/types"
)

// FormatStatus renders one line per car, e.g. "car 0 | floor  4.25 | Up   | Closed".
func FormatStatus(statuses []types.Status) string {
	var b strings.Builder
	for i, s := range statuses {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "car %d | floor %5.2f | %-4s | %s", s.ID, s.CurrentFloor, s.Direction, s.DoorState)
		if s.Faulted {
			b.WriteString(" | FAULTED")
		}
	}
	return b.String()
}

// ParseRequest reads "from to [passengers]". Passengers default to 1.
// Range checks are left to the dispatcher.
func ParseRequest(line string) (types.Request, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return types.Request{}, fmt.Errorf("expected \"from to [passengers]\", got %q", line)
	}
	nums := []int{0, 0, 1}
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return types.Request{}, fmt.Errorf("parse %q: %w", field, err)
		}
		nums[i] = n
	}
	return types.NewRequest(nums[0], nums[1], nums[2]), nil
}
