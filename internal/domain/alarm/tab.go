package alarm

import "fmt"

// Tab selects which alarm panel is visible.
type Tab string

const (
	// TabActive shows the active alarm list. It is the default tab.
	TabActive Tab = "active"
	// TabHistory shows the history log and enables history polling.
	TabHistory Tab = "history"
)

// ParseTab converts operator input into a Tab.
func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabActive, TabHistory:
		return Tab(s), nil
	default:
		return "", fmt.Errorf("unknown tab %q", s)
	}
}
