package game

import "fmt"

// Status classifies the outcome of a user action.
type Status int

const (
	StatusOK Status = iota
	StatusRejected
	StatusCooldown
	StatusInsufficientFunds
	StatusNotFound
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRejected:
		return "rejected"
	case StatusCooldown:
		return "cooldown"
	case StatusInsufficientFunds:
		return "insufficient_funds"
	case StatusNotFound:
		return "not_found"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Reply is the user-facing result of an action. Errors are reserved for store
// failures; everything a user can cause is a Reply.
type Reply struct {
	Status Status
	Text   string
}

func (r Reply) String() string { return r.Text }

func OK(format string, args ...interface{}) Reply {
	return Reply{Status: StatusOK, Text: fmt.Sprintf(format, args...)}
}

func Rejected(format string, args ...interface{}) Reply {
	return Reply{Status: StatusRejected, Text: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) Reply {
	return Reply{Status: StatusNotFound, Text: fmt.Sprintf(format, args...)}
}

func Insufficient(format string, args ...interface{}) Reply {
	return Reply{Status: StatusInsufficientFunds, Text: fmt.Sprintf(format, args...)}
}

// Cooldown tells the user how long to wait.
func Cooldown(user string, seconds int) Reply {
	return Reply{Status: StatusCooldown, Text: fmt.Sprintf("@%s slow down! Try again in %ds.", user, seconds)}
}

// Disabled is returned when a feature flag is off.
func Disabled(feature string) Reply {
	return Reply{Status: StatusDisabled, Text: fmt.Sprintf("%s is currently disabled.", feature)}
}

func streakSuffix(count int, bonus int64) string {
	return fmt.Sprintf(" 🔥 %d win streak! +%d bonus", count, bonus)
}
