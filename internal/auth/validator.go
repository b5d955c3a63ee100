package auth

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Credential format limits
const (
	UsernameMinLength = 2
	UsernameMaxLength = 50
	PasswordMinLength = 8
	PasswordMaxLength = 50

	// Passwords may not contain this many consecutive ascending digits
	DigitRunLength = 4
	// Minimum number of characters that are neither alphanumeric nor whitespace
	MinSpecialChars = 2
)

// Rule identifies a single credential check.
type Rule string

const (
	RuleUsernameLength       Rule = "username-length"
	RuleUsernameCharset      Rule = "username-charset"
	RuleUsernameAvailability Rule = "username-availability"
	RulePasswordLength       Rule = "password-length"
	RulePasswordDigitRun     Rule = "password-digit-run"
	RulePasswordSpecialChars Rule = "password-special-chars"
	RulePasswordConfirmation Rule = "password-confirmation"
)

var ruleOrder = []Rule{
	RuleUsernameLength,
	RuleUsernameCharset,
	RuleUsernameAvailability,
	RulePasswordLength,
	RulePasswordDigitRun,
	RulePasswordSpecialChars,
	RulePasswordConfirmation,
}

var ruleMessages = map[Rule]string{
	RuleUsernameLength:       fmt.Sprintf("Username must be between %d and %d characters", UsernameMinLength, UsernameMaxLength),
	RuleUsernameCharset:      "Username must not contain any special characters",
	RuleUsernameAvailability: "Username is already taken",
	RulePasswordLength:       fmt.Sprintf("Password must be between %d and %d characters", PasswordMinLength, PasswordMaxLength),
	RulePasswordDigitRun:     fmt.Sprintf("Password must not contain more than %d consecutive numbers", DigitRunLength-1),
	RulePasswordSpecialChars: fmt.Sprintf("Password must contain at least %d special characters", MinSpecialChars),
	RulePasswordConfirmation: "Passwords do not match",
}

// Message returns the text shown to the user when r fails.
func (r Rule) Message() string {
	return ruleMessages[r]
}

// Result collects the rules that failed. The zero value is a passing result.
type Result struct {
	failed map[Rule]bool
}

func (r *Result) fail(rule Rule) {
	if r.failed == nil {
		r.failed = make(map[Rule]bool)
	}
	r.failed[rule] = true
}

// Merge adds the failures of other to r.
func (r *Result) Merge(other Result) {
	for rule := range other.failed {
		r.fail(rule)
	}
}

// OK reports whether every rule passed.
func (r Result) OK() bool {
	return len(r.failed) == 0
}

// Has reports whether rule failed.
func (r Result) Has(rule Rule) bool {
	return r.failed[rule]
}

// Failed lists the failed rules in a stable order.
func (r Result) Failed() []Rule {
	var out []Rule
	for _, rule := range ruleOrder {
		if r.failed[rule] {
			out = append(out, rule)
		}
	}
	return out
}

// Messages returns one user-facing message per failed rule.
func (r Result) Messages() []string {
	var out []string
	for _, rule := range r.Failed() {
		out = append(out, rule.Message())
	}
	return out
}

// AvailabilityChecker reports whether a username is already registered.
type AvailabilityChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// ValidateUsername checks the username format only.
func ValidateUsername(username string) Result {
	var res Result
	if n := utf8.RuneCountInString(username); n < UsernameMinLength || n > UsernameMaxLength {
		res.fail(RuleUsernameLength)
	}
	if countSpecial(username) > 0 {
		res.fail(RuleUsernameCharset)
	}
	return res
}

// ValidatePassword checks the password format.
func ValidatePassword(password string) Result {
	var res Result
	if n := utf8.RuneCountInString(password); n < PasswordMinLength || n > PasswordMaxLength {
		res.fail(RulePasswordLength)
	}
	if hasAscendingDigitRun(password, DigitRunLength) {
		res.fail(RulePasswordDigitRun)
	}
	if countSpecial(password) < MinSpecialChars {
		res.fail(RulePasswordSpecialChars)
	}
	return res
}

// ValidateConfirmation checks that the repeated password matches exactly.
func ValidateConfirmation(password, confirm string) Result {
	var res Result
	if password != confirm {
		res.fail(RulePasswordConfirmation)
	}
	return res
}

// ValidateSignUp runs every sign-up rule. Availability is only looked up
// when the username format is valid; a lookup failure is returned as error.
func ValidateSignUp(ctx context.Context, checker AvailabilityChecker, username, password, confirm string) (Result, error) {
	res := ValidateUsername(username)
	if res.OK() && checker != nil {
		exists, err := checker.UsernameExists(ctx, username)
		if err != nil {
			return res, fmt.Errorf("failed to check username availability: %w", err)
		}
		if exists {
			res.fail(RuleUsernameAvailability)
		}
	}
	res.Merge(ValidatePassword(password))
	res.Merge(ValidateConfirmation(password, confirm))
	return res, nil
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsSpace(r)
}

func countSpecial(s string) int {
	n := 0
	for _, r := range s {
		if isSpecial(r) {
			n++
		}
	}
	return n
}

// hasAscendingDigitRun reports whether s contains runLen consecutive ASCII
// digits each one greater than the previous, e.g. "1234".
func hasAscendingDigitRun(s string, runLen int) bool {
	run := 0
	var prev rune
	for _, r := range s {
		switch {
		case r < '0' || r > '9':
			run = 0
		case run > 0 && r == prev+1:
			run++
		default:
			run = 1
		}
		if run >= runLen {
			return true
		}
		prev = r
	}
	return false
}
