package model

// Mode is the output discipline requested for a single turn. At most one of
// the non-chat modes may be active per call.
type Mode string

const (
	ModeChat          Mode = "chat"
	ModeShell         Mode = "shell"
	ModeDescribeShell Mode = "describe-shell"
	ModeCode          Mode = "code"
)

// Expect is the output variant a role is written for. It governs which modes
// may drive a session bound to that role and how the final answer is
// post-processed.
type Expect string

const (
	ExpectPlain       Expect = "plain"
	ExpectShell       Expect = "shell"
	ExpectCode        Expect = "code"
	ExpectDescription Expect = "description"
)

// ExpectForMode maps a turn mode to the output variant its default role uses.
func ExpectForMode(mode Mode) Expect {
	switch mode {
	case ModeShell:
		return ExpectShell
	case ModeDescribeShell:
		return ExpectDescription
	case ModeCode:
		return ExpectCode
	default:
		return ExpectPlain
	}
}

// Compatible reports whether a role with the given expect variant may serve
// the given mode. Plain roles are chat-only; shell/code/description roles are
// bound to their matching mode.
func Compatible(expect Expect, mode Mode) bool {
	return expect == ExpectForMode(mode)
}

// SelectMode validates the mutually exclusive mode flags and returns the
// resulting mode. Setting more than one flag fails with ErrModeConflict
// before any state transition or network activity.
func SelectMode(shell, describeShell, code bool) (Mode, error) {
	count := 0
	for _, set := range []bool{shell, describeShell, code} {
		if set {
			count++
		}
	}
	if count > 1 {
		return "", ErrModeConflict
	}
	switch {
	case shell:
		return ModeShell, nil
	case describeShell:
		return ModeDescribeShell, nil
	case code:
		return ModeCode, nil
	default:
		return ModeChat, nil
	}
}
