package command

import (
	"strconv"
	"strings"
)

// parseLine maps one completed command line to an Action. Both input
// strategies submit their lines here.
func parseLine(line string) Action {
	line = strings.TrimSpace(line)

	switch line {
	case "":
		return Action{Kind: KindScrollDown}
	case "u":
		return Action{Kind: KindHalfUp}
	case "d":
		return Action{Kind: KindHalfDown}
	case "q":
		return Action{Kind: KindQuit}
	case "?":
		return Action{Kind: KindHelp}
	case "t", "toc", "table":
		return Action{Kind: KindToggleTOC}
	case "b", "back":
		return Action{Kind: KindBack}
	case "f", "forward":
		return Action{Kind: KindForward}
	case "gg":
		return Action{Kind: KindTop}
	case "G":
		return Action{Kind: KindBottom}
	case "e":
		return Action{Kind: KindEditAddress}
	case "home":
		return Action{Kind: KindHome}
	case "reload", "refresh":
		return Action{Kind: KindReload}
	}

	if strings.HasPrefix("history", line) {
		return Action{Kind: KindHistory}
	}

	if isDigits(line) {
		n, err := strconv.Atoi(line)
		if err == nil {
			return Action{Kind: KindFollowLink, N: n}
		}
	}

	fields := strings.Fields(line)
	rest := strings.Join(fields[1:], " ")
	switch fields[0] {
	case "g", "go":
		return Action{Kind: KindGo, Arg: rest}
	case "i":
		return Action{Kind: KindShowAddress, Arg: rest}
	case "save":
		return Action{Kind: KindSave, Arg: rest}
	case "save_raw":
		return Action{Kind: KindSaveRaw, Arg: rest}
	}

	return Action{Kind: KindUnknown, Arg: line}
}

// promptLine maps one completed answer line while a server prompt is
// active. An empty answer dismisses the prompt; anything else is
// submitted verbatim.
func promptLine(line string) Action {
	if line == "" {
		return Action{Kind: KindDismiss}
	}
	return Action{Kind: KindSubmit, Arg: line}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
