package token

import "regexp"

// varPattern matches the variable-access word grammar: an optional
// leading dup colon, a bank sigil, a 1-based index, and an optional
// trailing action character.
var varPattern = regexp.MustCompile(`^(:)?(\$|#|@)([1-9][0-9]*)(=|!|\?|@|\$|\.)?$`)

// ParseVar attempts to recognize word as a variable-access token: an
// optional dup colon, a bank sigil, a 1-based index, and an optional
// action character. Any sigil-shaped word is reported (ok=true) even
// when its index, dup, or action combination is not actually usable —
// the compiler validates that combination and raises a VariableFormError
// for it, since a malformed sigil word is a variable-access token the
// user plainly meant, not an OtherName to fall back to.
func ParseVar(word string) (v Var, ok bool) {
	m := varPattern.FindStringSubmatch(word)
	if m == nil {
		return Var{}, false
	}

	var kind VarKind
	switch m[2] {
	case "$":
		kind = Input
	case "#":
		kind = Memory
	case "@":
		kind = Param
	}

	index := 0
	for _, c := range m[3] {
		index = index*10 + int(c-'0')
	}

	action := ActNone
	switch m[4] {
	case "":
		action = ActNone
	case "=":
		action = ActStore
	case "!":
		action = ActRequired
	case "?":
		action = ActPresent
	case "@":
		action = ActStamp
	case "$":
		action = ActState
	case ".":
		action = ActPoint
	}

	return Var{
		Dup:    m[1] == ":",
		Kind:   kind,
		Index:  index,
		Action: action,
	}, true
}
