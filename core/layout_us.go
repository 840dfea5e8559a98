package core

// KeyStroke is one character expressed as a key plus an optional shift
type KeyStroke struct {
	Key   Keycode
	Shift bool
}

// usLayout maps printable ASCII (0x20-0x7E) plus tab and newline to keys on
// a US keyboard. Index is the character code.
var usLayout = [128]KeyStroke{
	'\t': {KeyTab, false},
	'\n': {KeyEnter, false},
	' ':  {KeySpace, false},
	'!':  {0x1E, true},
	'"':  {0x34, true},
	'#':  {0x20, true},
	'$':  {0x21, true},
	'%':  {0x22, true},
	'&':  {0x24, true},
	'\'': {0x34, false},
	'(':  {0x26, true},
	')':  {0x27, true},
	'*':  {0x25, true},
	'+':  {0x2E, true},
	',':  {0x36, false},
	'-':  {0x2D, false},
	'.':  {0x37, false},
	'/':  {0x38, false},
	':':  {0x33, true},
	';':  {0x33, false},
	'<':  {0x36, true},
	'=':  {0x2E, false},
	'>':  {0x37, true},
	'?':  {0x38, true},
	'@':  {0x1F, true},
	'[':  {0x2F, false},
	'\\': {0x31, false},
	']':  {0x30, false},
	'^':  {0x23, true},
	'_':  {0x2D, true},
	'`':  {0x35, false},
	'{':  {0x2F, true},
	'|':  {0x31, true},
	'}':  {0x30, true},
	'~':  {0x35, true},
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		usLayout[c] = KeyStroke{KeyA + Keycode(c-'a'), false}
		usLayout[c-'a'+'A'] = KeyStroke{KeyA + Keycode(c-'a'), true}
	}
	// Digits 1-9 are consecutive, 0 comes after 9
	for c := '1'; c <= '9'; c++ {
		usLayout[c] = KeyStroke{Key1 + Keycode(c-'1'), false}
	}
	usLayout['0'] = KeyStroke{Key0, false}
}

// LookupUS returns the key stroke that types c on a US layout.
// ok is false for characters the layout cannot produce.
func LookupUS(c rune) (KeyStroke, bool) {
	if c < 0 || c >= rune(len(usLayout)) {
		return KeyStroke{}, false
	}
	ks := usLayout[c]
	return ks, ks.Key != 0
}
