package hotkey

import (
	"runtime"
	"strconv"
	"strings"
)

// rawcodesFor returns the rawcodes gohook reports for keyName on this OS.
func rawcodesFor(keyName string) []uint16 {
	if runtime.GOOS == "windows" {
		return keyNameToRawcodes(keyName)
	}
	return keyNameToKeysyms(keyName)
}

// keyNameToRawcodes maps a key name to its Windows virtual key codes.
// Modifiers return both the left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	switch keyName {
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "cmd", "win", "super":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	case "space":
		return []uint16{32}
	case "enter", "return":
		return []uint16{13}
	case "esc", "escape":
		return []uint16{27}
	case "tab":
		return []uint16{9}
	case "backspace":
		return []uint16{8}
	case "delete", "del":
		return []uint16{46}
	case "insert", "ins":
		return []uint16{45}
	case "home":
		return []uint16{36}
	case "end":
		return []uint16{35}
	case "pageup", "pgup":
		return []uint16{33}
	case "pagedown", "pgdn":
		return []uint16{34}
	case "left":
		return []uint16{37}
	case "up":
		return []uint16{38}
	case "right":
		return []uint16{39}
	case "down":
		return []uint16{40}
	}

	// Letters and digits share their uppercase ASCII value (VK 0x30-0x39, 0x41-0x5A).
	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c - 'a' + 'A')}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c)}
		}
	}

	if n, ok := functionKey(keyName); ok {
		return []uint16{uint16(111 + n)} // VK_F1 = 112
	}
	return nil
}

// keyNameToKeysyms maps a key name to the X11 keysyms reported on Linux and
// the BSDs.
func keyNameToKeysyms(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	switch keyName {
	case "ctrl":
		return []uint16{0xffe3, 0xffe4}
	case "alt":
		return []uint16{0xffe9, 0xffea}
	case "shift":
		return []uint16{0xffe1, 0xffe2}
	case "cmd", "win", "super":
		return []uint16{0xffeb, 0xffec}
	case "space":
		return []uint16{0x20}
	case "enter", "return":
		return []uint16{0xff0d}
	case "esc", "escape":
		return []uint16{0xff1b}
	case "tab":
		return []uint16{0xff09}
	case "backspace":
		return []uint16{0xff08}
	case "delete", "del":
		return []uint16{0xffff}
	case "insert", "ins":
		return []uint16{0xff63}
	case "home":
		return []uint16{0xff50}
	case "end":
		return []uint16{0xff57}
	case "pageup", "pgup":
		return []uint16{0xff55}
	case "pagedown", "pgdn":
		return []uint16{0xff56}
	case "left":
		return []uint16{0xff51}
	case "up":
		return []uint16{0xff52}
	case "right":
		return []uint16{0xff53}
	case "down":
		return []uint16{0xff54}
	}

	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			// Shifted letters report the uppercase keysym.
			return []uint16{uint16(c), uint16(c - 'a' + 'A')}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c)}
		}
	}

	if n, ok := functionKey(keyName); ok {
		return []uint16{uint16(0xffbd + n)} // XK_F1 = 0xffbe
	}
	return nil
}

// functionKey parses "f1".."f24".
func functionKey(keyName string) (int, bool) {
	if !strings.HasPrefix(keyName, "f") {
		return 0, false
	}
	n, err := strconv.Atoi(keyName[1:])
	if err != nil || n < 1 || n > 24 {
		return 0, false
	}
	return n, true
}
