package core

import "fmt"

// Physical key code definitions, independent of the active keyboard layout.
type KeyCode uint16

const (
	KEY_UNKNOWN   KeyCode = 0x00
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_PAUSE     KeyCode = 0x13
	KEY_CAPITAL   KeyCode = 0x14
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_PRIOR     KeyCode = 0x21
	KEY_NEXT      KeyCode = 0x22
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_SNAPSHOT  KeyCode = 0x2C
	KEY_INSERT    KeyCode = 0x2D
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_1         KeyCode = 0x31
	KEY_2         KeyCode = 0x32
	KEY_3         KeyCode = 0x33
	KEY_4         KeyCode = 0x34
	KEY_5         KeyCode = 0x35
	KEY_6         KeyCode = 0x36
	KEY_7         KeyCode = 0x37
	KEY_8         KeyCode = 0x38
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_LWIN      KeyCode = 0x5B
	KEY_RWIN      KeyCode = 0x5C
	KEY_APPS      KeyCode = 0x5D
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F3        KeyCode = 0x72
	KEY_F4        KeyCode = 0x73
	KEY_F5        KeyCode = 0x74
	KEY_F6        KeyCode = 0x75
	KEY_F7        KeyCode = 0x76
	KEY_F8        KeyCode = 0x77
	KEY_F9        KeyCode = 0x78
	KEY_F10       KeyCode = 0x79
	KEY_F11       KeyCode = 0x7A
	KEY_F12       KeyCode = 0x7B
	KEY_NUMLOCK   KeyCode = 0x90
	KEY_SCROLL    KeyCode = 0x91
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEY_LMENU     KeyCode = 0xA4
	KEY_RMENU     KeyCode = 0xA5
	KEY_SEMICOLON KeyCode = 0xBA
	KEY_PLUS      KeyCode = 0xBB
	KEY_COMMA     KeyCode = 0xBC
	KEY_MINUS     KeyCode = 0xBD
	KEY_PERIOD    KeyCode = 0xBE
	KEY_SLASH     KeyCode = 0xBF
	KEY_GRAVE     KeyCode = 0xC0

	KEYS_MAX_KEYS KeyCode = 0xFF
)

var keyNames = map[KeyCode]string{
	KEY_BACKSPACE: "Backspace",
	KEY_TAB:       "Tab",
	KEY_ENTER:     "Enter",
	KEY_PAUSE:     "Pause",
	KEY_CAPITAL:   "CapsLock",
	KEY_ESCAPE:    "Escape",
	KEY_SPACE:     "Space",
	KEY_PRIOR:     "PageUp",
	KEY_NEXT:      "PageDown",
	KEY_END:       "End",
	KEY_HOME:      "Home",
	KEY_LEFT:      "ArrowLeft",
	KEY_UP:        "ArrowUp",
	KEY_RIGHT:     "ArrowRight",
	KEY_DOWN:      "ArrowDown",
	KEY_SNAPSHOT:  "PrintScreen",
	KEY_INSERT:    "Insert",
	KEY_DELETE:    "Delete",
	KEY_LWIN:      "SuperLeft",
	KEY_RWIN:      "SuperRight",
	KEY_APPS:      "ContextMenu",
	KEY_NUMLOCK:   "NumLock",
	KEY_SCROLL:    "ScrollLock",
	KEY_LSHIFT:    "ShiftLeft",
	KEY_RSHIFT:    "ShiftRight",
	KEY_LCONTROL:  "ControlLeft",
	KEY_RCONTROL:  "ControlRight",
	KEY_LMENU:     "AltLeft",
	KEY_RMENU:     "AltRight",
	KEY_SEMICOLON: "Semicolon",
	KEY_PLUS:      "Equal",
	KEY_COMMA:     "Comma",
	KEY_MINUS:     "Minus",
	KEY_PERIOD:    "Period",
	KEY_SLASH:     "Slash",
	KEY_GRAVE:     "Backquote",
}

func (k KeyCode) String() string {
	switch {
	case k >= KEY_A && k <= KEY_Z:
		return fmt.Sprintf("Key%c", rune(k))
	case k >= KEY_0 && k <= KEY_9:
		return fmt.Sprintf("Digit%c", rune(k))
	case k >= KEY_F1 && k <= KEY_F12:
		return fmt.Sprintf("F%d", k-KEY_F1+1)
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02X)", uint16(k))
}

// ElementState is the physical state of a key or button.
type ElementState uint8

const (
	Released ElementState = iota
	Pressed
)

func (s ElementState) IsPressed() bool {
	return s == Pressed
}

func (s ElementState) String() string {
	if s == Pressed {
		return "Pressed"
	}
	return "Released"
}
