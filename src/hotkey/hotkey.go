package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	gohook "github.com/robotn/gohook"
)

// ErrUnknownKey is returned when a key name has no rawcode mapping.
var ErrUnknownKey = errors.New("unknown key name")

// charUndefined is the Keychar gohook reports for non-printing keys.
const charUndefined rune = 0xFFFF

// Event is emitted once per press of a configured key combination.
type Event struct {
	Key string
	At  time.Time
}

type keyState struct {
	name     string
	rawcodes []uint16
	char     rune
	pressed  bool
}

// Binding tracks the pressed state of one key combination such as "ctrl+o".
type Binding struct {
	Name   string
	keys   []keyState
	active bool
}

// NewBinding parses a combination like "Ctrl+Alt+q".
func NewBinding(combo string) (*Binding, error) {
	names := parseHotkey(combo)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, combo)
	}

	b := &Binding{Name: strings.Join(names, "+")}
	for _, name := range names {
		rawcodes := rawcodesFor(name)
		if len(rawcodes) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
		}
		ks := keyState{name: name, rawcodes: rawcodes}
		if r := []rune(name); len(r) == 1 {
			ks.char = r[0]
		}
		b.keys = append(b.keys, ks)
	}
	return b, nil
}

// Handle feeds one key event and reports whether the combination just became
// fully pressed. Auto-repeat and duplicate press events do not fire again until
// one of the keys is released.
func (b *Binding) Handle(ev gohook.Event) bool {
	switch ev.Kind {
	case gohook.KeyDown, gohook.KeyHold:
		matched := false
		for i := range b.keys {
			if b.keys[i].matches(ev) {
				b.keys[i].pressed = true
				matched = true
			}
		}
		if !matched || b.active {
			return false
		}
		for i := range b.keys {
			if !b.keys[i].pressed {
				return false
			}
		}
		b.active = true
		return true
	case gohook.KeyUp:
		for i := range b.keys {
			if b.keys[i].matches(ev) {
				b.keys[i].pressed = false
				b.active = false
			}
		}
	}
	return false
}

func (k keyState) matches(ev gohook.Event) bool {
	for _, rc := range k.rawcodes {
		if ev.Rawcode == rc {
			return true
		}
	}
	if k.char != 0 && ev.Keychar != 0 && ev.Keychar != charUndefined {
		return strings.EqualFold(string(ev.Keychar), string(k.char))
	}
	return false
}

// Listener turns global keyboard hook events into Events on a channel.
type Listener struct {
	bindings []*Binding
	events   chan Event

	// start and end default to gohook.Start and gohook.End.
	start func() chan gohook.Event
	end   func()
}

// NewListener builds a listener for the given key combinations.
func NewListener(combos ...string) (*Listener, error) {
	l := &Listener{
		events: make(chan Event, 8),
		start:  gohook.Start,
		end:    gohook.End,
	}
	for _, combo := range combos {
		b, err := NewBinding(combo)
		if err != nil {
			return nil, err
		}
		l.bindings = append(l.bindings, b)
	}
	return l, nil
}

// Events returns the channel of detected combinations. It is closed when the
// hook stops.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Start installs the hook in a goroutine. Cancelling ctx ends the hook.
func (l *Listener) Start(ctx context.Context) {
	names := make([]string, 0, len(l.bindings))
	for _, b := range l.bindings {
		names = append(names, b.Name)
	}
	log.Printf("Hotkey listener configured for: %s", strings.Join(names, ", "))

	var endOnce sync.Once
	stop := func() { endOnce.Do(l.end) }

	go func() {
		defer close(l.events)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := l.start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}

		go func() {
			<-ctx.Done()
			stop()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					log.Printf("Event channel closed")
					return
				}
				l.dispatch(ev)
			}
		}
	}()
}

func (l *Listener) dispatch(ev gohook.Event) {
	if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyHold && ev.Kind != gohook.KeyUp {
		return
	}
	for _, b := range l.bindings {
		if !b.Handle(ev) {
			continue
		}
		log.Printf("Hotkey detected: %s", b.Name)
		select {
		case l.events <- Event{Key: b.Name, At: time.Now()}:
		default:
			log.Printf("Hotkey %s dropped: consumer busy", b.Name)
		}
	}
}

// Normalize returns the canonical name of a combination, the same string
// Event.Key carries when it fires.
func Normalize(combo string) string {
	return strings.Join(parseHotkey(combo), "+")
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "option":
			keys = append(keys, "alt")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		case "escape":
			keys = append(keys, "esc")
		default:
			keys = append(keys, part)
		}
	}

	return keys
}
