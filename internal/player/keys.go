package player

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Action is a controller operation reachable from the keyboard.
type Action string

const (
	ActionTogglePlay       Action = "toggle_play"
	ActionToggleFullscreen Action = "toggle_fullscreen"
	ActionToggleMute       Action = "toggle_mute"
	ActionSkipForward      Action = "skip_forward"
	ActionSkipBackward     Action = "skip_backward"
	ActionVolumeUp         Action = "volume_up"
	ActionVolumeDown       Action = "volume_down"
)

// keyActions is keyed by KeyboardEvent.key, letters lowercased.
var keyActions = map[string]Action{
	" ":          ActionTogglePlay,
	"k":          ActionTogglePlay,
	"f":          ActionToggleFullscreen,
	"m":          ActionToggleMute,
	"ArrowRight": ActionSkipForward,
	"ArrowLeft":  ActionSkipBackward,
	"ArrowUp":    ActionVolumeUp,
	"ArrowDown":  ActionVolumeDown,
}

// KeyBinding maps a key to the action it triggers.
type KeyBinding struct {
	Key    string `json:"key"`
	Action Action `json:"action"`
}

// KeyBindings returns the keyboard shortcuts, sorted by key. Every bound
// key has its default browser action prevented.
func KeyBindings() []KeyBinding {
	keys := maps.Keys(keyActions)
	slices.Sort(keys)

	bindings := make([]KeyBinding, 0, len(keys))
	for _, k := range keys {
		bindings = append(bindings, KeyBinding{Key: k, Action: keyActions[k]})
	}
	return bindings
}

func lookupKey(key string) (Action, bool) {
	if len(key) == 1 {
		key = strings.ToLower(key)
	}
	a, ok := keyActions[key]
	return a, ok
}

// HandleKey dispatches a key press. It reports whether the key is bound
// while the player holds focus, in which case the caller must prevent the
// default action. The bound operation may still be a no-op.
func (s *Session) HandleKey(key string) bool {
	action, ok := lookupKey(key)
	if !ok {
		return false
	}

	var handled bool
	s.mutate(func() bool {
		if !s.focused {
			return false
		}
		handled = true
		return s.applyActionLocked(action)
	})
	return handled
}

func (s *Session) applyActionLocked(action Action) bool {
	switch action {
	case ActionTogglePlay:
		return s.togglePlayLocked()
	case ActionToggleFullscreen:
		return s.toggleFullscreenLocked()
	case ActionToggleMute:
		return s.toggleMuteLocked()
	case ActionSkipForward:
		return s.skipLocked(SkipStep)
	case ActionSkipBackward:
		return s.skipLocked(-SkipStep)
	case ActionVolumeUp:
		return s.operableLocked("volume_up") && s.stepVolumeLocked(VolumeStep)
	case ActionVolumeDown:
		return s.operableLocked("volume_down") && s.stepVolumeLocked(-VolumeStep)
	default:
		return false
	}
}
