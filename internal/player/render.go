package player

import (
	"strconv"
)

const UnavailableMessage = "This video is currently unavailable."

type Icon string

const (
	IconPlay        Icon = "play"
	IconPause       Icon = "pause"
	IconReplay      Icon = "replay"
	IconVolumeMuted Icon = "volume_muted"
	IconVolumeLow   Icon = "volume_low"
	IconVolumeHigh  Icon = "volume_high"
)

// View holds the display values derived from a Snapshot.
type View struct {
	Version         uint64  `json:"version"`
	Status          Status  `json:"status"`
	Unavailable     bool    `json:"unavailable"`
	Message         string  `json:"message,omitempty"`
	PosterURL       string  `json:"poster_url,omitempty"`
	CurrentTime     string  `json:"current_time"`
	Duration        string  `json:"duration"`
	Progress        float64 `json:"progress"`
	BufferedPercent float64 `json:"buffered"`
	PlayIcon        Icon    `json:"play_icon"`
	VolumeIcon      Icon    `json:"volume_icon"`
	Volume          float64 `json:"volume"`
	Muted           bool    `json:"muted"`
	RateLabel       string  `json:"rate_label"`
	PlaybackRate    float64 `json:"playback_rate"`
	ControlsVisible bool    `json:"controls_visible"`
	Fullscreen      bool    `json:"fullscreen"`
	ShowSettings    bool    `json:"show_settings"`
	ToggleFlash     bool    `json:"toggle_flash"`
	SkipFlash       int     `json:"skip_flash"`
}

// Render derives the view for s. It has no side effects.
func Render(s Snapshot) View {
	v := View{
		Version:         s.Version,
		Status:          s.Status,
		PosterURL:       s.PosterURL,
		CurrentTime:     FormatTime(s.Position),
		Duration:        "0:00",
		Volume:          s.Volume,
		Muted:           s.Muted,
		PlaybackRate:    s.PlaybackRate,
		RateLabel:       RateLabel(s.PlaybackRate),
		ControlsVisible: s.ControlsVisible,
		Fullscreen:      s.Fullscreen,
		ShowSettings:    s.ShowSettings,
		ToggleFlash:     s.ToggleFlash,
		SkipFlash:       s.SkipFlash,
	}

	if s.Unavailable || s.Status == StatusErrored {
		v.Unavailable = true
		v.Message = UnavailableMessage
		v.ControlsVisible = false
		v.PlayIcon = IconPlay
		v.VolumeIcon = volumeIcon(s)
		return v
	}

	if s.DurationKnown {
		v.Duration = FormatTime(s.Duration)
		v.Progress = percent(s.Position, s.Duration)
		v.BufferedPercent = percent(s.Buffered, s.Duration)
	}

	switch s.Status {
	case StatusPlaying:
		v.PlayIcon = IconPause
	case StatusEnded:
		v.PlayIcon = IconReplay
	default:
		v.PlayIcon = IconPlay
	}
	v.VolumeIcon = volumeIcon(s)

	return v
}

func percent(part, whole float64) float64 {
	if whole <= 0 || !finite(part) || !finite(whole) {
		return 0
	}
	return clamp(part/whole*100, 0, 100)
}

func volumeIcon(s Snapshot) Icon {
	switch {
	case s.Muted || s.Volume == 0:
		return IconVolumeMuted
	case s.Volume < 0.5:
		return IconVolumeLow
	default:
		return IconVolumeHigh
	}
}

// RateLabel renders a playback rate for the settings menu.
func RateLabel(rate float64) string {
	if rate == 1 {
		return "Normal"
	}
	return strconv.FormatFloat(rate, 'f', -1, 64) + "x"
}
