package bot

import (
	"aurora/internal/render"
	"aurora/internal/router"
	"aurora/internal/telegram"
)

func optionsKeyboard() *telegram.Keyboard {
	return telegram.NewKeyboard([]string{router.LabelVideo, router.LabelAudio, router.LabelSubtitles}, 3, router.LabelBack)
}

func qualityKeyboard(qualities []string) *telegram.Keyboard {
	return telegram.NewKeyboard(qualities, 2, router.LabelBack)
}

// languageKeyboard puts one language per row with a button per format.
func languageKeyboard(languages []string) *telegram.Keyboard {
	formats := render.Formats()
	labels := make([]string, 0, len(languages)*len(formats))
	for _, lang := range languages {
		for _, format := range formats {
			labels = append(labels, router.SubtitleLabel(lang, format))
		}
	}
	return telegram.NewKeyboard(labels, len(formats), router.LabelBack)
}
