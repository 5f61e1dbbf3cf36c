package media

import "strings"

// SelectCombined returns the best combined audio+video stream at the tier.
func SelectCombined(streams []Stream, height int) (Stream, bool) {
	return best(streams, func(s Stream) bool {
		return s.Kind == KindCombined && s.Resolution() == height
	}, preferExt("mp4"))
}

// SelectVideo returns the best video-only stream at the tier.
func SelectVideo(streams []Stream, height int) (Stream, bool) {
	return best(streams, func(s Stream) bool {
		return s.Kind == KindVideo && s.Resolution() == height
	}, preferExt("mp4"))
}

// BestAudio returns the highest bitrate audio-only stream, preferring m4a.
func BestAudio(streams []Stream) (Stream, bool) {
	return best(streams, func(s Stream) bool { return s.Kind == KindAudio }, preferExt("m4a"))
}

// SelectSubtitle returns the track for a language. Uploaded tracks win over
// auto-generated ones, and srt over other formats.
func SelectSubtitle(streams []Stream, language string) (Stream, bool) {
	var (
		chosen Stream
		found  bool
	)
	for _, s := range streams {
		if s.Kind != KindSubtitle || !MatchLanguage(s.Language, language) {
			continue
		}
		if !found || subtitleRank(s) > subtitleRank(chosen) {
			chosen, found = s, true
		}
	}
	return chosen, found
}

func subtitleRank(s Stream) int {
	rank := 0
	if !s.Auto {
		rank += 2
	}
	if strings.EqualFold(s.Ext, "srt") {
		rank++
	}
	return rank
}

// TierAvailable reports whether the tier can be delivered, either as a
// combined stream or as a video-only stream plus an audio track.
func TierAvailable(streams []Stream, height int) bool {
	if _, ok := SelectCombined(streams, height); ok {
		return true
	}
	_, ok := SelectVideo(streams, height)
	return ok
}

// AvailableTiers filters offered tier labels down to those the source has.
func AvailableTiers(streams []Stream, offered []string) []string {
	out := make([]string, 0, len(offered))
	for _, tier := range offered {
		height, err := ParseTier(tier)
		if err != nil {
			continue
		}
		if TierAvailable(streams, height) {
			out = append(out, tier)
		}
	}
	return out
}

// AvailableLanguages filters offered language codes down to those with a
// subtitle track, including auto-generated ones.
func AvailableLanguages(streams []Stream, offered []string) []string {
	out := make([]string, 0, len(offered))
	for _, lang := range offered {
		if _, ok := SelectSubtitle(streams, lang); ok {
			out = append(out, lang)
		}
	}
	return out
}

func preferExt(ext string) func(a, b Stream) bool {
	return func(a, b Stream) bool {
		aPref := strings.EqualFold(a.Ext, ext)
		bPref := strings.EqualFold(b.Ext, ext)
		if aPref != bPref {
			return aPref
		}
		return a.Bitrate > b.Bitrate
	}
}

func best(streams []Stream, match func(Stream) bool, better func(a, b Stream) bool) (Stream, bool) {
	var (
		chosen Stream
		found  bool
	)
	for _, s := range streams {
		if !match(s) {
			continue
		}
		if !found || better(s, chosen) {
			chosen, found = s, true
		}
	}
	return chosen, found
}
