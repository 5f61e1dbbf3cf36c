package ytdlp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"aurora/internal/media"
)

type videoInfo struct {
	ID                string                    `json:"id"`
	Title             string                    `json:"title"`
	Formats           []formatInfo              `json:"formats"`
	Subtitles         map[string][]subtitleInfo `json:"subtitles"`
	AutomaticCaptions map[string][]subtitleInfo `json:"automatic_captions"`
}

type formatInfo struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	TBR        float64 `json:"tbr"`
	ABR        float64 `json:"abr"`
	FormatNote string  `json:"format_note"`
}

type subtitleInfo struct {
	Ext string `json:"ext"`
}

func parseInfo(data []byte) (videoInfo, error) {
	var info videoInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return videoInfo{}, fmt.Errorf("decode yt-dlp info: %w", err)
	}
	return info, nil
}

func hasCodec(codec string) bool {
	codec = strings.TrimSpace(codec)
	return codec != "" && codec != "none"
}

// streams flattens formats and caption tracks into media streams.
func (info videoInfo) streams() []media.Stream {
	out := make([]media.Stream, 0, len(info.Formats)+len(info.Subtitles))
	for _, f := range info.Formats {
		video, audio := hasCodec(f.VCodec), hasCodec(f.ACodec)
		stream := media.Stream{ID: f.FormatID, Ext: f.Ext, Width: f.Width, Height: f.Height, Bitrate: f.TBR}
		switch {
		case video && audio:
			stream.Kind = media.KindCombined
		case video:
			stream.Kind = media.KindVideo
		case audio:
			stream.Kind = media.KindAudio
			if f.ABR > 0 {
				stream.Bitrate = f.ABR
			}
		default:
			// storyboards and other image-only entries
			continue
		}
		if stream.Kind != media.KindAudio && stream.Height == 0 {
			continue
		}
		out = append(out, stream)
	}
	out = appendTracks(out, info.Subtitles, false)
	out = appendTracks(out, info.AutomaticCaptions, true)
	return out
}

func appendTracks(out []media.Stream, tracks map[string][]subtitleInfo, auto bool) []media.Stream {
	keys := make([]string, 0, len(tracks))
	for lang, variants := range tracks {
		if lang == "live_chat" || len(variants) == 0 {
			continue
		}
		keys = append(keys, lang)
	}
	sort.Strings(keys)
	for _, lang := range keys {
		out = append(out, media.Stream{
			ID:       lang,
			Kind:     media.KindSubtitle,
			Ext:      "srt",
			Language: lang,
			Auto:     auto,
		})
	}
	return out
}
