package mapper

import (
	"net/url"
	"strings"

	"github.com/wjoell/slc-migrate/destination"
	"github.com/wjoell/slc-migrate/origin"
	"github.com/wjoell/slc-migrate/richtext"
)

// ParseVideoURL resolves a provider and video ID from an embed URL. It
// recognizes the YouTube and Vimeo URL families in their common path shapes.
// A recognized URL with an empty ID returns ok=false with provider set, so
// callers can tell "default placeholder URL" apart from "unparseable".
func ParseVideoURL(raw string) (provider, id string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segs[len(segs)-1]

	switch host {
	case "youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			return "youtube", v, true
		}
		if len(segs) >= 1 && (segs[0] == "embed" || segs[0] == "v" || segs[0] == "shorts") {
			if len(segs) >= 2 && segs[1] != "" {
				return "youtube", segs[1], true
			}
			return "youtube", "", false
		}
		return "youtube", "", false
	case "youtu.be":
		if last != "" {
			return "youtube", last, true
		}
		return "youtube", "", false
	case "vimeo.com", "player.vimeo.com":
		if isDigits(last) {
			return "vimeo", last, true
		}
		return "vimeo", "", false
	}
	return "", "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// videoItem builds a media item for a provider-hosted video.
func videoItem(provider, id string) *destination.Node {
	media := destination.Group("group-single-media",
		destination.Text("media-type", provider),
	)
	switch provider {
	case "youtube":
		media.Children = append(media.Children, destination.Text("youtube-id", id))
	case "vimeo":
		media.Children = append(media.Children, destination.Text("vimeo-id", id))
	}
	return destination.Group(destination.ContentItemIdentifier,
		destination.Text("content-item-type", "media"),
		media,
	)
}

// mapVideo resolves the item's embed URL to a provider video ID. An empty or
// placeholder URL produces nothing silently; an unrecognized non-empty URL
// is a logged exclusion.
func (m *Mapper) mapVideo(el *origin.Element, rep richtext.Reporter) []Item {
	group := el.Find("group-video")
	if group == nil {
		return nil
	}
	raw := group.ChildText("video-url")
	if raw == "" {
		return nil
	}

	provider, id, ok := ParseVideoURL(raw)
	if !ok {
		if provider != "" {
			// Recognized family, empty ID: the editor never filled the
			// default embed URL in. Not worth a log line.
			return nil
		}
		rep.Warning("Excluded: unrecognized video URL "+raw, "")
		return nil
	}
	return []Item{{Node: videoItem(provider, id)}}
}

// mapImage resolves the item's legacy filename to an asset ID. The size
// classification follows the origin layout hint.
func (m *Mapper) mapImage(el *origin.Element, rep richtext.Reporter) []Item {
	group := el.Find("group-image")
	if group == nil {
		return nil
	}
	img := group.Child("image")
	name := ""
	if img != nil {
		name = img.ChildText("name")
	}
	if name == "" {
		rep.Warning("Excluded: Image item with no image selected", "")
		return nil
	}

	id, ok := m.cfg.Assets.Lookup(name)
	if !ok {
		rep.Error("NO ASSET ID FOUND: "+name, "")
		return nil
	}

	size := "md"
	switch group.ChildText("layout") {
	case "full", "full-width":
		size = "lg"
	}
	return []Item{{Node: mediaImageItem(id, group.ChildText("caption"), size)}}
}
