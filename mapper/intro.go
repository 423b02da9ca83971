package mapper

import (
	"github.com/wjoell/slc-migrate/origin"
	"github.com/wjoell/slc-migrate/richtext"
)

// MapIntro converts the intro region's content. Intro rich text goes through
// the same splitter as Text items; a configured intro video becomes a media
// item using its stored provider and ID directly, no URL parsing.
func (m *Mapper) MapIntro(doc *origin.Document, rep richtext.Reporter) []Item {
	intro := doc.Intro()
	if intro == nil {
		return nil
	}
	var out []Item

	if w := intro.Find("wysiwyg"); w != nil && w.InnerXML() != "" {
		if frag, err := richtext.Parse(w.InnerXML()); err == nil {
			out = append(out, m.sectionItems(m.cfg.Splitter.Split(frag, rep), rep)...)
		} else {
			rep.Warning("Intro rich text unparseable: "+err.Error(), "")
		}
	}

	if video := intro.Find("intro-video"); video != nil {
		if id := video.ChildText("video-id"); id != "" {
			provider := video.ChildText("video-source")
			if provider != "youtube" && provider != "vimeo" {
				provider = "vimeo"
			}
			out = append(out, Item{Node: videoItem(provider, id)})
		}
	}

	if gallery := intro.Find("publish-api-gallery"); gallery != nil {
		if id := gallery.ChildText("gallery-api-id"); id != "" {
			rep.Warning("Gallery requires manual placement: gallery-api-id "+id, "")
		}
	}
	return out
}

// MapNews converts a news article body. Block images split the text into
// interleaved runs and become large standalone media items; floated images
// ride their run as prose-image, taking the alt text as caption when the
// captioned marker class is present; unclassified images are stripped and
// logged by the cleaner.
func (m *Mapper) MapNews(body string, rep richtext.Reporter) []Item {
	frag, err := richtext.Parse(body)
	if err != nil {
		rep.Warning("News body unparseable: "+err.Error(), "")
		return nil
	}
	return m.sectionItems(m.cfg.Splitter.SplitMedia(frag, rep), rep)
}
