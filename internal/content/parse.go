// Package content parses the opaque content payload of a generated post.
// The backend stores either a JSON document with text/image/video sections
// or a plain string, and never labels which one it sent.
package content

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// TextSection is the caption-only variant of a generated post.
type TextSection struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags,omitempty"`
}

// ImageSection carries an image post plus the prompt that produced it.
type ImageSection struct {
	Caption     string   `json:"caption"`
	Hashtags    []string `json:"hashtags,omitempty"`
	ImagePrompt string   `json:"imagePrompt,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// VideoSection carries a video post with its full shooting script.
type VideoSection struct {
	Hook                 string   `json:"hook,omitempty"`
	Caption              string   `json:"caption"`
	Script               string   `json:"script"`
	ShootingInstructions string   `json:"shootingInstructions,omitempty"`
	AudienceEngagement   string   `json:"audienceEngagement,omitempty"`
	Hashtags             []string `json:"hashtags,omitempty"`
}

// Parsed is the result of Parse. Exactly one of the two shapes is
// populated: structured sections when IsJSON is true, PlainText otherwise.
type Parsed struct {
	IsJSON    bool
	Text      *TextSection
	Image     *ImageSection
	Video     *VideoSection
	PlainText string
}

type document struct {
	Text  *TextSection  `json:"text"`
	Image *ImageSection `json:"image"`
	Video *VideoSection `json:"video"`
}

// Parse classifies a raw content payload. Any valid JSON value counts as
// structured content (sections absent from the document stay nil); anything
// that fails to parse is carried through verbatim as plain text. Parse is a
// pure function so repeated calls on the same input always agree.
func Parse(raw string) Parsed {
	if !json.Valid([]byte(raw)) {
		return Parsed{PlainText: raw}
	}

	var doc document
	// Valid JSON that is not an object (a bare number or string) still
	// counts as structured content with no sections.
	_ = json.Unmarshal([]byte(raw), &doc)

	return Parsed{
		IsJSON: true,
		Text:   doc.Text,
		Image:  doc.Image,
		Video:  doc.Video,
	}
}

// DisplayCaption returns the caption to show for the post, preferring the
// text section, then image, then video. Plain content is its own caption.
func (p Parsed) DisplayCaption() string {
	if !p.IsJSON {
		return p.PlainText
	}
	if p.Text != nil && p.Text.Caption != "" {
		return p.Text.Caption
	}
	if p.Image != nil && p.Image.Caption != "" {
		return p.Image.Caption
	}
	if p.Video != nil && p.Video.Caption != "" {
		return p.Video.Caption
	}
	return ""
}

// Hashtags returns the post's hashtags with the same section precedence as
// DisplayCaption. Plain content never has hashtags.
func (p Parsed) Hashtags() []string {
	if !p.IsJSON {
		return nil
	}
	if p.Text != nil && len(p.Text.Hashtags) > 0 {
		return p.Text.Hashtags
	}
	if p.Image != nil && len(p.Image.Hashtags) > 0 {
		return p.Image.Hashtags
	}
	if p.Video != nil && len(p.Video.Hashtags) > 0 {
		return p.Video.Hashtags
	}
	return nil
}

// HasImage reports whether the post carries a real downloadable image.
// Placeholder URLs from placehold.co mean generation produced no image.
func (p Parsed) HasImage() bool {
	if p.Image == nil || p.Image.ImageURL == "" {
		return false
	}
	return !strings.Contains(p.Image.ImageURL, "placehold.co")
}

// HasVideo reports whether the post includes a video script.
func (p Parsed) HasVideo() bool {
	return p.Video != nil
}

// ShareText formats a caption and hashtags for the clipboard. Hashtags are
// appended space-separated after a blank line; a bare caption passes through.
func ShareText(caption string, hashtags []string) string {
	if len(hashtags) == 0 {
		return caption
	}
	return caption + "\n\n" + strings.Join(hashtags, " ")
}

// Truncate shortens s to at most max runes, appending "..." when it cuts.
// Captions are full of emoji, so the cut lands on a rune boundary.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
