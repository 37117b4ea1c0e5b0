package adapters

import (
	"regexp"
	"strings"
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/lexicon"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// OCRAdapter normalizes on-screen text detection output: per-frame records
// with text elements carrying text, bbox, size and an optional category.
// Missing size classes and categories are derived, never invented: size from
// bbox area, category from text shape and the CTA lexicon.
type OCRAdapter struct {
	Version string
}

func (a *OCRAdapter) ModelName() string { return "ocr" }

var numberPattern = regexp.MustCompile(`^[\d.,%$€£#]+$`)

func (a *OCRAdapter) Adapt(raw map[string]any, meta timeline.VideoMetadata) analysis.MLAnalysisResult {
	started := time.Now()
	if raw == nil {
		return failure(a.ModelName(), a.Version, "nil analyzer output")
	}

	framesRaw, ok := firstKey(raw, "frames", "frame_results", "results")
	if !ok {
		return failure(a.ModelName(), a.Version, "no frames key present")
	}
	frames, ok := asSlice(framesRaw)
	if !ok {
		return failure(a.ModelName(), a.Version, "frames is not a list")
	}

	normalized := make([]any, 0, len(frames))
	stickers := make([]any, 0)
	for _, f := range frames {
		fm, ok := asMap(f)
		if !ok {
			continue
		}
		start, ok := entryStart(fm, meta)
		if !ok {
			continue
		}

		elemsRaw, ok := firstKey(fm, "text_elements", "texts", "elements")
		if !ok {
			continue
		}
		elems, ok := asSlice(elemsRaw)
		if !ok {
			continue
		}

		normElems := make([]any, 0, len(elems))
		for _, e := range elems {
			em, ok := asMap(e)
			if !ok {
				continue
			}
			text := strings.TrimSpace(getString(em, "text"))
			if text == "" {
				continue
			}

			box := getBBox(em, meta)
			if box == nil {
				box = &timeline.BBox{}
			}

			size := getString(em, "size", "size_class")
			if size == "" {
				size = classifySize(box.Area())
			}
			position := getString(em, "position")
			if position == "" {
				position = classifyPosition(*box)
			}
			category := normalizeCategory(getString(em, "category"))
			if category == "" {
				category = classifyCategory(text)
			}
			conf, _ := getFloat(em, "confidence", "score")

			normElems = append(normElems, map[string]any{
				"text":       text,
				"bbox":       box,
				"size_class": size,
				"position":   position,
				"category":   category,
				"confidence": conf,
			})
		}

		// Sticker detections ride along on OCR frames when present
		if stickersRaw, ok := asSlice(fm["stickers"]); ok {
			for _, s := range stickersRaw {
				sm, ok := asMap(s)
				if !ok {
					continue
				}
				kind := getString(sm, "kind", "type")
				if kind == "" {
					continue
				}
				entry := map[string]any{"start": start.Seconds(), "kind": kind}
				if box := getBBox(sm, meta); box != nil {
					entry["bbox"] = box
				}
				stickers = append(stickers, entry)
			}
		}

		if len(normElems) > 0 {
			normalized = append(normalized, map[string]any{
				"start":         start.Seconds(),
				"text_elements": normElems,
			})
		}
	}

	return success(a.ModelName(), a.Version, map[string]any{
		"frames":   normalized,
		"stickers": stickers,
	}, started)
}

func classifySize(area float64) string {
	switch {
	case area > 0.15:
		return timeline.TextSizeXL
	case area > 0.06:
		return timeline.TextSizeL
	case area > 0.02:
		return timeline.TextSizeM
	default:
		return timeline.TextSizeS
	}
}

func classifyPosition(box timeline.BBox) string {
	cy := box.Y + box.H/2
	cx := box.X + box.W/2

	var v string
	switch {
	case cy < 1.0/3:
		v = "top"
	case cy > 2.0/3:
		v = "bottom"
	default:
		v = "middle"
	}
	var h string
	switch {
	case cx < 1.0/3:
		h = "left"
	case cx > 2.0/3:
		h = "right"
	default:
		h = "center"
	}
	return v + "-" + h
}

// normalizeCategory maps analyzer category labels onto the canonical set.
func normalizeCategory(cat string) string {
	switch strings.ToLower(strings.TrimSpace(cat)) {
	case "call_to_action", "cta":
		return timeline.TextCategoryCTA
	case "headline", "title":
		return timeline.TextCategoryHeadline
	case "subtitle", "caption_text":
		return timeline.TextCategorySubtitle
	case "caption":
		return timeline.TextCategoryCaption
	case "number":
		return timeline.TextCategoryNumber
	case "hashtag":
		return timeline.TextCategoryHashtag
	case "other":
		return timeline.TextCategoryOther
	default:
		return ""
	}
}

func classifyCategory(text string) string {
	switch {
	case strings.HasPrefix(text, "#"):
		return timeline.TextCategoryHashtag
	case numberPattern.MatchString(text):
		return timeline.TextCategoryNumber
	case lexicon.MatchAny(text, lexicon.CTA):
		return timeline.TextCategoryCTA
	default:
		return timeline.TextCategoryOther
	}
}
