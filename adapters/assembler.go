package adapters

import (
	"fmt"
	"time"

	"github.com/TumiLabsJN/rumiai-go/analysis"
	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// modalityBuilder converts one adapter's normalized data into timeline
// entries. Builders are independent: a panic or malformed payload in one
// yields zero entries from that modality and a logged error, never a
// pipeline failure.
type modalityBuilder struct {
	model string
	build func(tl *timeline.Timeline, data map[string]any, meta timeline.VideoMetadata)
}

// builderOrder fixes the cross-modality insertion order, which is the stable
// tie-break for entries sharing a start time.
var builderOrder = []modalityBuilder{
	{"scene_detection", buildSceneEntries},
	{"object_tracking", buildObjectEntries},
	{"human_analysis", buildHumanEntries},
	{"ocr", buildTextEntries},
	{"speech_transcription", buildSpeechEntries},
}

// Assemble fuses the adapter results into a UnifiedAnalysis with one ordered
// timeline.
func Assemble(meta timeline.VideoMetadata, results map[string]analysis.MLAnalysisResult) (*analysis.UnifiedAnalysis, error) {
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("assembling unified analysis: %w", err)
	}

	tl := timeline.New(meta.DurationSeconds)
	for _, b := range builderOrder {
		result, ok := results[b.model]
		if !ok || !result.Success {
			logging.Warn("modality absent from unified timeline",
				logging.Fields{"model": b.model})
			continue
		}
		runBuilder(b, tl, result.Data, meta)
	}
	tl.Freeze()

	return &analysis.UnifiedAnalysis{
		VideoID:   meta.VideoID,
		Metadata:  meta,
		Timeline:  tl,
		MLResults: results,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func runBuilder(b modalityBuilder, tl *timeline.Timeline, data map[string]any, meta timeline.VideoMetadata) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(fmt.Errorf("%v", r), "timeline builder panicked",
				logging.Fields{"model": b.model})
		}
	}()
	b.build(tl, data, meta)
}

func buildSceneEntries(tl *timeline.Timeline, data map[string]any, meta timeline.VideoMetadata) {
	shots, _ := asSlice(data["shots"])
	for _, s := range shots {
		sm, ok := asMap(s)
		if !ok {
			continue
		}
		start, okStart := timeline.ParseTimestamp(sm["start"])
		if !okStart {
			continue
		}
		shotID, _ := getInt(sm, "shot_id")
		e := timeline.Entry{
			Start:    start,
			Modality: timeline.ModalitySceneChange,
			Payload: timeline.SceneChangePayload{
				Kind:   getString(sm, "kind"),
				ShotID: shotID,
			},
		}
		if end, okEnd := timeline.ParseTimestamp(sm["end"]); okEnd {
			e.End = &end
		}
		tl.Add(e)
	}
}

func buildObjectEntries(tl *timeline.Timeline, data map[string]any, meta timeline.VideoMetadata) {
	annotations, _ := asSlice(data["annotations"])
	for _, a := range annotations {
		am, ok := asMap(a)
		if !ok {
			continue
		}
		class := getString(am, "class")
		trackID := getString(am, "track_id")
		trackConf, _ := getFloat(am, "confidence")

		frames, _ := asSlice(am["frames"])
		for _, f := range frames {
			fm, ok := asMap(f)
			if !ok {
				continue
			}
			start, okStart := timeline.ParseTimestamp(fm["start"])
			if !okStart {
				continue
			}
			conf := trackConf
			if c, okC := getFloat(fm, "confidence"); okC {
				conf = c
			}
			payload := timeline.ObjectPayload{
				Class:      class,
				Confidence: conf,
				TrackID:    trackID,
			}
			if box, okB := fm["bbox"].(*timeline.BBox); okB {
				payload.BBox = box
			}
			tl.Add(timeline.Entry{
				Start:    start,
				Modality: timeline.ModalityObject,
				Payload:  payload,
			})
		}
	}
}

func buildHumanEntries(tl *timeline.Timeline, data map[string]any, meta timeline.VideoMetadata) {
	frames, _ := asSlice(data["frames"])
	for _, f := range frames {
		fm, ok := asMap(f)
		if !ok {
			continue
		}
		start, okStart := timeline.ParseTimestamp(fm["start"])
		if !okStart {
			continue
		}

		// Pose entries carry the face flag so person-framing can measure
		// face screen time without a second pass over raw data.
		face, hasFace := asMap(fm["face"])
		pose, hasPose := asMap(fm["pose"])
		if hasFace || hasPose {
			payload := timeline.PosePayload{HasFace: hasFace}
			if hasFace {
				if gx, ok := getFloat(face, "gaze_x"); ok {
					payload.GazeX = gx
				}
				if gy, ok := getFloat(face, "gaze_y"); ok {
					payload.GazeY = gy
				}
				if box, ok := face["bbox"].(*timeline.BBox); ok {
					payload.BBox = box
				}
				if c, ok := getFloat(face, "confidence"); ok {
					payload.Confidence = c
				}
			}
			if hasPose {
				payload.Label = getString(pose, "label")
				if payload.BBox == nil {
					if box, ok := pose["bbox"].(*timeline.BBox); ok {
						payload.BBox = box
					}
				}
				if payload.Confidence == 0 {
					if c, ok := getFloat(pose, "confidence"); ok {
						payload.Confidence = c
					}
				}
			}
			tl.Add(timeline.Entry{
				Start:    start,
				Modality: timeline.ModalityPose,
				Payload:  payload,
			})
		}

		if expr, ok := asMap(fm["expression"]); ok {
			valence, _ := getFloat(expr, "valence")
			intensity, _ := getFloat(expr, "intensity")
			tl.Add(timeline.Entry{
				Start:    start,
				Modality: timeline.ModalityExpression,
				Payload: timeline.ExpressionPayload{
					Emotion:   getString(expr, "emotion"),
					Valence:   valence,
					Intensity: intensity,
				},
			})
		}

		if gesture, ok := asMap(fm["gesture"]); ok {
			conf, _ := getFloat(gesture, "confidence")
			tl.Add(timeline.Entry{
				Start:    start,
				Modality: timeline.ModalityGesture,
				Payload: timeline.GesturePayload{
					Label:      getString(gesture, "label"),
					Target:     getString(gesture, "target"),
					Confidence: conf,
				},
			})
		}
	}
}

func buildTextEntries(tl *timeline.Timeline, data map[string]any, meta timeline.VideoMetadata) {
	frames, _ := asSlice(data["frames"])
	for _, f := range frames {
		fm, ok := asMap(f)
		if !ok {
			continue
		}
		start, okStart := timeline.ParseTimestamp(fm["start"])
		if !okStart {
			continue
		}
		elems, _ := asSlice(fm["text_elements"])
		for _, e := range elems {
			em, ok := asMap(e)
			if !ok {
				continue
			}
			conf, _ := getFloat(em, "confidence")
			payload := timeline.TextOverlayPayload{
				Text:       getString(em, "text"),
				SizeClass:  getString(em, "size_class"),
				Position:   getString(em, "position"),
				Category:   getString(em, "category"),
				Confidence: conf,
			}
			if box, okB := em["bbox"].(*timeline.BBox); okB {
				payload.BBox = *box
			}
			tl.Add(timeline.Entry{
				Start:    start,
				Modality: timeline.ModalityTextOverlay,
				Payload:  payload,
			})
		}
	}

	stickers, _ := asSlice(data["stickers"])
	for _, s := range stickers {
		sm, ok := asMap(s)
		if !ok {
			continue
		}
		start, okStart := timeline.ParseTimestamp(sm["start"])
		if !okStart {
			continue
		}
		payload := timeline.StickerPayload{Kind: getString(sm, "kind")}
		if box, okB := sm["bbox"].(*timeline.BBox); okB {
			payload.BBox = *box
		}
		tl.Add(timeline.Entry{
			Start:    start,
			Modality: timeline.ModalitySticker,
			Payload:  payload,
		})
	}
}

func buildSpeechEntries(tl *timeline.Timeline, data map[string]any, meta timeline.VideoMetadata) {
	language, _ := data["language"].(string)
	segments, _ := asSlice(data["segments"])
	for _, s := range segments {
		sm, ok := asMap(s)
		if !ok {
			continue
		}
		start, okStart := timeline.ParseTimestamp(sm["start"])
		if !okStart {
			continue
		}
		conf, _ := getFloat(sm, "confidence")
		payload := timeline.SpeechPayload{
			Text:       getString(sm, "text"),
			Language:   language,
			Confidence: conf,
		}
		if words, okW := asSlice(sm["words"]); okW {
			for _, w := range words {
				wm, okM := asMap(w)
				if !okM {
					continue
				}
				ws, okWS := timeline.ParseTimestamp(wm["start"])
				we, okWE := timeline.ParseTimestamp(wm["end"])
				if !okWS || !okWE {
					continue
				}
				wc, _ := getFloat(wm, "confidence")
				payload.Words = append(payload.Words, timeline.WordTiming{
					Word:       getString(wm, "word"),
					Start:      ws,
					End:        we,
					Confidence: wc,
				})
			}
		}
		e := timeline.Entry{
			Start:    start,
			Modality: timeline.ModalitySpeech,
			Payload:  payload,
		}
		if end, okEnd := timeline.ParseTimestamp(sm["end"]); okEnd {
			e.End = &end
		}
		tl.Add(e)
	}
}
