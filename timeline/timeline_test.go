package timeline

import "testing"

func entryAt(start float64, m Modality) Entry {
	return Entry{Start: Timestamp(start), Modality: m, Payload: nil}
}

func TestTimelineClampDropOrder(t *testing.T) {
	tl := New(10)
	tl.Add(entryAt(-0.1, ModalityObject))
	tl.Add(entryAt(0.0, ModalityObject))
	tl.Add(entryAt(5.0, ModalityObject))
	tl.Add(entryAt(100.0, ModalityObject))
	tl.Freeze()

	if tl.Len() != 3 {
		t.Fatalf("want 3 entries, got %d", tl.Len())
	}
	want := []float64{0.0, 5.0, 10.0}
	for i, e := range tl.Entries() {
		if e.Start.Seconds() != want[i] {
			t.Errorf("entry %d start = %v, want %v", i, e.Start.Seconds(), want[i])
		}
	}
	if tl.Dropped != 1 || tl.Clamped != 1 {
		t.Errorf("dropped=%d clamped=%d, want 1 and 1", tl.Dropped, tl.Clamped)
	}
}

func TestTimelineStableOrderForEqualStarts(t *testing.T) {
	tl := New(10)
	tl.Add(Entry{Start: 2, Modality: ModalitySceneChange, Payload: SceneChangePayload{ShotID: 1}})
	tl.Add(Entry{Start: 2, Modality: ModalityObject, Payload: ObjectPayload{Class: "person"}})
	tl.Add(Entry{Start: 1, Modality: ModalitySpeech, Payload: SpeechPayload{Text: "hi"}})
	tl.Freeze()

	entries := tl.Entries()
	if entries[0].Modality != ModalitySpeech {
		t.Fatalf("first entry should be the earliest start, got %s", entries[0].Modality)
	}
	if entries[1].Modality != ModalitySceneChange || entries[2].Modality != ModalityObject {
		t.Errorf("equal starts must keep insertion order, got %s then %s",
			entries[1].Modality, entries[2].Modality)
	}
}

func TestTimelineSwapsInvertedRange(t *testing.T) {
	tl := New(10)
	end := Timestamp(1.0)
	tl.Add(Entry{Start: 3, End: &end, Modality: ModalitySpeech})
	tl.Freeze()

	e := tl.Entries()[0]
	if e.Start.Seconds() != 1 || e.End == nil || e.End.Seconds() != 3 {
		t.Errorf("inverted range not swapped: start=%v end=%v", e.Start, e.End)
	}
	if tl.Swapped != 1 {
		t.Errorf("swap not counted: %d", tl.Swapped)
	}
}

func TestTimelineQueries(t *testing.T) {
	tl := New(10)
	tl.Add(entryAt(0.5, ModalityObject))
	tl.Add(entryAt(1.2, ModalityTextOverlay))
	tl.Add(entryAt(1.8, ModalityObject))
	tl.Add(entryAt(9.0, ModalitySpeech))
	tl.Freeze()

	if got := len(tl.ByModality(ModalityObject)); got != 2 {
		t.Errorf("ByModality(object) = %d entries, want 2", got)
	}
	if got := len(tl.Range(1, 2)); got != 2 {
		t.Errorf("Range(1,2) = %d entries, want 2", got)
	}
	if got := tl.CountInSecond(1); got != 2 {
		t.Errorf("CountInSecond(1) = %d, want 2", got)
	}
	if got := tl.CountInSecond(4); got != 0 {
		t.Errorf("CountInSecond(4) = %d, want 0", got)
	}
}
