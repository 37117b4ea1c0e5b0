package timeline

import (
	"math"
	"testing"
)

func TestParseTimestampFormats(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"float seconds", 12.5, 12.5, true},
		{"integer seconds", 12, 12, true},
		{"suffixed seconds", "2s", 2, true},
		{"range start", "0-1s", 0, true},
		{"range start nonzero", "15-16s", 15, true},
		{"clock mm:ss", "0:03", 3, true},
		{"clock mm:ss minutes", "01:30", 90, true},
		{"clock hh:mm:ss", "01:02:30", 3750, true},
		{"plain numeric string", "2.5", 2.5, true},
		{"empty string", "", 0, false},
		{"garbage", "bad", 0, false},
		{"negative float", -1.0, 0, false},
		{"negative string", "-3s", 0, false},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tc.input)
			if ok != tc.ok {
				t.Fatalf("ParseTimestamp(%v) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && got.Seconds() != tc.want {
				t.Errorf("ParseTimestamp(%v) = %v, want %v", tc.input, got.Seconds(), tc.want)
			}
		})
	}
}

func TestFrameSecondsRoundTrip(t *testing.T) {
	for _, fps := range []float64{24, 29.97, 30, 60} {
		for frame := 0; frame <= 300; frame++ {
			sec := FrameToSeconds(frame, fps)
			if got := SecondsToFrame(sec, fps); got != frame {
				t.Fatalf("round trip failed: frame %d at %v fps -> %v -> %d",
					frame, fps, sec.Seconds(), got)
			}
		}
	}
}

func TestFrameToSecondsDefaultFPS(t *testing.T) {
	if got := FrameToSeconds(60, 0); got.Seconds() != 2 {
		t.Errorf("zero fps should fall back to %v, got %v seconds for frame 60",
			DefaultOriginalFPS, got.Seconds())
	}
}

func TestClampToDuration(t *testing.T) {
	got, clamped := ClampToDuration(100, 10)
	if !clamped || got.Seconds() != 10 {
		t.Errorf("ClampToDuration(100, 10) = %v, %v; want 10, true", got.Seconds(), clamped)
	}
	got, clamped = ClampToDuration(5, 10)
	if clamped || got.Seconds() != 5 {
		t.Errorf("ClampToDuration(5, 10) = %v, %v; want 5, false", got.Seconds(), clamped)
	}
}

func TestFPSRegistryDefaults(t *testing.T) {
	r := &FPSRegistry{entries: map[string]FPSInfo{}}
	info := r.Lookup("unregistered")
	if info.Original != DefaultOriginalFPS || info.Extraction != DefaultExtractionFPS {
		t.Errorf("unregistered lookup = %+v, want defaults", info)
	}

	r.Register(FPSInfo{VideoID: "v1", Original: 60, Extraction: 2})
	r.Register(FPSInfo{VideoID: "v1", Original: 24}) // first write wins
	if got := r.OriginalFPS("v1"); got != 60 {
		t.Errorf("registry overwrote first registration: got %v", got)
	}
}
