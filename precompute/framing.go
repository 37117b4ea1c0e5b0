package precompute

import (
	"math"

	"github.com/TumiLabsJN/rumiai-go/algorithms/stats"
	"github.com/TumiLabsJN/rumiai-go/timeline"
)

// Shot-type thresholds on normalized subject bbox area.
const (
	closeShotArea = 0.35
	farShotArea   = 0.10
)

// FramingExtractor measures human presence: screen-time ratios, shot-type
// distribution, framing volatility, absences, gaze steadiness and how the
// framing approach evolves over the video.
type FramingExtractor struct{}

func (f *FramingExtractor) AnalysisType() string { return AnalysisPersonFraming }

func (f *FramingExtractor) Extract(tl *timeline.Timeline, meta timeline.VideoMetadata) (FeatureBundle, error) {
	duration := tl.Duration()
	seconds := int(math.Ceil(duration))
	if seconds < 1 {
		seconds = 1
	}

	faceSeconds := make([]bool, seconds)
	personSeconds := make([]bool, seconds)
	shotTypePerSecond := make([]string, seconds)
	var gazeXs, gazeYs []float64

	secIdx := func(t float64) int {
		idx := int(t)
		if idx >= seconds {
			idx = seconds - 1
		}
		return idx
	}

	for _, e := range tl.ByModality(timeline.ModalityPose) {
		pose, ok := e.Pose()
		if !ok {
			continue
		}
		idx := secIdx(e.Start.Seconds())
		if pose.HasFace {
			faceSeconds[idx] = true
			if pose.GazeX != 0 || pose.GazeY != 0 {
				gazeXs = append(gazeXs, pose.GazeX)
				gazeYs = append(gazeYs, pose.GazeY)
			}
		}
		if pose.BBox != nil {
			shotTypePerSecond[idx] = classifyShot(pose.BBox.Area())
		}
	}

	for _, e := range tl.ByModality(timeline.ModalityObject) {
		obj, ok := e.Object()
		if !ok || obj.Class != "person" {
			continue
		}
		idx := secIdx(e.Start.Seconds())
		personSeconds[idx] = true
		if obj.BBox != nil && shotTypePerSecond[idx] == "" {
			shotTypePerSecond[idx] = classifyShot(obj.BBox.Area())
		}
	}

	faceCount, personCount := 0, 0
	for i := 0; i < seconds; i++ {
		if faceSeconds[i] {
			faceCount++
		}
		if personSeconds[i] || faceSeconds[i] {
			personCount++
		}
	}

	// Shot distribution and framing transitions
	shotCounts := map[string]int{}
	transitions := 0
	prev := ""
	for _, st := range shotTypePerSecond {
		if st == "" {
			continue
		}
		shotCounts[st]++
		if prev != "" && st != prev {
			transitions++
		}
		prev = st
	}
	shotDistribution := map[string]float64{}
	totalShotSeconds := 0
	for _, c := range shotCounts {
		totalShotSeconds += c
	}
	for st, c := range shotCounts {
		shotDistribution[st] = stats.RoundTo(float64(c)/float64(totalShotSeconds), 3)
	}

	// Absence runs over combined presence
	absences, longestAbsence := absenceRuns(faceSeconds, personSeconds)

	gazeSteadiness := classifyGazeSteadiness(gazeXs, gazeYs)

	evolution := classifyEvolution(shotTypePerSecond, personSeconds)

	present := presentModalities(tl)
	return FeatureBundle{
		"face_screen_time_ratio":   stats.RoundTo(float64(faceCount)/float64(seconds), 3),
		"person_screen_time_ratio": stats.RoundTo(float64(personCount)/float64(seconds), 3),
		"shot_type_distribution":   shotDistribution,
		"framing_volatility":       stats.RoundTo(float64(transitions)/float64(seconds), 3),
		"subject_absence_count":    absences,
		"longest_absence_duration": longestAbsence,
		"gaze_steadiness":          gazeSteadiness,
		"temporal_evolution":       evolution,
		"data_completeness": dataCompleteness(present,
			timeline.ModalityPose, timeline.ModalityObject),
		"confidence": 0.85,
	}, nil
}

func classifyShot(area float64) string {
	switch {
	case area > closeShotArea:
		return "close"
	case area < farShotArea:
		return "far"
	default:
		return "medium"
	}
}

func absenceRuns(faceSeconds, personSeconds []bool) (count, longest int) {
	run := 0
	for i := range faceSeconds {
		if faceSeconds[i] || personSeconds[i] {
			if run > 0 {
				count++
				if run > longest {
					longest = run
				}
			}
			run = 0
			continue
		}
		run++
	}
	if run > 0 {
		count++
		if run > longest {
			longest = run
		}
	}
	return count, longest
}

func classifyGazeSteadiness(xs, ys []float64) string {
	if len(xs) < 2 {
		return "unknown"
	}
	variance := stats.Describe(xs).Variance + stats.Describe(ys).Variance
	switch {
	case variance < 0.01:
		return "steady"
	case variance < 0.05:
		return "moderate"
	default:
		return "wandering"
	}
}

// classifyEvolution compares the first and last thirds of the video.
func classifyEvolution(shotTypes []string, personSeconds []bool) string {
	n := len(shotTypes)
	if n < 3 {
		return "consistent_approach"
	}
	third := n / 3

	intimacy := func(types []string) float64 {
		score, counted := 0.0, 0
		for _, st := range types {
			switch st {
			case "close":
				score += 2
				counted++
			case "medium":
				score++
				counted++
			case "far":
				counted++
			}
		}
		if counted == 0 {
			return -1
		}
		return score / float64(counted)
	}

	personShare := func(seconds []bool) float64 {
		if len(seconds) == 0 {
			return 0
		}
		n := 0
		for _, p := range seconds {
			if p {
				n++
			}
		}
		return float64(n) / float64(len(seconds))
	}

	firstIntimacy := intimacy(shotTypes[:third])
	lastIntimacy := intimacy(shotTypes[n-third:])
	firstPerson := personShare(personSeconds[:third])
	lastPerson := personShare(personSeconds[n-third:])

	// Object-vs-person handoff dominates when presence flips hard
	switch {
	case firstPerson < 0.25 && lastPerson > 0.6:
		return "product_to_person"
	case firstPerson > 0.6 && lastPerson < 0.25:
		return "person_to_product"
	}

	if firstIntimacy >= 0 && lastIntimacy >= 0 {
		midIntimacy := intimacy(shotTypes[third : n-third])
		switch {
		case lastIntimacy-firstIntimacy > 0.4:
			return "increasing_intimacy"
		case firstIntimacy-lastIntimacy > 0.4:
			return "decreasing_intimacy"
		case midIntimacy >= 0 && firstIntimacy-midIntimacy > 0.4 && lastIntimacy-midIntimacy > 0.4:
			return "bookend_pattern"
		}
	}
	return "consistent_approach"
}
