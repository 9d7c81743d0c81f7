// Package metrics turns a typed input stream into speed, accuracy and
// consistency figures.
//
// Every function here is pure; timing is supplied by the caller.
package metrics

import "math"

// CharsPerWord is the standard word length used for WPM.
const CharsPerWord = 5

// Summary holds the figures derived from one session.
type Summary struct {
	Correct     int
	Incorrect   int
	Total       int
	Accuracy    float64
	GrossWPM    float64
	NetWPM      float64
	Consistency float64
}

// Compute derives all metrics for a session snapshot.
func Compute(reference, typed string, elapsedSeconds float64, samples []float64) Summary {
	correct, incorrect := ScoreCharacters(reference, typed)
	total := correct + incorrect
	return Summary{
		Correct:     correct,
		Incorrect:   incorrect,
		Total:       total,
		Accuracy:    Accuracy(correct, total),
		GrossWPM:    GrossWPM(total, elapsedSeconds),
		NetWPM:      NetWPM(correct, elapsedSeconds),
		Consistency: Consistency(samples),
	}
}

// ScoreCharacters compares typed against reference position by position.
// Positions past the end of reference count as incorrect.
func ScoreCharacters(reference, typed string) (correct, incorrect int) {
	ref := []rune(reference)
	for i, r := range []rune(typed) {
		if i < len(ref) && ref[i] == r {
			correct++
		} else {
			incorrect++
		}
	}
	return correct, incorrect
}

// Accuracy returns correct/total as a percentage; an empty input is 100%.
func Accuracy(correct, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(correct) / float64(total) * 100
}

// GrossWPM is the raw speed over every typed character.
func GrossWPM(totalChars int, elapsedSeconds float64) float64 {
	return wpm(totalChars, elapsedSeconds)
}

// NetWPM is the speed over correct characters only. It is the ranking metric.
func NetWPM(correctChars int, elapsedSeconds float64) float64 {
	return wpm(correctChars, elapsedSeconds)
}

func wpm(chars int, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return float64(chars) / CharsPerWord / elapsedSeconds * 60
}

// Consistency scores rhythm stability from a series of speed samples as
// 100 minus the coefficient of variation (in percent), floored at 0.
// Fewer than two samples score 100; a zero mean scores 0.
func Consistency(samples []float64) float64 {
	if len(samples) < 2 {
		return 100
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))
	if mean == 0 {
		return 0
	}
	var sq float64
	for _, s := range samples {
		d := s - mean
		sq += d * d
	}
	stdDev := math.Sqrt(sq / float64(len(samples)))
	return math.Max(0, 100-(stdDev/mean)*100)
}

// Round2 rounds to two decimal places, the precision results are submitted with.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
