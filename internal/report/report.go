package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go-image-forensics/internal/engine"
)

// Verdict is the overall classification of a detection run.
type Verdict string

const (
	VerdictHigh     Verdict = "high probability of manipulation"
	VerdictModerate Verdict = "moderate suspicion"
	VerdictLow      Verdict = "low probability"
)

// Classify maps a mean suspicion score onto a verdict.
func Classify(mean float64) Verdict {
	switch {
	case mean > 70:
		return VerdictHigh
	case mean > 40:
		return VerdictModerate
	default:
		return VerdictLow
	}
}

// StatusLabel maps a single detector score onto a textual status.
func StatusLabel(score float64) string {
	switch {
	case score > 70:
		return "HIGH SUSPICION"
	case score > 40:
		return "MODERATE"
	default:
		return "NORMAL"
	}
}

// DetectorSummary is the reportable outcome of one detector.
type DetectorSummary struct {
	Name   string          `json:"name"`
	Score  float64         `json:"score"`
	Status string          `json:"status"`
	Flags  map[string]bool `json:"flags,omitempty"`
	Failed bool            `json:"failed"`
	Error  string          `json:"error,omitempty"`
}

// Summary condenses a ResultSet into scores and a verdict. The mean is
// the unweighted arithmetic mean of the successful detectors only;
// failed detectors are listed but never counted.
type Summary struct {
	ImageRef    string            `json:"image_ref"`
	GeneratedAt time.Time         `json:"generated_at"`
	Detectors   []DetectorSummary `json:"detectors"`
	MeanScore   float64           `json:"mean_score"`
	Verdict     Verdict           `json:"verdict"`
}

// Build summarizes a result set. Entries keep battery order.
func Build(imageRef string, rs *engine.ResultSet) *Summary {
	s := &Summary{
		ImageRef:    imageRef,
		GeneratedAt: time.Now(),
		Detectors:   make([]DetectorSummary, 0, len(rs.Entries)),
	}

	sum, counted := 0.0, 0
	for _, e := range rs.Entries {
		d := DetectorSummary{Name: e.Name}
		if e.Err != nil {
			d.Failed = true
			d.Error = e.Err.Error()
		} else {
			d.Score = e.Result.Score
			d.Status = StatusLabel(e.Result.Score)
			d.Flags = e.Result.Flags
			sum += e.Result.Score
			counted++
		}
		s.Detectors = append(s.Detectors, d)
	}
	if counted > 0 {
		s.MeanScore = sum / float64(counted)
	}
	s.Verdict = Classify(s.MeanScore)
	return s
}

// Render formats the summary as a plain-text report.
func (s *Summary) Render() string {
	rule := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "IMAGE MANIPULATION DETECTION REPORT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "\nAnalysis Date: %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Image: %s\n\n", s.ImageRef)
	fmt.Fprintln(&b, "ANALYSIS SUMMARY")
	fmt.Fprintln(&b, thin)

	for i, d := range s.Detectors {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, detectorTitle(d.Name))
		if d.Failed {
			fmt.Fprintf(&b, "   Status: FAILED (%s)\n", d.Error)
			continue
		}
		for _, flag := range flagLines(d.Flags) {
			fmt.Fprintf(&b, "   %s\n", flag)
		}
		fmt.Fprintf(&b, "   Suspicion Score: %.1f/100\n", d.Score)
		fmt.Fprintf(&b, "   Status: %s\n", d.Status)
	}

	fmt.Fprintf(&b, "\n%s\nOVERALL VERDICT\n%s\n", rule, rule)
	fmt.Fprintf(&b, "\nAverage Suspicion Score: %.1f/100\n\n", s.MeanScore)
	switch s.Verdict {
	case VerdictHigh:
		fmt.Fprintln(&b, "HIGH PROBABILITY OF MANIPULATION")
		fmt.Fprintln(&b, "   Recommendation: Image is likely manipulated")
	case VerdictModerate:
		fmt.Fprintln(&b, "MODERATE SUSPICION")
		fmt.Fprintln(&b, "   Recommendation: Further investigation recommended")
	default:
		fmt.Fprintln(&b, "LOW PROBABILITY OF MANIPULATION")
		fmt.Fprintln(&b, "   Recommendation: Image appears authentic")
	}
	fmt.Fprintf(&b, "\n%s\nEnd of Report\n%s\n", rule, rule)
	return b.String()
}

func detectorTitle(name string) string {
	switch name {
	case "histogram":
		return "Histogram Manipulation Analysis"
	case "ela":
		return "Error Level Analysis (ELA)"
	case "noise":
		return "Noise Inconsistency Analysis"
	case "bitdepth":
		return "Bit-Depth Analysis"
	case "clone":
		return "Clone/Copy-Move Detection"
	case "frequency":
		return "Frequency Domain Analysis"
	case "contrast":
		return "Contrast Manipulation Analysis"
	case "blur":
		return "Blur Inconsistency Analysis"
	case "bias_field":
		return "Lighting Inconsistency Analysis"
	default:
		return name
	}
}

// flagLines renders boolean findings in a stable order.
func flagLines(flags map[string]bool) []string {
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		state := "NO"
		if flags[name] {
			state = "YES"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", flagTitle(name), state))
	}
	return lines
}

func flagTitle(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
