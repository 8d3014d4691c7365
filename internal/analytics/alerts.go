package analytics

import (
	"math"
	"strings"

	"ReviewPulse/internal/domain"
)

// AlertConfig tunes both detectors.
type AlertConfig struct {
	SpikeK          float64
	SpikeFloor      int
	RepeatThreshold int
}

// DefaultAlertConfig flags days above mean+2σ with more than 3 negatives and
// keywords seen more than twice.
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{SpikeK: 2, SpikeFloor: 3, RepeatThreshold: 2}
}

// spikeTolerance absorbs float error when a day sits exactly on the threshold.
const spikeTolerance = 1e-9

// AlertEngine flags negative spikes and repeated complaint keywords.
type AlertEngine struct {
	keywords domain.KeywordTable
	cfg      AlertConfig
}

// NewAlertEngine copies the keyword table.
func NewAlertEngine(keywords domain.KeywordTable, cfg AlertConfig) *AlertEngine {
	return &AlertEngine{keywords: keywords.Clone(), cfg: cfg}
}

// Detect returns spike alerts in date order followed by repeated issues in
// aspect then keyword order.
func (e *AlertEngine) Detect(trend []domain.TrendPoint, reviews []domain.AnnotatedReview) []domain.Alert {
	alerts := []domain.Alert{}
	alerts = append(alerts, e.Spikes(trend)...)
	alerts = append(alerts, e.RepeatedIssues(reviews)...)
	return alerts
}

// Spikes flags days whose negative count reaches mean + k*stddev (population)
// and exceeds the floor. Fewer than two days, or a flat series, never flag.
func (e *AlertEngine) Spikes(trend []domain.TrendPoint) []domain.Alert {
	if len(trend) < 2 {
		return nil
	}

	var sum float64
	for _, p := range trend {
		sum += float64(p.Negative)
	}
	mean := sum / float64(len(trend))

	var variance float64
	for _, p := range trend {
		d := float64(p.Negative) - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(trend)))
	if stddev == 0 {
		return nil
	}

	threshold := mean + e.cfg.SpikeK*stddev
	var alerts []domain.Alert
	for _, p := range trend {
		neg := float64(p.Negative)
		if neg+spikeTolerance >= threshold && p.Negative > e.cfg.SpikeFloor {
			alerts = append(alerts, domain.NegativeSpikeAlert(p.Date, p.Negative))
		}
	}
	return alerts
}

// RepeatedIssues counts every configured keyword across the concatenated
// negative reviews. A keyword listed under several aspects is reported once,
// at its first aspect.
func (e *AlertEngine) RepeatedIssues(reviews []domain.AnnotatedReview) []domain.Alert {
	var negatives []string
	for _, r := range reviews {
		if r.Label == domain.Negative {
			negatives = append(negatives, r.Normalized)
		}
	}
	if len(negatives) == 0 {
		return nil
	}
	corpus := strings.Join(negatives, " ")

	seen := map[string]struct{}{}
	var alerts []domain.Alert
	for _, aspect := range domain.Aspects {
		for _, kw := range e.keywords[aspect] {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			if count := CountWord(corpus, kw); count > e.cfg.RepeatThreshold {
				alerts = append(alerts, domain.RepeatedIssueAlert(kw, count))
			}
		}
	}
	return alerts
}

// AspectWarning is a fixed operator hint raised when an aspect score is low.
type AspectWarning struct {
	Aspect    domain.Aspect
	Threshold float64
	Message   string
}

// DefaultAspectWarnings lists the delivery, taste and price hints.
func DefaultAspectWarnings() []AspectWarning {
	return []AspectWarning{
		{Aspect: domain.AspectDelivery, Threshold: 0.4, Message: "تاخیر در ارسال"},
		{Aspect: domain.AspectTaste, Threshold: 0.5, Message: "کیفیت طعم نیاز به بررسی"},
		{Aspect: domain.AspectPrice, Threshold: 0.4, Message: "قیمت بالا نسبت به کیفیت"},
	}
}

// SmartAlerts returns the messages of warnings whose aspect has evidence and
// scores below the threshold.
func SmartAlerts(warnings []AspectWarning, scores domain.AspectScores, mentions domain.AspectMentions) []string {
	out := []string{}
	for _, w := range warnings {
		if mentions[w.Aspect] == 0 {
			continue
		}
		if scores[w.Aspect] < w.Threshold {
			out = append(out, w.Message)
		}
	}
	return out
}
