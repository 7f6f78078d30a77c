package testfeed

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pulse/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Constants for metric generation ranges.
const (
	downloadBase      = 20.0
	downloadRange     = 60.0
	predictionJitter  = 5.0
	temperatureBase   = 18.0
	temperatureRange  = 14.0
	pressureBase      = 990.0
	pressureRange     = 40.0
	timestampStepSecs = 1
)

// randomFloat returns a uniform float64 in [0, 1).
func randomFloat() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	if err != nil {
		return 0.5
	}
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateLines produces synthetic metric readings with timestamps
// spaced one step apart, ending at now.
func generateLines(ctx context.Context, config *Config, stats *Stats) ([]Line, error) {
	logger.Get().Info(ctx, "generating metric lines", logger.Int("count", config.NumLines))

	lines := make([]Line, 0, config.NumLines)
	start := time.Now().UTC().Add(-time.Duration(config.NumLines*timestampStepSecs) * time.Second)

	for i := 0; i < config.NumLines; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation canceled: %w", err)
		}

		ts := start.Add(time.Duration(i*timestampStepSecs) * time.Second)
		original := downloadBase + randomFloat()*downloadRange
		lines = append(lines, Line{
			Date:        ts.Format("2006-01-02"),
			Time:        ts.Format("15:04:05"),
			OriginalDL:  original,
			PredictedDL: original + (randomFloat()-0.5)*predictionJitter,
			Temperature: temperatureBase + randomFloat()*temperatureRange,
			Pressure:    pressureBase + randomFloat()*pressureRange,
		})
	}

	stats.LinesGenerated = len(lines)
	logger.Get().Info(ctx, "lines generated", logger.Int("count", len(lines)))
	return lines, nil
}

// Encode renders the line as a six-field CSV row.
func (l Line) Encode() string {
	fields := []string{
		l.Date,
		l.Time,
		strconv.FormatFloat(l.OriginalDL, 'f', 2, 64),
		strconv.FormatFloat(l.PredictedDL, 'f', 2, 64),
		strconv.FormatFloat(l.Temperature, 'f', 1, 64),
		strconv.FormatFloat(l.Pressure, 'f', 1, 64),
	}
	return strings.Join(fields, ",")
}
