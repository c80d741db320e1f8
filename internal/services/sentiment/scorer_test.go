package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinEdge/internal/domain/models"
	"FinEdge/pkg/logger"
)

type fakeNews struct {
	headlines []models.Headline
	err       error
}

func (f *fakeNews) GetHeadlines(_ context.Context, _ string) ([]models.Headline, error) {
	return f.headlines, f.err
}

type fakeReadings struct {
	saved []models.SentimentReading
}

func (f *fakeReadings) SaveReading(_ context.Context, r models.SentimentReading) error {
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeReadings) LatestReading(_ context.Context, _ string) (*models.SentimentReading, error) {
	return nil, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func TestPolarityDirection(t *testing.T) {
	assert.Positive(t, Polarity("Company reports excellent growth, great outlook"))
	assert.Negative(t, Polarity("Terrible losses, awful quarter, disaster for investors"))
	assert.Zero(t, Polarity(""))
}

func TestLabelBands(t *testing.T) {
	assert.Equal(t, LabelVeryPositive, Label(0.5))
	assert.Equal(t, LabelPositive, Label(0.2))
	assert.Equal(t, LabelNeutral, Label(0.0))
	assert.Equal(t, LabelNegative, Label(-0.2))
	assert.Equal(t, LabelVeryNegative, Label(-0.5))

	// band edges fall to the lower label
	assert.Equal(t, LabelPositive, Label(0.3))
	assert.Equal(t, LabelNeutral, Label(0.1))
	assert.Equal(t, LabelNegative, Label(-0.1))
	assert.Equal(t, LabelVeryNegative, Label(-0.3))
}

func TestScoreDisabled(t *testing.T) {
	s := NewScorer(false, &fakeNews{}, &fakeReadings{}, testLogger(t))
	score, detail, err := s.Score(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.Zero(t, detail.Articles)
}

func TestScoreNoNews(t *testing.T) {
	readings := &fakeReadings{}
	s := NewScorer(true, &fakeNews{}, readings, testLogger(t))
	score, detail, err := s.Score(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.Zero(t, detail.Articles)
	assert.Empty(t, readings.saved)
}

func TestScoreProviderError(t *testing.T) {
	s := NewScorer(true, &fakeNews{err: errors.New("feed down")}, &fakeReadings{}, testLogger(t))
	_, _, err := s.Score(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestScoreWeightsRecentNews(t *testing.T) {
	positive := models.Headline{Title: "Fantastic earnings, wonderful growth and a great outlook"}
	negative := models.Headline{Title: "Horrible losses and an awful collapse frighten investors"}

	// latest headline carries the highest weight
	s := NewScorer(true, &fakeNews{headlines: []models.Headline{negative, positive}}, &fakeReadings{}, testLogger(t))
	upScore, upDetail, err := s.Score(context.Background(), "AAPL")
	require.NoError(t, err)

	s = NewScorer(true, &fakeNews{headlines: []models.Headline{positive, negative}}, &fakeReadings{}, testLogger(t))
	downScore, _, err := s.Score(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Positive(t, upScore)
	assert.Negative(t, downScore)
	assert.Equal(t, 2, upDetail.Articles)
	require.Len(t, upDetail.Headlines, 2)
	assert.Equal(t, LabelVeryNegative, upDetail.Headlines[0].Label)
}

func TestScoreCachesReadingAndCapsHeadlines(t *testing.T) {
	headlines := make([]models.Headline, 15)
	for i := range headlines {
		headlines[i] = models.Headline{Title: "Strong gains and excellent momentum"}
	}
	readings := &fakeReadings{}
	s := NewScorer(true, &fakeNews{headlines: headlines}, readings, testLogger(t))

	score, detail, err := s.Score(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Positive(t, score)
	assert.Equal(t, 15, detail.Articles)
	assert.Len(t, detail.Headlines, 10)
	require.Len(t, readings.saved, 1)
	assert.Equal(t, "AAPL", readings.saved[0].Symbol)
	assert.Equal(t, 15, readings.saved[0].Articles)
}
