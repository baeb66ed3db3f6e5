package symbols

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_RunDetection(t *testing.T) {
	got, err := Extract(strings.NewReader("ABCde FGH1 IJ"), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC", "FGH"}, got)
}

func TestExtract_DedupKeepsFirstSeenOrder(t *testing.T) {
	got, err := Extract(strings.NewReader("AAA BBB AAA CCC"), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, got)
}

func TestExtract_CapShortCircuits(t *testing.T) {
	// The reader fails past the first line; hitting the cap on line one must
	// return before the error is ever reachable.
	r := io.MultiReader(strings.NewReader("AAA BBB\n"), failReader{})
	got, err := Extract(r, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA"}, got)
}

func TestExtract_RunsDoNotSpanLines(t *testing.T) {
	got, err := Extract(strings.NewReader("xxAB\nCDEyy"), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"CDE"}, got)
}

func TestExtract_RunEndsAtDigitsAndLowercase(t *testing.T) {
	got, err := Extract(strings.NewReader("NYSE:AAPL9MSFT msftGOOG"), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"NYSE", "AAPL", "MSFT", "GOOG"}, got)
}

func TestExtract_ZeroCap(t *testing.T) {
	got, err := Extract(strings.NewReader("AAA"), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtract_ReadError(t *testing.T) {
	_, err := Extract(failReader{}, 10)
	assert.Error(t, err)
}

func TestExtractFile_MissingFile(t *testing.T) {
	_, err := ExtractFile("no/such/file.html", 10)
	assert.Error(t, err)
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, errors.New("boom") }
