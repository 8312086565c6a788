package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/GlucoRisk/internal/risk"
)

const testModel = `
name: always-high
intercept: 3
coefficients: [0, 0, 0, 0, 0, 0, 0, 0]
`

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testModel), 0600))
	return path
}

func measurementArgs() []string {
	return []string{
		"--pregnancies", "2",
		"--glucose", "148",
		"--bloodPressure", "72",
		"--skinThickness", "35",
		"--insulin", "0",
		"--bmi", "33.6",
		"--diabetesPedigreeFunction", "0.627",
		"--age", "50",
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"riskctl"}, args...))
	return out.String(), err
}

func TestEvaluateText(t *testing.T) {
	args := append([]string{"evaluate", "--model", writeModel(t)}, measurementArgs()...)
	out, err := run(t, args...)
	require.NoError(t, err)
	// sigmoid(3) = 0.9526
	assert.Contains(t, out, "Risk score: 95% (high_risk)")
	assert.Contains(t, out, "High risk of diabetes")
}

func TestEvaluateJSON(t *testing.T) {
	args := append([]string{"evaluate", "--format", "json", "--model", writeModel(t)}, measurementArgs()...)
	out, err := run(t, args...)
	require.NoError(t, err)

	var got struct {
		Score    int  `json:"score"`
		HighRisk bool `json:"highRisk"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 95, got.Score)
	assert.True(t, got.HighRisk)
}

func TestEvaluateYAML(t *testing.T) {
	args := append([]string{"evaluate", "--format", "yaml", "--model", writeModel(t)}, measurementArgs()...)
	out, err := run(t, args...)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, 95, got["score"])
	assert.Equal(t, true, got["highRisk"])
	assert.Equal(t, "high_risk", got["tier"])
	assert.NotContains(t, got, "highrisk")
	assert.Contains(t, got, "recommendation")
}

func TestPrintOutputKeysMatchAcrossFormats(t *testing.T) {
	out := output{
		Assessment:     risk.Assessment{Probability: 0.8, Score: 80, HighRisk: true, Tier: risk.TierHigh},
		Recommendation: risk.Recommendations(risk.TierHigh),
	}

	var j, y bytes.Buffer
	require.NoError(t, printOutput(&j, formatJSON, out))
	require.NoError(t, printOutput(&y, formatYAML, out))

	var fromJSON, fromYAML map[string]any
	require.NoError(t, json.Unmarshal(j.Bytes(), &fromJSON))
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &fromYAML))
	for k := range fromJSON {
		assert.Contains(t, fromYAML, k)
	}
	assert.Contains(t, y.String(), "highRisk: true")
}

func TestEvaluateBundledModel(t *testing.T) {
	args := append([]string{"evaluate", "--model", filepath.Join("..", "..", "model", "diabetes.yaml")}, measurementArgs()...)
	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Risk score:")
}

func TestEvaluateRejectsOutOfBounds(t *testing.T) {
	args := append([]string{"evaluate", "--model", writeModel(t)}, measurementArgs()...)
	args = append(args, "--age", "130")
	_, err := run(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Age must be between 0 and 120")
}

func TestEvaluateMissingModel(t *testing.T) {
	args := append([]string{"evaluate", "--model", filepath.Join(t.TempDir(), "nope.yaml")}, measurementArgs()...)
	_, err := run(t, args...)
	assert.Error(t, err)
}

func TestEvaluatePostgresRequiresDB(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	args := append([]string{"evaluate", "--source", "postgres"}, measurementArgs()...)
	_, err := run(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db is required")
}
