package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/GlucoRisk/internal/model"
	"github.com/Skufu/GlucoRisk/internal/risk"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"

	sourceFlag = &urfave.StringFlag{
		Name:  "source",
		Usage: "Model source [file, postgres, remote]",
		Value: string(model.SourceFile),
	}

	modelFlag = &urfave.StringFlag{
		Name:    "model",
		Aliases: []string{"m"},
		Usage:   "Path to the model artifact (YAML or JSON)",
		Value:   "model/diabetes.yaml",
	}

	nameFlag = &urfave.StringFlag{
		Name:  "name",
		Usage: "Model name in the risk_models table",
		Value: "diabetes",
	}

	dbFlag = &urfave.StringFlag{
		Name:    "db",
		Usage:   "Postgres connection URL for the postgres source",
		EnvVars: []string{"DATABASE_URL"},
	}

	urlFlag = &urfave.StringFlag{
		Name:    "url",
		Usage:   "Model server URL for the remote source",
		EnvVars: []string{"MODEL_URL"},
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [text, json, yaml]",
		Value: formatText,
	}

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}
)

type output struct {
	risk.Assessment `yaml:",inline"`
	Recommendation  risk.Recommendation `json:"recommendation" yaml:"recommendation"`
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Errorf("fatal error: %v", err)
		os.Exit(1)
	}
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:            "riskctl",
		Version:         version,
		Usage:           "Evaluate diabetes risk from measurements without the web UI",
		HideHelpCommand: true,
		Flags:           []urfave.Flag{debugFlag},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*urfave.Command{
			{
				Name:    "evaluate",
				Aliases: []string{"e"},
				Usage:   "Score one set of measurements",
				Flags:   evaluateFlags(),
				Action:  cmdEvaluate,
			},
		},
	}
}

func evaluateFlags() []urfave.Flag {
	flags := []urfave.Flag{sourceFlag, modelFlag, nameFlag, dbFlag, urlFlag, formatFlag}
	for _, f := range risk.Fields {
		flags = append(flags, &urfave.Float64Flag{
			Name:     f.Key,
			Usage:    fmt.Sprintf("%s [%g-%g]", f.Label, f.Bound.Min, f.Bound.Max),
			Required: true,
		})
	}
	return flags
}

func cmdEvaluate(c *urfave.Context) error {
	in := risk.Input{
		Pregnancies:              flagValue(c, "pregnancies"),
		Glucose:                  flagValue(c, "glucose"),
		BloodPressure:            flagValue(c, "bloodPressure"),
		SkinThickness:            flagValue(c, "skinThickness"),
		Insulin:                  flagValue(c, "insulin"),
		BMI:                      flagValue(c, "bmi"),
		DiabetesPedigreeFunction: flagValue(c, "diabetesPedigreeFunction"),
		Age:                      flagValue(c, "age"),
	}
	rec, err := in.Record()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()

	predictor, closeFn, err := loadPredictor(ctx, c)
	if err != nil {
		return err
	}
	defer closeFn()

	a, err := risk.NewEvaluator(predictor).Evaluate(ctx, rec)
	if err != nil {
		return err
	}
	logrus.WithField("probability", a.Probability).Debug("evaluated")

	return printOutput(c.App.Writer, c.String(formatFlag.Name), output{
		Assessment:     a,
		Recommendation: risk.Recommendations(a.Tier),
	})
}

func flagValue(c *urfave.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Float64(name)
	return &v
}

func loadPredictor(ctx context.Context, c *urfave.Context) (model.Predictor, func(), error) {
	source, err := model.ParseSource(c.String(sourceFlag.Name))
	if err != nil {
		return nil, nil, err
	}

	opts := model.Options{
		Source:  source,
		Path:    c.String(modelFlag.Name),
		Name:    c.String(nameFlag.Name),
		URL:     c.String(urlFlag.Name),
		Timeout: 10 * time.Second,
		Columns: len(risk.Fields),
	}

	closeFn := func() {}
	var q model.RowQuerier
	if source == model.SourcePostgres {
		if c.String(dbFlag.Name) == "" {
			return nil, nil, errors.New("--db is required for the postgres source")
		}
		conn, err := pgx.Connect(ctx, c.String(dbFlag.Name))
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to database")
		}
		q = conn
		closeFn = func() { _ = conn.Close(context.Background()) }
	}

	p, err := model.Load(ctx, opts, q)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return p, closeFn, nil
}

func printOutput(w io.Writer, format string, out output) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(out), "error encoding json")
	case formatYAML:
		b, err := yaml.Marshal(out)
		if err != nil {
			return errors.Wrap(err, "error encoding yaml")
		}
		_, err = w.Write(b)
		return err
	case formatText, "":
		fmt.Fprintf(w, "Risk score: %d%% (%s)\n", out.Score, out.Tier)
		fmt.Fprintf(w, "%s\n%s\n", out.Recommendation.Headline, out.Recommendation.Summary)
		for _, a := range out.Recommendation.Advice {
			fmt.Fprintf(w, "  - %s\n", a)
		}
		return nil
	default:
		return errors.Errorf("unsupported format %q", format)
	}
}
