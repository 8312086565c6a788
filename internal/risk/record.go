package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Bound is the inclusive range accepted for a single measurement.
type Bound struct {
	Min float64
	Max float64
}

// Field describes one input of the measurement form.
type Field struct {
	Key   string
	Name  string
	Label string
	Bound Bound
	Step  float64
}

// Fields lists the form inputs in the column order the model was trained on.
var Fields = []Field{
	{Key: "pregnancies", Name: "Pregnancies", Label: "Number of Pregnancies", Bound: Bound{0, 20}, Step: 1},
	{Key: "glucose", Name: "Glucose", Label: "Glucose Level", Bound: Bound{0, 300}, Step: 1},
	{Key: "bloodPressure", Name: "BloodPressure", Label: "Blood Pressure", Bound: Bound{0, 200}, Step: 1},
	{Key: "skinThickness", Name: "SkinThickness", Label: "Skin Thickness", Bound: Bound{0, 100}, Step: 1},
	{Key: "insulin", Name: "Insulin", Label: "Insulin Level", Bound: Bound{0, 900}, Step: 1},
	{Key: "bmi", Name: "BMI", Label: "BMI", Bound: Bound{0, 50}, Step: 0.1},
	{Key: "diabetesPedigreeFunction", Name: "DiabetesPedigreeFunction", Label: "Diabetes Pedigree Function", Bound: Bound{0, 2.5}, Step: 0.001},
	{Key: "age", Name: "Age", Label: "Age", Bound: Bound{0, 120}, Step: 1},
}

// Record is a complete set of patient measurements. It is never stored.
type Record struct {
	Pregnancies              float64 `json:"pregnancies"`
	Glucose                  float64 `json:"glucose"`
	BloodPressure            float64 `json:"bloodPressure"`
	SkinThickness            float64 `json:"skinThickness"`
	Insulin                  float64 `json:"insulin"`
	BMI                      float64 `json:"bmi"`
	DiabetesPedigreeFunction float64 `json:"diabetesPedigreeFunction"`
	Age                      float64 `json:"age"`
}

// Features returns the record as the feature vector expected by the model.
func (r Record) Features() []float64 {
	return []float64{
		r.Pregnancies,
		r.Glucose,
		r.BloodPressure,
		r.SkinThickness,
		r.Insulin,
		r.BMI,
		r.DiabetesPedigreeFunction,
		r.Age,
	}
}

// Input is a possibly incomplete record as submitted by a client. The
// binding bounds mirror Fields.
type Input struct {
	Pregnancies              *float64 `json:"pregnancies" form:"pregnancies" binding:"required,min=0,max=20"`
	Glucose                  *float64 `json:"glucose" form:"glucose" binding:"required,min=0,max=300"`
	BloodPressure            *float64 `json:"bloodPressure" form:"bloodPressure" binding:"required,min=0,max=200"`
	SkinThickness            *float64 `json:"skinThickness" form:"skinThickness" binding:"required,min=0,max=100"`
	Insulin                  *float64 `json:"insulin" form:"insulin" binding:"required,min=0,max=900"`
	BMI                      *float64 `json:"bmi" form:"bmi" binding:"required,min=0,max=50"`
	DiabetesPedigreeFunction *float64 `json:"diabetesPedigreeFunction" form:"diabetesPedigreeFunction" binding:"required,min=0,max=2.5"`
	Age                      *float64 `json:"age" form:"age" binding:"required,min=0,max=120"`
}

// Record validates the input and returns the complete record. Every missing
// or out-of-range field is reported in the returned *ValidationError. NaN and
// infinities fail the min/max comparisons.
func (in Input) Record() (Record, error) {
	if err := binding.Validator.ValidateStruct(in); err != nil {
		return Record{}, NewValidationError(err)
	}

	return Record{
		Pregnancies:              *in.Pregnancies,
		Glucose:                  *in.Glucose,
		BloodPressure:            *in.BloodPressure,
		SkinThickness:            *in.SkinThickness,
		Insulin:                  *in.Insulin,
		BMI:                      *in.BMI,
		DiabetesPedigreeFunction: *in.DiabetesPedigreeFunction,
		Age:                      *in.Age,
	}, nil
}

// NewValidationError converts validator failures into per-field messages.
// Errors that are not validation failures are returned unchanged.
func NewValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		f, ok := fieldByName(fe.StructField())
		if !ok {
			out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fe.Error()})
			continue
		}
		switch fe.Tag() {
		case "required":
			out.add(f, fmt.Sprintf("%s is required", f.Label))
		case "min", "max":
			out.add(f, fmt.Sprintf("%s must be between %s and %s",
				f.Label, formatBound(f.Bound.Min), formatBound(f.Bound.Max)))
		default:
			out.add(f, fmt.Sprintf("%s is invalid", f.Label))
		}
	}
	return out
}

func fieldByName(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldError is a single rejected input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every rejected input of a submission.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) add(f Field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: f.Key, Message: msg})
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid measurements: " + strings.Join(msgs, "; ")
}

// Messages returns the error messages keyed by field key.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func formatBound(v float64) string {
	return fmt.Sprintf("%g", v)
}
