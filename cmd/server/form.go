package main

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/GlucoRisk/internal/risk"
)

const formErrorKey = "form"

type formView struct {
	Page   string
	Fields []risk.Field
	Values map[string]string
	Errors map[string]string
	Result *riskResponse
}

func newFormView() formView {
	return formView{
		Page:   "diabetes",
		Fields: risk.Fields,
		Values: map[string]string{},
		Errors: map[string]string{},
	}
}

// bindMeasurementForm binds the measurement form. It returns the submitted
// values for redisplay and, when the record is not usable, the error message
// per field key.
func bindMeasurementForm(c *gin.Context) (risk.Record, map[string]string, map[string]string) {
	values := make(map[string]string, len(risk.Fields))
	if err := c.Request.ParseForm(); err != nil {
		return risk.Record{}, values, map[string]string{formErrorKey: "The form could not be read."}
	}
	// gin binds an empty number input as 0; drop blanks so they count as missing.
	dropBlank(c.Request.Form)
	dropBlank(c.Request.PostForm)
	for _, f := range risk.Fields {
		values[f.Key] = c.Request.PostForm.Get(f.Key)
	}

	var in risk.Input
	if err := c.ShouldBind(&in); err != nil {
		return risk.Record{}, values, formErrors(err)
	}
	rec, err := in.Record()
	if err != nil {
		return risk.Record{}, values, formErrors(err)
	}
	return rec, values, nil
}

func formErrors(err error) map[string]string {
	var verr *risk.ValidationError
	if errors.As(risk.NewValidationError(err), &verr) {
		return verr.Messages()
	}
	return map[string]string{formErrorKey: "All measurements must be numbers."}
}

func dropBlank(form url.Values) {
	for k, vs := range form {
		if len(vs) == 0 || strings.TrimSpace(vs[0]) == "" {
			delete(form, k)
			continue
		}
		form[k] = []string{strings.TrimSpace(vs[0])}
	}
}

func validationBody(err error) gin.H {
	body := gin.H{"error": "validation_failed"}
	var verr *risk.ValidationError
	if errors.As(risk.NewValidationError(err), &verr) {
		body["fields"] = verr.Fields
	} else {
		body["details"] = err.Error()
	}
	return body
}
