package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/GlucoRisk/internal/risk"
)

var (
	//go:embed templates/*.html assets/*
	embedFS embed.FS
)

type riskResponse struct {
	risk.Assessment
	Recommendation risk.Recommendation `json:"recommendation"`
}

func setupRouter(db HealthChecker, predictor risk.Predictor) *gin.Engine {
	evaluator := risk.NewEvaluator(predictor)

	router := gin.New()
	router.Use(
		requestLogger(logrus.StandardLogger()),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(embedFS, "templates/*.html")))
	assets, err := fs.Sub(embedFS, "assets")
	if err != nil {
		panic(err)
	}
	router.StaticFS("/static", http.FS(assets))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok", "db": "disabled", "model": "ok"}

		if db != nil {
			body["db"] = "ok"
			if err := db.Ping(ctx); err != nil {
				body["db"] = fmt.Sprintf("unhealthy: %v", err)
				status = http.StatusServiceUnavailable
			}
		}
		if pinger, ok := predictor.(HealthChecker); ok {
			if err := pinger.Ping(ctx); err != nil {
				body["model"] = fmt.Sprintf("unhealthy: %v", err)
				status = http.StatusServiceUnavailable
			}
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	})

	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "home.html", gin.H{"Page": "home"})
	})

	router.GET("/diabetes", func(c *gin.Context) {
		c.HTML(http.StatusOK, "diabetes.html", newFormView())
	})

	router.POST("/diabetes", func(c *gin.Context) {
		view := newFormView()
		rec, values, errs := bindMeasurementForm(c)
		view.Values = values
		if len(errs) > 0 {
			view.Errors = errs
			c.HTML(http.StatusUnprocessableEntity, "diabetes.html", view)
			return
		}

		assessment, err := evaluator.Evaluate(c.Request.Context(), rec)
		if err != nil {
			_ = c.Error(err)
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"Page":    "diabetes",
				"Message": err.Error(),
			})
			return
		}

		view.Result = &riskResponse{
			Assessment:     assessment,
			Recommendation: risk.Recommendations(assessment.Tier),
		}
		c.HTML(http.StatusOK, "diabetes.html", view)
	})

	router.POST("/api/risk", func(c *gin.Context) {
		var payload risk.Input
		if err := c.ShouldBindJSON(&payload); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusUnprocessableEntity, validationBody(err))
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		rec, err := payload.Record()
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, validationBody(err))
			return
		}

		assessment, err := evaluator.Evaluate(c.Request.Context(), rec)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "prediction_failed",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, riskResponse{
			Assessment:     assessment,
			Recommendation: risk.Recommendations(assessment.Tier),
		})
	})

	return router
}
