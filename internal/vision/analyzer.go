// Package vision answers questions about food photos. Results are never
// stored; each submission is a fresh collaborator call.
package vision

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"nutrivision-go/internal/ai"
	"nutrivision-go/internal/metrics"
)

type Completer interface {
	Complete(ctx context.Context, r ai.Request) (string, error)
}

type ImageValidator interface {
	Validate(raw []byte) ([]byte, string, error)
}

type task struct {
	feature string
	system  string
	prompt  string
}

var (
	freshnessTask = task{
		feature: "freshness",
		system:  "You are a fruit and vegetable quality inspector. You analyze images of produce to determine their freshness based on color, texture, mold presence, bruises, and overall condition.",
		prompt:  "Is this fruit or vegetable fresh? Give reasons.",
	}
	dishTask = task{
		feature: "dish",
		system:  "You are a professional food analyst. Your job is to identify dishes from images and estimate their nutritional information including calories, protein, carbs, fat, and sugar content.",
		prompt:  "Identify the dish and provide its approximate nutritional value (calories, protein, carbs, fat, sugar).",
	}
)

type Analyzer struct {
	images  ImageValidator
	ai      Completer
	model   string
	metrics *metrics.Metrics
	log     *logrus.Logger
}

func NewAnalyzer(images ImageValidator, completer Completer, model string, m *metrics.Metrics, log *logrus.Logger) *Analyzer {
	return &Analyzer{images: images, ai: completer, model: model, metrics: m, log: log}
}

// CheckFreshness judges whether the pictured produce is fresh.
func (a *Analyzer) CheckFreshness(ctx context.Context, raw []byte) (string, error) {
	return a.run(ctx, freshnessTask, raw)
}

// IdentifyDish names the pictured dish and estimates its nutrition.
func (a *Analyzer) IdentifyDish(ctx context.Context, raw []byte) (string, error) {
	return a.run(ctx, dishTask, raw)
}

func (a *Analyzer) run(ctx context.Context, t task, raw []byte) (string, error) {
	img, mime, err := a.images.Validate(raw)
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := a.ai.Complete(ctx, ai.Request{
		Model:  a.model,
		System: t.system,
		User:   []ai.Part{ai.Text(t.prompt), ai.Image(mime, img)},
	})
	a.metrics.ObserveAI(t.feature, err, time.Since(start))
	if err != nil {
		return "", errors.Wrapf(err, "%s analysis", t.feature)
	}
	a.log.WithField("feature", t.feature).Debug("vision analysis completed")
	return out, nil
}
