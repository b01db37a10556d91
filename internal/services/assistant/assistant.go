package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-1.5-flash"

var (
	ErrDisabled    = errors.New("description assistant is not configured")
	ErrEmptyAnswer = errors.New("the model returned no text")
)

const systemPrompt = `Eres redactora de una tienda chilena de decoración y mobiliario de autor llamada Deco Ambiente.
Escribe descripciones de producto en español neutro de Chile, en dos o tres frases, con tono cálido y elegante.
Menciona materiales y usos cuando se conozcan. No inventes medidas ni precios. No uses emojis ni comillas.`

// Generator is the part of the Gemini client the writer needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DescriptionWriter drafts product descriptions for the admin form.
type DescriptionWriter struct {
	gen     Generator
	timeout time.Duration
}

func NewDescriptionWriter(gen Generator) *DescriptionWriter {
	return &DescriptionWriter{gen: gen, timeout: 30 * time.Second}
}

func (w *DescriptionWriter) Enabled() bool {
	return w != nil && w.gen != nil
}

func (w *DescriptionWriter) Draft(ctx context.Context, p models.Product) (string, error) {
	if !w.Enabled() {
		return "", ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	text, err := w.gen.Generate(ctx, BuildPrompt(p))
	if err != nil {
		return "", fmt.Errorf("generate description: %w", err)
	}
	text = strings.Trim(strings.TrimSpace(text), `"`)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}

func BuildPrompt(p models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Producto: %s\n", p.Name)
	if p.Category != "" {
		fmt.Fprintf(&b, "Categoría: %s\n", p.Category)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "Etiquetas: %s\n", strings.Join(p.Tags, ", "))
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Descripción actual: %s\n", p.Description)
	}
	b.WriteString("Redacta la descripción para la ficha del catálogo.")
	return b.String()
}

// GeminiGenerator calls the Gemini API through generative-ai-go.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrDisabled
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0.7)
	m.SetMaxOutputTokens(256)
	m.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	logrus.WithField("model", model).Info("Gemini description assistant enabled")
	return &GeminiGenerator{client: client, model: m}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String(), nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
