package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edubot/internal/logger"
)

type fakeModel struct {
	educational   bool
	classifyErr   error
	completion    string
	completeErr   error
	classifyCalls []string
	completeCalls []string
}

func (f *fakeModel) Classify(_ context.Context, text string) (bool, error) {
	f.classifyCalls = append(f.classifyCalls, text)
	return f.educational, f.classifyErr
}

func (f *fakeModel) Complete(_ context.Context, prompt string) (string, error) {
	f.completeCalls = append(f.completeCalls, prompt)
	return f.completion, f.completeErr
}

func newClassifier(m Model) *Classifier {
	return NewClassifier(DefaultPrompts(), m, logger.Discard())
}

func TestClassifyStaticMatchSkipsModel(t *testing.T) {
	model := &fakeModel{}
	decision := newClassifier(model).Classify(context.Background(), "Tell me about MATH Algebra")

	assert.Equal(t, Found, decision.Kind)
	assert.Equal(t, "math", decision.Category)
	assert.Equal(t, "algebra", decision.Topic)
	assert.Equal(t, "Algebra is a branch of mathematics dealing with symbols and the rules for manipulating those symbols.", decision.Answer)
	assert.Equal(t, "tell me about math algebra", decision.Input)
	assert.Empty(t, model.classifyCalls, "static match must not call the model")
}

func TestClassifyTopicWithoutCategoryGoesToModel(t *testing.T) {
	model := &fakeModel{educational: true}
	decision := newClassifier(model).Classify(context.Background(), "algebra")

	assert.Equal(t, ExternalYes, decision.Kind)
	assert.Equal(t, []string{"algebra"}, model.classifyCalls)
}

func TestClassifyTableOrder(t *testing.T) {
	cases := []struct {
		input, category, topic string
	}{
		// geometry and calculus are both present; algebra-geometry-calculus order wins
		{"math calculus and geometry", "math", "geometry"},
		// "american" is listed under history before literature
		{"american literature and history", "history", "american"},
		{"literature in english", "literature", "english"},
		// category words match inside other words
		{"aftermath of algebra", "math", "algebra"},
		{"science: biology vs chemistry", "science", "chemistry"},
	}
	for _, tc := range cases {
		model := &fakeModel{}
		decision := newClassifier(model).Classify(context.Background(), tc.input)
		if assert.Equal(t, Found, decision.Kind, tc.input) {
			assert.Equal(t, tc.category, decision.Category, tc.input)
			assert.Equal(t, tc.topic, decision.Topic, tc.input)
		}
		assert.Empty(t, model.classifyCalls, tc.input)
	}
}

func TestClassifyCategoryWithoutTopicFallsThrough(t *testing.T) {
	// "math" matches but none of its topics do; "biology" has no "science" category word
	model := &fakeModel{educational: false}
	decision := newClassifier(model).Classify(context.Background(), "math biology")

	assert.Equal(t, ExternalNo, decision.Kind)
	assert.Len(t, model.classifyCalls, 1)
}

func TestClassifyModelErrorFailsClosed(t *testing.T) {
	model := &fakeModel{educational: true, classifyErr: errors.New("connection refused")}
	decision := newClassifier(model).Classify(context.Background(), "what is a black hole")

	assert.Equal(t, ExternalError, decision.Kind)
	assert.Equal(t, RefusalResponse, NewResponder(model, logger.Discard()).Generate(context.Background(), decision))
	assert.Empty(t, model.completeCalls)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("found returns canned answer", func(t *testing.T) {
		model := &fakeModel{}
		got := NewResponder(model, logger.Discard()).Generate(ctx, Decision{Kind: Found, Answer: "canned"})
		assert.Equal(t, "canned", got)
		assert.Empty(t, model.completeCalls)
	})

	t.Run("external yes asks for a completion", func(t *testing.T) {
		model := &fakeModel{completion: "Black holes are regions of spacetime."}
		got := NewResponder(model, logger.Discard()).Generate(ctx, Decision{Kind: ExternalYes, Input: "what is a black hole"})
		assert.Equal(t, "Black holes are regions of spacetime.", got)
		require.Len(t, model.completeCalls, 1)
		assert.Equal(t, "Provide a concise educational answer (under 200 words) to: what is a black hole", model.completeCalls[0])
	})

	t.Run("completion failure apologises without retry", func(t *testing.T) {
		model := &fakeModel{completeErr: errors.New("503")}
		got := NewResponder(model, logger.Discard()).Generate(ctx, Decision{Kind: ExternalYes, Input: "q"})
		assert.Equal(t, ApologyResponse, got)
		assert.Len(t, model.completeCalls, 1)
	})

	t.Run("external no refuses", func(t *testing.T) {
		model := &fakeModel{}
		got := NewResponder(model, logger.Discard()).Generate(ctx, Decision{Kind: ExternalNo, Input: "best pizza"})
		assert.Equal(t, RefusalResponse, got)
		assert.Empty(t, model.completeCalls)
	})
}

func TestDefaultPromptsIsACopy(t *testing.T) {
	a := DefaultPrompts()
	a[0].Topics[0].Answer = "changed"
	assert.NotEqual(t, "changed", DefaultPrompts()[0].Topics[0].Answer)
}
