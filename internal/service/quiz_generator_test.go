package service

import (
	"encoding/json"
	"testing"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuizPayload(t *testing.T, questions []model.Question) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"questions": questions})
	require.NoError(t, err)
	return raw
}

func TestParseQuestions(t *testing.T) {
	raw := validQuizPayload(t, threeQuestions())

	questions, err := ParseQuestions(raw, 3)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "Q1", questions[0].Question)
	assert.Equal(t, "A", questions[0].Answer)
}

func TestParseQuestionsMalformedJSON(t *testing.T) {
	_, err := ParseQuestions([]byte(`{"questions": [`), 3)
	assert.Error(t, err)
}

func TestParseQuestionsNotAnObject(t *testing.T) {
	_, err := ParseQuestions([]byte(`"just a string"`), 3)
	assert.Error(t, err)
}

func TestParseQuestionsWrongCount(t *testing.T) {
	raw := validQuizPayload(t, threeQuestions()[:2])

	_, err := ParseQuestions(raw, 3)
	assert.ErrorContains(t, err, "expected 3 questions")
}

func TestParseQuestionsWrongChoiceCount(t *testing.T) {
	questions := threeQuestions()
	questions[1].Choices = []string{"A", "B"}

	_, err := ParseQuestions(validQuizPayload(t, questions), 3)
	assert.ErrorContains(t, err, "schema validation failed")
}

func TestParseQuestionsAnswerNotInChoices(t *testing.T) {
	questions := threeQuestions()
	questions[2].Answer = "E"

	_, err := ParseQuestions(validQuizPayload(t, questions), 3)
	assert.ErrorContains(t, err, "answer does not match any choice")
}

func TestParseQuestionsEmptyExplanation(t *testing.T) {
	questions := threeQuestions()
	questions[0].Explanation = ""

	_, err := ParseQuestions(validQuizPayload(t, questions), 3)
	assert.ErrorContains(t, err, "schema validation failed")
}

func TestParseQuestionsMissingField(t *testing.T) {
	_, err := ParseQuestions([]byte(`{"questions": [{"question": "Q", "choices": ["A","B","C","D"], "answer": "A"}]}`), 1)
	assert.ErrorContains(t, err, "schema validation failed")
}
