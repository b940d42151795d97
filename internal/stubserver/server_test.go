package stubserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduassess/internal/config"
	"eduassess/internal/dto"
	"eduassess/internal/stub"
)

func newTestApp(t *testing.T) (*fiber.App, *stub.Store) {
	t.Helper()
	store := stub.NewSeededStore()
	srv := New(config.StubServerConfig{
		JWTSecret:      "test-secret",
		AccessTokenTTL: time.Minute,
	}, store)
	return srv.App(), store
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func loginAs(t *testing.T, app *fiber.App, email string) dto.LoginResponse {
	t.Helper()
	var res dto.LoginResponse
	status := doJSON(t, app, http.MethodPost, "/auth/login", "", dto.LoginRequest{
		Email:    email,
		Password: "password",
	}, &res)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, res.AccessToken)
	return res
}

func TestServer_LoginAndMe(t *testing.T) {
	app, _ := newTestApp(t)

	res := loginAs(t, app, "alice@college.edu")
	assert.Equal(t, "Alice Johnson", res.User.Name)
	assert.Equal(t, dto.RoleValue{"student"}, res.User.Role)

	var me dto.MeResponse
	status := doJSON(t, app, http.MethodGet, "/auth/me", res.AccessToken, nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, res.User.ID, me.User.ID)
}

func TestServer_LoginRejectsBadPassword(t *testing.T) {
	app, _ := newTestApp(t)

	var errBody dto.ErrorResponse
	status := doJSON(t, app, http.MethodPost, "/auth/login", "", dto.LoginRequest{
		Email:    "alice@college.edu",
		Password: "wrong",
	}, &errBody)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", errBody.Detail)
}

func TestServer_MeRequiresBearerToken(t *testing.T) {
	app, _ := newTestApp(t)

	status := doJSON(t, app, http.MethodGet, "/auth/me", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = doJSON(t, app, http.MethodGet, "/auth/me", "not-a-jwt", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestServer_SignupValidation(t *testing.T) {
	app, _ := newTestApp(t)

	var errBody dto.ErrorResponse
	status := doJSON(t, app, http.MethodPost, "/auth/signup", "", dto.SignupRequest{
		Name:     "A",
		Email:    "nope",
		Password: "123",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, errBody.Detail)
}

func TestServer_SignupCreatesAccount(t *testing.T) {
	app, _ := newTestApp(t)

	var created dto.UserPayload
	status := doJSON(t, app, http.MethodPost, "/auth/signup", "", dto.SignupRequest{
		Name:       "Charlie Park",
		Email:      "charlie@college.edu",
		Password:   "secret1",
		Department: "10B",
	}, &created)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Charlie Park", created.Name)

	var res dto.LoginResponse
	status = doJSON(t, app, http.MethodPost, "/auth/login", "", dto.LoginRequest{
		Email:    "charlie@college.edu",
		Password: "secret1",
	}, &res)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, res.AccessToken)
}

func TestServer_GenerateAndSubmitFlow(t *testing.T) {
	app, _ := newTestApp(t)
	student := loginAs(t, app, "alice@college.edu")

	var gen dto.GenerateQuizResponse
	status := doJSON(t, app, http.MethodPost, "/quiz/generate", student.AccessToken, dto.GenerateQuizRequest{
		Prompt: "prompt",
		Config: dto.ConfigPayload{Interests: "space", LearningLevel: "beginner"},
	}, &gen)
	require.Equal(t, http.StatusOK, status)
	require.True(t, gen.Success)
	require.NotEmpty(t, gen.Questions)

	answers := make([]dto.AnswerPayload, 0, len(gen.Questions))
	for _, q := range gen.Questions {
		answers = append(answers, dto.AnswerPayload{QuestionID: q.ID, Answer: q.CorrectAnswer, TimeSpent: 4})
	}

	var sub dto.SubmitQuizResponse
	status = doJSON(t, app, http.MethodPost, "/quiz/submit", student.AccessToken, dto.SubmitQuizRequest{
		UserID:    student.User.ID,
		Answers:   answers,
		Questions: gen.Questions,
	}, &sub)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(100), sub.Score)
	assert.Equal(t, "pending_review", sub.Status)
	assert.Equal(t, len(gen.Questions), sub.TotalQuestions)

	var history dto.HistoryResponse
	status = doJSON(t, app, http.MethodGet, "/quiz/history", student.AccessToken, nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history.Results, 1)
	assert.Equal(t, sub.SubmissionID, history.Results[0].ID)

	var me dto.MeResponse
	doJSON(t, app, http.MethodGet, "/auth/me", student.AccessToken, nil, &me)
	assert.Equal(t, 1, me.User.QuizAttempts)
}

func TestServer_TeacherEndpointsRequireTeacherRole(t *testing.T) {
	app, _ := newTestApp(t)
	student := loginAs(t, app, "alice@college.edu")

	var errBody dto.ErrorResponse
	status := doJSON(t, app, http.MethodGet, "/quiz/all-submissions", student.AccessToken, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied. Teachers only.", errBody.Detail)
}

func TestServer_TeacherReviewFlow(t *testing.T) {
	app, store := newTestApp(t)
	student := loginAs(t, app, "alice@college.edu")
	teacher := loginAs(t, app, "sarah@college.edu")

	questions := store.Generate(dto.ConfigPayload{Interests: "chess"}.ToDomain())
	answers := []dto.AnswerPayload{{QuestionID: 1, Answer: "wrong"}}
	qp := make([]dto.QuestionPayload, 0, 3)
	for _, q := range questions[:3] {
		qp = append(qp, dto.QuestionPayloadFromDomain(q))
	}

	var sub dto.SubmitQuizResponse
	status := doJSON(t, app, http.MethodPost, "/quiz/submit", student.AccessToken, dto.SubmitQuizRequest{
		UserID:  student.User.ID,
		Answers: answers, Questions: qp,
	}, &sub)
	require.Equal(t, http.StatusOK, status)

	var all dto.AllSubmissionsResponse
	status = doJSON(t, app, http.MethodGet, "/quiz/all-submissions", teacher.AccessToken, nil, &all)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, all.Submissions, 1)
	assert.Equal(t, "Alice Johnson", all.Submissions[0].UserName)

	status = doJSON(t, app, http.MethodPost, "/quiz/teacher-comment", teacher.AccessToken, dto.TeacherCommentRequest{
		SubmissionID: sub.SubmissionID,
		Comments:     "Keep practicing",
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var review dto.ReviewResponse
	path := fmt.Sprintf("/quiz/teacher-submit/%s", sub.SubmissionID)
	status = doJSON(t, app, http.MethodPost, path, teacher.AccessToken, nil, &review)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, review.Success)
	assert.NotEmpty(t, review.Recommendations)

	var bulk dto.BulkReviewResponse
	status = doJSON(t, app, http.MethodPost, "/quiz/teacher-submit-bulk", teacher.AccessToken, dto.BulkSubmitRequest{
		SubmissionIDs: []string{sub.SubmissionID, "missing"},
	}, &bulk)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, bulk.Processed)
	assert.Equal(t, 1, bulk.Failed)
}

func TestServer_ReviewMissingSubmissionIs404(t *testing.T) {
	app, _ := newTestApp(t)
	teacher := loginAs(t, app, "sarah@college.edu")

	status := doJSON(t, app, http.MethodPost, "/quiz/teacher-submit/no-such-id", teacher.AccessToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
